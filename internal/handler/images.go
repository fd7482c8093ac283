// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/imaging"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/service"
)

// ImageHandler normalises images pasted into rich text. The editor
// embeds the returned data URI in place of the pasted file.
type ImageHandler struct {
	processor *imaging.Processor
	maxBytes  int64
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(processor *imaging.Processor, maxBytes int64) *ImageHandler {
	return &ImageHandler{processor: processor, maxBytes: maxBytes}
}

// Normalize handles POST /images/normalize. The body is the raw image
// with its MIME type in Content-Type.
func (h *ImageHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	actor := middleware.Actor(r)
	if !auth.Can(actor.Role, auth.ActionEdit) {
		writeError(w, r, &service.AuthorizationError{Role: model.NormalizeRole(actor.Role), Action: auth.ActionEdit})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeImageError(w, "The image is too large.")
			return
		}
		writeBadRequest(w, "Could not read the image")
		return
	}
	if len(data) == 0 {
		writeBadRequest(w, "Empty image")
		return
	}

	src, err := h.processor.Encode(data, r.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		writeImageError(w, "The image is too large.")
		return
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		writeImageError(w, "Only JPEG, PNG, GIF and WebP images can be pasted.")
		return
	case err != nil:
		writeImageError(w, "The image could not be read.")
		return
	}
	writeOK(w, map[string]any{"src": src})
}

func writeImageError(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusUnprocessableEntity, ErrorBody{
		Code:    service.CodeValidationFailed,
		Message: message,
		Details: map[string]any{"fields": map[string]any{"image": message}},
	})
}
