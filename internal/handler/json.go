// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/blockcms/internal/editor"
	"github.com/olegiv/blockcms/internal/service"
)

// maxBodyBytes bounds JSON request bodies. Sections may carry pasted
// images as data URIs.
const maxBodyBytes = 8 << 20

// Extra machine codes produced by the HTTP boundary itself.
const (
	codeRateLimited = "RATE_LIMITED"
	codeJobFailed   = "JOB_FAILED"
)

// ErrorBody is the error member of a failed response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK writes {"ok":true} merged with the fields of data.
func writeOK(w http.ResponseWriter, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["ok"] = true
	writeJSON(w, http.StatusOK, data)
}

func writeSaveResult(w http.ResponseWriter, res service.SaveResult) {
	data := map[string]any{
		"lastModified": res.LastModified,
		"version":      res.Version,
	}
	if len(res.IDs) > 0 {
		data["ids"] = res.IDs
	}
	writeOK(w, data)
}

func writeErrorBody(w http.ResponseWriter, status int, body ErrorBody) {
	writeJSON(w, status, errorEnvelope{Error: body})
}

// writeError maps a service error to its code, status and details. Raw
// storage errors are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := service.ErrorCode(err)
	body := ErrorBody{Code: code}
	status := http.StatusServiceUnavailable

	var (
		verr  *service.ValidationError
		everr *editor.ValidationError
		cerr  *service.ConflictError
		aerr  *service.AuthorizationError
	)
	switch code {
	case service.CodeStale:
		status = http.StatusConflict
		body.Message = "The content was changed by someone else. Reload to see the latest version."
		if errors.As(err, &cerr) {
			body.Details = map[string]any{"currentLastModified": cerr.Current}
		}
	case service.CodeUnauthorized:
		status = http.StatusForbidden
		body.Message = "You do not have permission to do that."
		if errors.As(err, &aerr) {
			body.Details = map[string]any{"role": aerr.Role, "action": string(aerr.Action)}
		}
	case service.CodeNotFound:
		status = http.StatusNotFound
		body.Message = err.Error()
	case service.CodeValidationFailed:
		status = http.StatusUnprocessableEntity
		switch {
		case errors.As(err, &verr):
			body.Message = verr.Message
			body.Details = fieldDetails(verr.Fields)
		case errors.As(err, &everr):
			body.Message = everr.Error()
		}
	default:
		body.Message = "The content store is temporarily unavailable. Nothing was saved; try again."
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}
	writeErrorBody(w, status, body)
}

func fieldDetails(fields map[string]string) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return map[string]any{"fields": out}
}

// writeBadRequest reports an unreadable request as a validation failure.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, ErrorBody{Code: service.CodeValidationFailed, Message: message})
}

// decodeJSON reads a JSON body into v, rejecting unknown trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return false
	}
	if dec.More() {
		writeBadRequest(w, "Unexpected data after JSON body")
		return false
	}
	return true
}

// DenyJSON answers requests rejected by middleware with the error envelope.
func DenyJSON(w http.ResponseWriter, _ *http.Request, status int) {
	body := ErrorBody{Code: service.CodeUnauthorized}
	switch status {
	case http.StatusUnauthorized:
		body.Message = "Sign in to continue."
	case http.StatusTooManyRequests:
		body.Code = codeRateLimited
		body.Message = "Too many requests. Wait a moment and try again."
	default:
		body.Message = "You do not have permission to do that."
	}
	writeErrorBody(w, status, body)
}
