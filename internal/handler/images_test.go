// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/blockcms/internal/imaging"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

func TestImageHandler_Normalize(t *testing.T) {
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	editor := &store.User{ID: 1, Role: model.RoleEditor}
	reviewer := &store.User{ID: 2, Role: model.RoleReviewer}
	h := NewImageHandler(imaging.NewProcessor(imaging.DefaultConfig()), 1<<20)

	tests := []struct {
		name        string
		user        *store.User
		contentType string
		body        []byte
		wantCode    int
	}{
		{"png", editor, "image/png", pngData.Bytes(), http.StatusOK},
		{"reviewer", reviewer, "image/png", pngData.Bytes(), http.StatusForbidden},
		{"not an image", editor, "text/plain", []byte("hello"), http.StatusUnprocessableEntity},
		{"garbage with image type", editor, "image/png", []byte("hello"), http.StatusUnprocessableEntity},
		{"empty", editor, "image/png", nil, http.StatusBadRequest},
		{"too large", editor, "image/png", make([]byte, 2<<20), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/images/normalize", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			withUser(tt.user)(http.HandlerFunc(h.Normalize)).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp struct {
				OK  bool   `json:"ok"`
				Src string `json:"src"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if tt.wantCode == http.StatusOK && (!resp.OK || !strings.HasPrefix(resp.Src, "data:image/png;base64,")) {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
