// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/service"
)

// multipartOverhead is allowed on top of the image size for form framing.
const multipartOverhead = 64 << 10

// MediaHandler handles image uploads.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload handles POST /api/admin/upload?folder=. The image is read from the
// multipart field "file".
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteJSONError(w, http.StatusRequestEntityTooLarge, middleware.CodePayloadTooLarge, "file is too large")
			return
		}
		WriteBadRequest(w, "missing file")
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := h.media.Upload(r.Context(), file, header.Header.Get("Content-Type"), r.URL.Query().Get("folder"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, upload)
}
