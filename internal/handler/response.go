// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the admin and public API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/service"
)

// maxJSONBody limits decoded request bodies.
const maxJSONBody = 1 << 20

// Response is the body of every successful API response.
type Response struct {
	Data any `json:"data"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// WriteSuccess writes {"data": data} with 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes {"data": data} with 201.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteJSONError(w, http.StatusBadRequest, middleware.CodeBadRequest, message)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteJSONError(w, http.StatusNotFound, middleware.CodeNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	middleware.WriteJSONError(w, http.StatusInternalServerError, middleware.CodeInternal, message)
}

// WriteServiceError maps a domain error to its HTTP status. Errors that are
// not *service.Error are logged and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		WriteInternalError(w, "internal server error")
		return
	}

	switch se.Kind {
	case service.KindValidation, service.KindUnsupported:
		WriteBadRequest(w, se.Message)
	case service.KindConflict:
		middleware.WriteJSONError(w, http.StatusConflict, middleware.CodeConflict, se.Message)
	case service.KindNotFound:
		WriteNotFound(w, se.Message)
	case service.KindTooLarge:
		middleware.WriteJSONError(w, http.StatusRequestEntityTooLarge, middleware.CodePayloadTooLarge, se.Message)
	default:
		slog.Error("request failed", "error", err, "kind", se.Kind.String(), "method", r.Method, "path", r.URL.Path)
		WriteInternalError(w, se.Message)
	}
}

// decodeJSON decodes the request body into dst. A false return means a
// 400 response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			middleware.WriteJSONError(w, http.StatusRequestEntityTooLarge, middleware.CodePayloadTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			WriteBadRequest(w, "request body is empty")
		default:
			WriteBadRequest(w, "invalid JSON body")
		}
		return false
	}
	return true
}
