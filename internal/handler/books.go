// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/service"
)

// BooksHandler handles admin book routes.
type BooksHandler struct {
	books *service.BookService
}

// NewBooksHandler creates a new BooksHandler.
func NewBooksHandler(books *service.BookService) *BooksHandler {
	return &BooksHandler{books: books}
}

// BooksRequest is the body of POST /api/admin/books.
type BooksRequest struct {
	Books []model.Book `json:"books"`
}

// ImageRequest is the body of PATCH /api/admin/books/{id}/image.
type ImageRequest struct {
	Image string `json:"image"`
}

// List handles GET /api/admin/books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, books)
}

// Save handles POST /api/admin/books. The submitted list replaces the
// stored collection and its order.
func (h *BooksHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req BooksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Books == nil {
		WriteBadRequest(w, "books must be a list")
		return
	}

	books, err := h.books.Save(r.Context(), req.Books)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, books)
}

// UpdateImage handles PATCH /api/admin/books/{id}/image.
func (h *BooksHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book, err := h.books.UpdateImage(r.Context(), chi.URLParam(r, "id"), req.Image)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, book)
}
