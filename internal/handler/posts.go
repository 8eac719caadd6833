// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/service"
)

// PostsHandler handles admin post routes.
type PostsHandler struct {
	posts *service.PostService
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(posts *service.PostService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// PostRequest is the body of POST and PUT /api/admin/posts.
type PostRequest struct {
	Post         model.PostInput `json:"post"`
	OriginalSlug string          `json:"originalSlug"`
}

// OrderRequest is the body of POST /api/admin/posts/order.
type OrderRequest struct {
	BlogOrder []string `json:"blogOrder"`
}

// List handles GET /api/admin/posts. Drafts are included.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, posts)
}

// Create handles POST /api/admin/posts.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), req.Post)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, post)
}

// Update handles PUT /api/admin/posts. A differing originalSlug renames
// the post.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Upsert(r.Context(), req.Post, req.OriginalSlug)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, post)
}

// Delete handles DELETE /api/admin/posts/{slug}.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.posts.Delete(r.Context(), slug); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"deleted": slug})
}

// Order handles POST /api/admin/posts/order.
func (h *PostsHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.posts.SaveOrder(r.Context(), req.BlogOrder)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, OrderRequest{BlogOrder: order})
}
