// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/seo"
	"github.com/olegiv/psynverse/internal/service"
	"github.com/olegiv/psynverse/internal/util"
)

// bookImageTypes lists the extensions served from the book image directory.
var bookImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
}

// PublicHandler serves the public JSON API, feeds and book images.
type PublicHandler struct {
	posts         *service.PostService
	books         *service.BookService
	cache         cache.Cacher
	cacheTTL      time.Duration
	feed          seo.FeedConfig
	robots        seo.RobotsConfig
	bookImagesDir string
}

// PublicConfig holds the dependencies of PublicHandler. Cache may be nil.
type PublicConfig struct {
	Posts         *service.PostService
	Books         *service.BookService
	Cache         cache.Cacher
	CacheTTL      time.Duration
	Feed          seo.FeedConfig
	Robots        seo.RobotsConfig
	BookImagesDir string
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(cfg PublicConfig) *PublicHandler {
	return &PublicHandler{
		posts:         cfg.Posts,
		books:         cfg.Books,
		cache:         cfg.Cache,
		cacheTTL:      cfg.CacheTTL,
		feed:          cfg.Feed,
		robots:        cfg.Robots,
		bookImagesDir: cfg.BookImagesDir,
	}
}

// Posts handles GET /api/posts[?tag=].
func (h *PublicHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context(), strings.TrimSpace(r.URL.Query().Get("tag")))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, posts)
}

// Post handles GET /api/posts/{slug}. Drafts are not found.
func (h *PublicHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "slug"), false)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, post)
}

// Tags handles GET /api/tags.
func (h *PublicHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.posts.Tags(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, tags)
}

// Books handles GET /api/books.
func (h *PublicHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, books)
}

// RSS handles GET /rss.xml.
func (h *PublicHandler) RSS(w http.ResponseWriter, r *http.Request) {
	h.serveGenerated(w, r, cache.KeyRSS, "application/rss+xml; charset=utf-8", func(ctx context.Context) ([]byte, error) {
		posts, err := h.posts.ListPublished(ctx, "")
		if err != nil {
			return nil, err
		}
		return seo.GenerateRSS(h.feed, posts)
	})
}

// Sitemap handles GET /sitemap.xml.
func (h *PublicHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	h.serveGenerated(w, r, cache.KeySitemap, "application/xml; charset=utf-8", func(ctx context.Context) ([]byte, error) {
		posts, err := h.posts.ListPublished(ctx, "")
		if err != nil {
			return nil, err
		}
		return seo.GenerateSitemap(h.feed.SiteURL, posts)
	})
}

// Robots handles GET /robots.txt.
func (h *PublicHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.robots)))
}

// BookImage handles GET /books/images/{filename}. The name is reduced to its
// basename so requests cannot leave the image directory.
func (h *PublicHandler) BookImage(w http.ResponseWriter, r *http.Request) {
	if h.bookImagesDir == "" {
		http.NotFound(w, r)
		return
	}

	path, err := util.FileUnder(h.bookImagesDir, chi.URLParam(r, "filename"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contentType, ok := bookImageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// serveGenerated writes a document built by gen, caching the bytes under key.
func (h *PublicHandler) serveGenerated(w http.ResponseWriter, r *http.Request, key, contentType string, gen func(context.Context) ([]byte, error)) {
	ctx := r.Context()

	var body []byte
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			body = cached
		}
	}
	if body == nil {
		var err error
		body, err = gen(ctx)
		if err != nil {
			slog.Error("generating document", "key", key, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
				slog.Debug("failed to cache document", "key", key, "error", err)
			}
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(body)
}
