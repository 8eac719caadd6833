// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
)

// Keys of the cached public read models.
const (
	KeyPublishedPosts = "posts:published"
	KeyTags           = "posts:tags"
	KeyBooks          = "books:ordered"
	KeyRSS            = "feed:rss"
	KeySitemap        = "feed:sitemap"
)

// postKeys depend on posts or the blog order.
var postKeys = []string{KeyPublishedPosts, KeyTags, KeyRSS, KeySitemap}

// InvalidatePosts drops every entry derived from posts or the blog order.
func InvalidatePosts(ctx context.Context, c Cacher) {
	invalidate(ctx, c, postKeys...)
}

// InvalidateBooks drops every entry derived from books or the book order.
func InvalidateBooks(ctx context.Context, c Cacher) {
	invalidate(ctx, c, KeyBooks)
}

func invalidate(ctx context.Context, c Cacher, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
