// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/markdown"
	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/ordering"
	"github.com/olegiv/psynverse/internal/store"
	"github.com/olegiv/psynverse/internal/util"
)

// PostService implements the slug-keyed post workflow and the blog order.
type PostService struct {
	store     *store.Store
	cache     cache.Cacher
	published *cache.TypedCache[[]model.Post]
	tags      *cache.TypedCache[[]string]
	events    *EventService
	now       func() time.Time
}

// NewPostService creates a PostService. c and events may be nil.
func NewPostService(st *store.Store, c cache.Cacher, ttl time.Duration, events *EventService) *PostService {
	s := &PostService{
		store:  st,
		cache:  c,
		events: events,
		now:    time.Now,
	}
	if c != nil {
		s.published = cache.NewTypedCache[[]model.Post](c, ttl)
		s.tags = cache.NewTypedCache[[]string](c, ttl)
	}
	return s
}

// Create stores a new post. An existing post at the target slug is a
// conflict.
func (s *PostService) Create(ctx context.Context, in model.PostInput) (model.Post, error) {
	return s.save(ctx, in, "", true)
}

// Upsert creates, updates or renames a post. originalSlug identifies the
// post being edited; when it differs from the target slug the post is
// renamed and keeps its creation time and position in the blog order.
func (s *PostService) Upsert(ctx context.Context, in model.PostInput, originalSlug string) (model.Post, error) {
	return s.save(ctx, in, originalSlug, false)
}

func (s *PostService) save(ctx context.Context, in model.PostInput, originalSlug string, create bool) (model.Post, error) {
	post, err := normalizePost(in)
	if err != nil {
		return model.Post{}, err
	}

	target := post.Slug
	current := util.SanitizeSlug(originalSlug)
	if current == "" {
		current = target
	}
	now := s.timestamp()

	var created bool
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		existing, err := q.GetPost(ctx, target)
		targetExists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("loading post %q: %w", target, err)
		}
		if targetExists && (create || current != target) {
			return conflictError("a post with slug %q already exists", target)
		}

		created = !targetExists && current == target
		post.CreatedAt = now
		if targetExists {
			post.CreatedAt = existing.CreatedAt
		}

		if current != target {
			previous, err := q.GetPost(ctx, current)
			if errors.Is(err, sql.ErrNoRows) {
				return notFoundError("post %q not found", current)
			}
			if err != nil {
				return fmt.Errorf("loading post %q: %w", current, err)
			}
			post.CreatedAt = previous.CreatedAt
		}
		post.UpdatedAt = now

		if err := q.UpsertPost(ctx, post); err != nil {
			return fmt.Errorf("writing post %q: %w", target, err)
		}
		if current != target {
			if _, err := q.DeletePost(ctx, current); err != nil {
				return fmt.Errorf("removing renamed post %q: %w", current, err)
			}
		}

		settings, err := q.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		return q.SetBlogOrder(ctx, ordering.Place(settings.BlogOrder, target, current), now)
	})
	if err != nil {
		return model.Post{}, err
	}

	cache.InvalidatePosts(ctx, s.cache)

	message := "Post updated"
	metadata := map[string]any{"slug": target}
	switch {
	case current != target:
		message = "Post renamed"
		metadata["from"] = current
	case created:
		message = "Post created"
	}
	s.events.record(ctx, model.EventCategoryPost, message, metadata)

	markdown.Enrich(&post)
	return post, nil
}

// Delete removes a post and its blog order entry.
func (s *PostService) Delete(ctx context.Context, slug string) error {
	slug = util.SanitizeSlug(slug)
	if slug == "" {
		return validationError("slug is required")
	}

	err := s.store.InTx(ctx, func(q *store.Queries) error {
		n, err := q.DeletePost(ctx, slug)
		if err != nil {
			return fmt.Errorf("deleting post %q: %w", slug, err)
		}
		if n == 0 {
			return notFoundError("post %q not found", slug)
		}

		settings, err := q.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		return q.SetBlogOrder(ctx, ordering.Remove(settings.BlogOrder, slug), s.timestamp())
	})
	if err != nil {
		return err
	}

	cache.InvalidatePosts(ctx, s.cache)
	s.events.record(ctx, model.EventCategoryPost, "Post deleted", map[string]any{"slug": slug})
	return nil
}

// SaveOrder replaces the blog order. Entries are sanitized; empty,
// duplicate and unknown slugs are dropped. The stored order is returned.
func (s *PostService) SaveOrder(ctx context.Context, order []string) ([]string, error) {
	var saved []string
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		slugs, err := q.ListPostSlugs(ctx)
		if err != nil {
			return fmt.Errorf("listing posts: %w", err)
		}
		known := make(map[string]bool, len(slugs))
		for _, slug := range slugs {
			known[slug] = true
		}

		saved = ordering.Normalize(order, util.SanitizeSlug, known)
		return q.SetBlogOrder(ctx, saved, s.timestamp())
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePosts(ctx, s.cache)
	s.events.record(ctx, model.EventCategoryPost, "Blog order saved", map[string]any{"count": len(saved)})
	return saved, nil
}

// List returns every post, drafts included, in display order.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return s.arrange(ctx, posts)
}

// ListPublished returns published posts in display order, optionally only
// those carrying tag.
func (s *PostService) ListPublished(ctx context.Context, tag string) ([]model.Post, error) {
	posts, err := s.publishedPosts(ctx)
	if err != nil {
		return nil, err
	}

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return posts, nil
	}
	filtered := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.HasTag(tag) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *PostService) publishedPosts(ctx context.Context) ([]model.Post, error) {
	load := func() ([]model.Post, error) {
		posts, err := s.store.ListPublishedPosts(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing published posts: %w", err)
		}
		return s.arrange(ctx, posts)
	}
	if s.published == nil {
		return load()
	}
	return s.published.GetOrSet(ctx, cache.KeyPublishedPosts, load)
}

// Get returns one post. Drafts are reported as not found unless
// includeDrafts is set.
func (s *PostService) Get(ctx context.Context, slug string, includeDrafts bool) (model.Post, error) {
	slug = util.SanitizeSlug(slug)
	if slug == "" {
		return model.Post{}, notFoundError("post not found")
	}

	post, err := s.store.GetPost(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !post.Published && !includeDrafts) {
		return model.Post{}, notFoundError("post %q not found", slug)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("loading post %q: %w", slug, err)
	}

	markdown.Enrich(&post)
	return post, nil
}

// Tags returns the distinct tags of published posts, sorted
// case-insensitively. The first spelling seen wins.
func (s *PostService) Tags(ctx context.Context) ([]string, error) {
	load := func() ([]string, error) {
		posts, err := s.publishedPosts(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		tags := []string{}
		for _, p := range posts {
			for _, tag := range p.Tags {
				key := strings.ToLower(tag)
				if seen[key] {
					continue
				}
				seen[key] = true
				tags = append(tags, tag)
			}
		}
		slices.SortFunc(tags, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
		return tags, nil
	}
	if s.tags == nil {
		return load()
	}
	return s.tags.GetOrSet(ctx, cache.KeyTags, load)
}

// arrange applies the blog order and derives reading metadata.
func (s *PostService) arrange(ctx context.Context, posts []model.Post) ([]model.Post, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	ordered := ordering.Apply(posts, settings.BlogOrder, postSlug, newerPost)
	for i := range ordered {
		markdown.Enrich(&ordered[i])
	}
	return ordered, nil
}

// timestamp reads the clock at the precision the store keeps.
func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func postSlug(p model.Post) string { return p.Slug }

func newerPost(a, b model.Post) bool {
	return a.PublishedAt().After(b.PublishedAt())
}

// normalizePost validates untrusted editor input and returns the post to
// store, without timestamps.
func normalizePost(in model.PostInput) (model.Post, error) {
	post := model.Post{
		Title:      strings.TrimSpace(in.Title),
		Date:       strings.TrimSpace(in.Date),
		Excerpt:    strings.TrimSpace(in.Excerpt),
		Tags:       model.NormalizeTags(in.Tags),
		CoverImage: strings.TrimSpace(in.CoverImage),
		Content:    strings.TrimSpace(in.Content),
		Published:  true,
	}
	if in.Published != nil {
		post.Published = *in.Published
	}

	source := strings.TrimSpace(in.Slug)
	if source == "" {
		source = post.Title
	}
	post.Slug = util.SanitizeSlug(source)

	switch {
	case post.Title == "":
		return model.Post{}, validationError("title is required")
	case post.Date == "":
		return model.Post{}, validationError("date is required")
	case post.Excerpt == "":
		return model.Post{}, validationError("excerpt is required")
	case !util.IsValidSlug(post.Slug):
		return model.Post{}, validationError("slug is invalid")
	}
	if _, err := model.ParsePostDate(post.Date); err != nil {
		return model.Post{}, validationError("date %q is not a valid date", post.Date)
	}
	if post.CoverImage != "" && !util.IsHTTPSURL(post.CoverImage) {
		return model.Post{}, validationError("coverImage must be an https URL")
	}
	return post, nil
}
