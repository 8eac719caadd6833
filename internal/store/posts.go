// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olegiv/psynverse/internal/model"
)

const postColumns = `slug, title, date, excerpt, tags, cover_image, content, published, created_at, updated_at`

const getPost = `SELECT ` + postColumns + ` FROM posts WHERE slug = ?`

// GetPost returns the post stored under slug, or sql.ErrNoRows.
func (q *Queries) GetPost(ctx context.Context, slug string) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, slug))
}

const postExists = `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = ?)`

// PostExists reports whether a post is stored under slug.
func (q *Queries) PostExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, postExists, slug).Scan(&exists)
	return exists, err
}

const listPosts = `SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, slug`

const listPublishedPosts = `SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC, slug`

// ListPosts returns every post, newest date first.
func (q *Queries) ListPosts(ctx context.Context) ([]model.Post, error) {
	return q.queryPosts(ctx, listPosts)
}

// ListPublishedPosts returns published posts, newest date first.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]model.Post, error) {
	return q.queryPosts(ctx, listPublishedPosts)
}

const listPostSlugs = `SELECT slug FROM posts`

// ListPostSlugs returns the slugs of all stored posts.
func (q *Queries) ListPostSlugs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPostSlugs)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

const upsertPost = `INSERT INTO posts (` + postColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    date = excluded.date,
    excerpt = excluded.excerpt,
    tags = excluded.tags,
    cover_image = excluded.cover_image,
    content = excluded.content,
    published = excluded.published,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at`

// UpsertPost writes p under p.Slug, replacing any existing document.
func (q *Queries) UpsertPost(ctx context.Context, p model.Post) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = q.db.ExecContext(ctx, upsertPost,
		p.Slug,
		p.Title,
		p.Date,
		p.Excerpt,
		string(encoded),
		p.CoverImage,
		p.Content,
		p.Published,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	return err
}

const deletePost = `DELETE FROM posts WHERE slug = ?`

// DeletePost removes the post under slug and returns the number of deleted rows.
func (q *Queries) DeletePost(ctx context.Context, slug string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePost, slug)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var (
		p    model.Post
		tags string
	)
	err := row.Scan(
		&p.Slug,
		&p.Title,
		&p.Date,
		&p.Excerpt,
		&tags,
		&p.CoverImage,
		&p.Content,
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.Post{}, err
	}

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return model.Post{}, fmt.Errorf("decoding tags of %q: %w", p.Slug, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
