// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/psynverse/internal/model"
)

const settingsID = "site"

const getSettings = `SELECT blog_order, book_order, version, updated_at FROM settings WHERE id = ?`

// GetSettings returns the settings singleton. A missing row yields empty orders.
func (q *Queries) GetSettings(ctx context.Context) (model.Settings, error) {
	var (
		blogOrder, bookOrder string
		updatedAt            sql.NullTime
		s                    model.Settings
	)
	err := q.db.QueryRowContext(ctx, getSettings, settingsID).Scan(&blogOrder, &bookOrder, &s.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{BlogOrder: []string{}, BookOrder: []string{}}, nil
	}
	if err != nil {
		return model.Settings{}, err
	}

	if s.BlogOrder, err = decodeOrder(blogOrder); err != nil {
		return model.Settings{}, fmt.Errorf("decoding blog order: %w", err)
	}
	if s.BookOrder, err = decodeOrder(bookOrder); err != nil {
		return model.Settings{}, fmt.Errorf("decoding book order: %w", err)
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time.UTC()
	}
	return s, nil
}

const setBlogOrder = `INSERT INTO settings (id, blog_order, version, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT(id) DO UPDATE SET
    blog_order = excluded.blog_order,
    version = settings.version + 1,
    updated_at = excluded.updated_at`

// SetBlogOrder replaces the blog order and bumps the settings version.
func (q *Queries) SetBlogOrder(ctx context.Context, order []string, now time.Time) error {
	return q.setOrder(ctx, setBlogOrder, order, now)
}

const setBookOrder = `INSERT INTO settings (id, book_order, version, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT(id) DO UPDATE SET
    book_order = excluded.book_order,
    version = settings.version + 1,
    updated_at = excluded.updated_at`

// SetBookOrder replaces the book order and bumps the settings version.
func (q *Queries) SetBookOrder(ctx context.Context, order []string, now time.Time) error {
	return q.setOrder(ctx, setBookOrder, order, now)
}

func (q *Queries) setOrder(ctx context.Context, query string, order []string, now time.Time) error {
	if order == nil {
		order = []string{}
	}
	encoded, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order: %w", err)
	}
	_, err = q.db.ExecContext(ctx, query, settingsID, string(encoded), now.UTC())
	return err
}

func decodeOrder(raw string) ([]string, error) {
	order := []string{}
	if raw == "" {
		return order, nil
	}
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, err
	}
	if order == nil {
		order = []string{}
	}
	return order, nil
}
