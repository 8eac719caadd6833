// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"

	"github.com/olegiv/psynverse/internal/model"
)

const bookColumns = `id, title, author, link, image, note`

const getBook = `SELECT ` + bookColumns + ` FROM books WHERE id = ?`

// GetBook returns the book with id, or sql.ErrNoRows.
func (q *Queries) GetBook(ctx context.Context, id string) (model.Book, error) {
	return scanBook(q.db.QueryRowContext(ctx, getBook, id))
}

const listBooks = `SELECT ` + bookColumns + ` FROM books ORDER BY rowid`

// ListBooks returns every book in insertion order.
func (q *Queries) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := q.db.QueryContext(ctx, listBooks)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

const upsertBook = `INSERT INTO books (` + bookColumns + `)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    author = excluded.author,
    link = excluded.link,
    image = excluded.image,
    note = excluded.note`

// UpsertBook writes b under b.ID.
func (q *Queries) UpsertBook(ctx context.Context, b model.Book) error {
	_, err := q.db.ExecContext(ctx, upsertBook, b.ID, b.Title, b.Author, b.Link, b.Image, b.Note)
	return err
}

// DeleteBooksExcept removes every book whose id is not in keep and returns
// the number of deleted rows. An empty keep list deletes all books.
func (q *Queries) DeleteBooksExcept(ctx context.Context, keep []string) (int64, error) {
	query := `DELETE FROM books`
	args := make([]any, len(keep))
	if len(keep) > 0 {
		query += ` WHERE id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + `)`
		for i, id := range keep {
			args[i] = id
		}
	}

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateBookImage = `UPDATE books SET image = ? WHERE id = ?`

// UpdateBookImage sets the image of the book with id and returns the number
// of updated rows.
func (q *Queries) UpdateBookImage(ctx context.Context, id, image string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBookImage, image, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBook(row rowScanner) (model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Link, &b.Image, &b.Note)
	return b, err
}
