// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/ordering"
	"github.com/olegiv/psynverse/internal/store"
	"github.com/olegiv/psynverse/internal/util"
)

// BookService keeps the curated book list and its order.
type BookService struct {
	store  *store.Store
	cache  cache.Cacher
	books  *cache.TypedCache[[]model.Book]
	events *EventService
	now    func() time.Time
	newID  func() string
}

// NewBookService creates a BookService. c and events may be nil.
func NewBookService(st *store.Store, c cache.Cacher, ttl time.Duration, events *EventService) *BookService {
	s := &BookService{
		store:  st,
		cache:  c,
		events: events,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if c != nil {
		s.books = cache.NewTypedCache[[]model.Book](c, ttl)
	}
	return s
}

// List returns every book in display order.
func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	load := func() ([]model.Book, error) {
		books, err := s.store.ListBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing books: %w", err)
		}
		settings, err := s.store.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		return ordering.Apply(books, settings.BookOrder, bookID, nil), nil
	}
	if s.books == nil {
		return load()
	}
	return s.books.GetOrSet(ctx, cache.KeyBooks, load)
}

// Save replaces the whole collection with books. Stored books missing from
// the input are deleted and the book order becomes the input sequence.
func (s *BookService) Save(ctx context.Context, books []model.Book) ([]model.Book, error) {
	cleaned := make([]model.Book, 0, len(books))
	ids := make([]string, 0, len(books))
	seen := make(map[string]bool, len(books))
	for i, b := range books {
		b = s.normalizeBook(b)
		if seen[b.ID] {
			return nil, validationError("duplicate book id %q", b.ID)
		}
		if b.Image != "" && !util.IsHTTPSURL(b.Image) {
			return nil, validationError("book %d: image must be an https URL", i+1)
		}
		seen[b.ID] = true
		cleaned = append(cleaned, b)
		ids = append(ids, b.ID)
	}

	var removed int64
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		for _, b := range cleaned {
			if err := q.UpsertBook(ctx, b); err != nil {
				return fmt.Errorf("writing book %q: %w", b.ID, err)
			}
		}
		n, err := q.DeleteBooksExcept(ctx, ids)
		if err != nil {
			return fmt.Errorf("deleting removed books: %w", err)
		}
		removed = n
		return q.SetBookOrder(ctx, ids, s.now().UTC().Truncate(time.Millisecond))
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateBooks(ctx, s.cache)
	s.events.record(ctx, model.EventCategoryBook, "Books saved", map[string]any{
		"count":   len(cleaned),
		"removed": removed,
	})
	return cleaned, nil
}

// UpdateImage sets the cover image of one book. image must be an https URL.
func (s *BookService) UpdateImage(ctx context.Context, id, image string) (model.Book, error) {
	id = strings.TrimSpace(id)
	image = strings.TrimSpace(image)
	if id == "" {
		return model.Book{}, validationError("book id is required")
	}
	if !util.IsHTTPSURL(image) {
		return model.Book{}, validationError("image must be an https URL")
	}

	n, err := s.store.UpdateBookImage(ctx, id, image)
	if err != nil {
		return model.Book{}, fmt.Errorf("updating book %q: %w", id, err)
	}
	if n == 0 {
		return model.Book{}, notFoundError("book %q not found", id)
	}
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, fmt.Errorf("loading book %q: %w", id, err)
	}

	cache.InvalidateBooks(ctx, s.cache)
	s.events.record(ctx, model.EventCategoryBook, "Book image updated", map[string]any{"id": id})
	return book, nil
}

func (s *BookService) normalizeBook(b model.Book) model.Book {
	b.ID = strings.TrimSpace(b.ID)
	if b.ID == "" {
		b.ID = s.newID()
	}
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Link = strings.TrimSpace(b.Link)
	if b.Link == "" {
		b.Link = model.DefaultBookLink
	}
	b.Image = strings.TrimSpace(b.Image)
	b.Note = strings.TrimSpace(b.Note)
	return b
}

func bookID(b model.Book) string { return b.ID }
