// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the domain workflows behind the admin and public
// APIs: post upsert and ordering, book sync, media upload and the event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/store"
)

// DefaultEventPageSize is used when ListEvents gets no limit.
const DefaultEventPageSize = 50

// EventService records and reads the audit/event log.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, metadata map[string]any) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Metadata:  metadataJSON,
		CreatedAt: s.now(),
	})
	if err != nil {
		// Plain Error is not mirrored back into the event log.
		slog.Debug("failed to log event", "category", category, "error", err)
		return err
	}
	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, metadata)
}

// LogPostEvent logs a post-related event.
func (s *EventService) LogPostEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryPost, message, metadata)
}

// LogBookEvent logs a book-related event.
func (s *EventService) LogBookEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryBook, message, metadata)
}

// LogMediaEvent logs a media-related event.
func (s *EventService) LogMediaEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryMedia, message, metadata)
}

// LogSystemEvent logs a system-related event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, metadata)
}

// EventFilter selects a page of events.
type EventFilter struct {
	Level    string
	Category string
	Limit    int64
	Offset   int64
}

// ListEvents returns a page of events, newest first, and the total count
// matching the filter.
func (s *EventService) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultEventPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	params := store.ListEventsParams{
		Level:    f.Level,
		Category: f.Category,
		Limit:    f.Limit,
		Offset:   f.Offset,
	}

	events, err := s.queries.ListEvents(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountEvents(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}

// record logs an info event and never fails the caller. A nil service is a
// no-op.
func (s *EventService) record(ctx context.Context, category, message string, metadata map[string]any) {
	if s == nil {
		return
	}
	_ = s.LogEvent(ctx, model.EventLevelInfo, category, message, metadata)
}
