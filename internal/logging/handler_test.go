// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func listEvents(t *testing.T, db *sql.DB) []model.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("database connection failed", "host", "localhost", "port", 5432)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.EventLevelError)
	}
	if e.Category != model.EventCategorySystem {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategorySystem)
	}
	if e.Message != "database connection failed" {
		t.Errorf("Message = %q", e.Message)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["host"] != "localhost" || meta["port"] != "5432" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_InfoNotMirrored(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("server started")
	logger.Debug("noise")

	if events := listEvents(t, db); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestEventLogHandler_CategoryAndAttrs(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("request_id", "abc").
		WithGroup("upload")

	logger.Warn("something odd", "category", model.EventCategoryMedia, "size", 10)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryMedia {
		t.Errorf("Category = %q, want media", events[0].Category)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["request_id"] != "abc" {
		t.Errorf("request_id = %q, want abc", meta["request_id"])
	}
	if meta["upload.size"] != "10" {
		t.Errorf("upload.size = %q, want 10 (metadata %v)", meta["upload.size"], meta)
	}
}

func TestCategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed", model.EventCategoryAuth},
		{"post write failed", model.EventCategoryPost},
		{"book sync failed", model.EventCategoryBook},
		{"image upload failed", model.EventCategoryMedia},
		{"cache invalidation failed", model.EventCategoryCache},
		{"disk full", model.EventCategorySystem},
	}
	for _, tt := range tests {
		if got := category(tt.msg, nil); got != tt.want {
			t.Errorf("category(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	db := testDB(t)
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelError, db)

	logger.Warn("cache invalidation failed")

	if strings.Contains(buf.String(), "cache invalidation failed") {
		t.Error("WARN should be filtered from text output at ERROR level")
	}
	if events := listEvents(t, db); len(events) != 1 {
		t.Errorf("WARN should still reach the event log, got %d events", len(events))
	}
}
