// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	s := New(nil)
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger == nil {
		t.Error("New() should default the logger")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(testLogger())
	if err := s.AddJob("noop", "@hourly", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	s.Start()
	s.Stop()
}

func TestScheduler_AddJobErrors(t *testing.T) {
	s := New(testLogger())
	fn := func(context.Context) error { return nil }

	if err := s.AddJob("bad", "not a schedule", fn); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if err := s.AddJob("job", "@daily", fn); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := s.AddJob("job", "@daily", fn); err == nil {
		t.Error("expected error for duplicate job")
	}
}

func TestScheduler_TriggerAndJobs(t *testing.T) {
	s := New(testLogger())
	runs := 0
	boom := errors.New("boom")

	_ = s.AddJob("b-count", "@daily", func(context.Context) error { runs++; return nil })
	_ = s.AddJob("a-fail", "@weekly", func(context.Context) error { return boom })

	if err := s.Trigger("b-count"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if err := s.Trigger("a-fail"); !errors.Is(err, boom) {
		t.Errorf("Trigger() error = %v, want boom", err)
	}
	if err := s.Trigger("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Trigger() error = %v, want ErrJobNotFound", err)
	}

	jobs := s.Jobs()
	if len(jobs) != 2 || jobs[0].Name != "a-fail" || jobs[1].Schedule != "@daily" {
		t.Errorf("Jobs() = %+v", jobs)
	}
}

type fakePruner struct {
	olderThan time.Duration
	deleted   int64
}

func (f *fakePruner) DeleteOldEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, nil
}

type fakeReloader struct{ calls int }

func (f *fakeReloader) Reload() error { f.calls++; return nil }

func TestPruneEvents(t *testing.T) {
	p := &fakePruner{deleted: 3}
	if err := PruneEvents(p, 0, testLogger())(context.Background()); err != nil {
		t.Fatalf("job error = %v", err)
	}
	if p.olderThan != DefaultEventRetained {
		t.Errorf("olderThan = %v, want default retention", p.olderThan)
	}

	if err := PruneEvents(p, time.Hour, testLogger())(context.Background()); err != nil {
		t.Fatalf("job error = %v", err)
	}
	if p.olderThan != time.Hour {
		t.Errorf("olderThan = %v, want 1h", p.olderThan)
	}
}

func TestReloadGeoIP(t *testing.T) {
	r := &fakeReloader{}
	if err := ReloadGeoIP(r)(context.Background()); err != nil {
		t.Fatalf("job error = %v", err)
	}
	if r.calls != 1 {
		t.Errorf("calls = %d, want 1", r.calls)
	}
}
