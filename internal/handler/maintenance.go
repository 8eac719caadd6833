// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/scheduler"
)

// JobRunner lists and runs scheduled maintenance jobs.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(name string) error
}

// MaintenanceHandler exposes scheduled jobs and the read-model cache to the
// admin.
type MaintenanceHandler struct {
	jobs  JobRunner
	cache cache.Cacher
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(jobs JobRunner, c cache.Cacher) *MaintenanceHandler {
	return &MaintenanceHandler{jobs: jobs, cache: c}
}

// Jobs handles GET /api/admin/jobs.
func (h *MaintenanceHandler) Jobs(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.jobs.Jobs())
}

// RunJob handles POST /api/admin/jobs/{name}/run.
func (h *MaintenanceHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.jobs.Trigger(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteNotFound(w, "job not found")
			return
		}
		slog.Error("manual job run failed", "job", name, "error", err)
		WriteInternalError(w, "job failed")
		return
	}

	slog.Info("job run manually", "job", name)
	WriteSuccess(w, map[string]string{"job": name, "status": "ok"})
}

// ClearCache handles POST /api/admin/cache/clear.
func (h *MaintenanceHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		slog.Error("clearing cache", "error", err)
		WriteInternalError(w, "failed to clear cache")
		return
	}

	slog.Info("cache cleared")
	WriteSuccess(w, map[string]string{"status": "cleared"})
}
