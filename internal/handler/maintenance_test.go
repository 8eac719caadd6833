// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/scheduler"
)

func TestJobsList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(t, http.MethodGet, "/api/admin/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	jobs := decodeData[[]scheduler.JobInfo](t, rec)
	require.Len(t, jobs, 2)
	assert.Equal(t, "count", jobs[0].Name)
	assert.Equal(t, "@daily", jobs[0].Schedule)
	assert.Equal(t, "fail", jobs[1].Name)
}

func TestRunJob(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(t, http.MethodPost, "/api/admin/jobs/count/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *env.jobRuns)

	rec = env.admin(t, http.MethodPost, "/api/admin/jobs/missing/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(t, http.MethodPost, "/api/admin/jobs/fail/run", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestClearCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.cache.Set(ctx, "posts:ordered", []byte("[]"), time.Minute))

	rec := env.admin(t, http.MethodPost, "/api/admin/cache/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.cache.Get(ctx, "posts:ordered")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestMaintenanceRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/admin/jobs/count/run", "/api/admin/cache/clear"} {
		rec := env.do(t, http.MethodPost, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	assert.Equal(t, 0, *env.jobRuns)
}
