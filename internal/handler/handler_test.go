// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/psynverse/internal/auth"
	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/imagehost"
	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/scheduler"
	"github.com/olegiv/psynverse/internal/seo"
	"github.com/olegiv/psynverse/internal/service"
	"github.com/olegiv/psynverse/internal/session"
	"github.com/olegiv/psynverse/internal/store"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "s3cret-password"
	testSiteURL       = "https://psynverse.example"
)

type fakeUploader struct {
	folder string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, folder string) (*imagehost.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	f.folder = folder
	return &imagehost.Upload{
		URL:       "http://res.example.com/" + folder + "/img.png",
		SecureURL: "https://res.example.com/" + folder + "/img.png",
		PublicID:  folder + "/img",
		Width:     4,
		Height:    4,
	}, nil
}

type testEnv struct {
	router    http.Handler
	store     *store.Store
	codec     *session.Codec
	events    *service.EventService
	cache     cache.Cacher
	jobRuns   *int
	uploader  *fakeUploader
	imagesDir string
}

type envOptions struct {
	adminPassword  string
	uploader       imagehost.Uploader
	maxUploadBytes int64
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, envOptions{adminPassword: testAdminPassword})
}

func newTestEnvWith(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	st := store.NewStore(db)

	codec, err := session.NewCodec("test-session-secret")
	require.NoError(t, err)

	memCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = memCache.Close() })

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:     100,
		IPBurst:         100,
		CleanupInterval: -1,
	})
	t.Cleanup(lp.Stop)

	up := &fakeUploader{}
	uploader := opts.uploader
	if uploader == nil {
		uploader = up
	}

	events := service.NewEventService(db)
	posts := service.NewPostService(st, memCache, time.Minute, events)
	books := service.NewBookService(st, memCache, time.Minute, events)
	media := service.NewMediaService(uploader, service.MediaConfig{MaxBytes: opts.maxUploadBytes}, events)

	imagesDir := t.TempDir()

	jobRuns := 0
	sched := scheduler.New(nil)
	require.NoError(t, sched.AddJob("count", "@daily", func(context.Context) error {
		jobRuns++
		return nil
	}))
	require.NoError(t, sched.AddJob("fail", "@weekly", func(context.Context) error {
		return errors.New("job exploded")
	}))

	routes := Routes{
		Health: NewHealthHandler(db, memCache),
		Public: NewPublicHandler(PublicConfig{
			Posts:         posts,
			Books:         books,
			Cache:         memCache,
			CacheTTL:      time.Minute,
			Feed:          seo.FeedConfig{SiteURL: testSiteURL, Title: "Psynverse", Description: "Notes", Language: "en"},
			Robots:        seo.RobotsConfig{SiteURL: testSiteURL},
			BookImagesDir: imagesDir,
		}),
		Auth: NewAuthHandler(AuthConfig{
			Admin:           auth.NewAdmin(testAdminUser, opts.adminPassword),
			Codec:           codec,
			LoginProtection: lp,
			EventService:    events,
		}),
		Posts:           NewPostsHandler(posts),
		Books:           NewBooksHandler(books),
		Media:           NewMediaHandler(media),
		Events:          NewEventsHandler(events),
		Maintenance:     NewMaintenanceHandler(sched, memCache),
		Codec:           codec,
		LoginProtection: lp,
	}

	r := chi.NewRouter()
	routes.Register(r)

	return &testEnv{
		router:    r,
		store:     st,
		codec:     codec,
		events:    events,
		cache:     memCache,
		jobRuns:   &jobRuns,
		uploader:  up,
		imagesDir: imagesDir,
	}
}

// sessionCookie returns a valid admin session cookie.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := e.codec.Create(testAdminUser)
	require.NoError(t, err)
	return session.Cookie(token, false)
}

// do sends body as JSON. A nil cookie sends an anonymous request.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// admin sends an authenticated JSON request.
func (e *testEnv) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, e.sessionCookie(t))
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error.Code
}
