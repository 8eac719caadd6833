// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/session"
)

// Route paths.
const (
	RouteHealth     = "/health"
	RouteHealthLive = "/health/live"
	RouteRSS        = "/rss.xml"
	RouteSitemap    = "/sitemap.xml"
	RouteRobots     = "/robots.txt"
	RouteBookImage  = "/books/images/{filename}"

	RouteAPI      = "/api"
	RoutePosts    = "/posts"
	RoutePostSlug = "/posts/{slug}"
	RouteTags     = "/tags"
	RouteBooks    = "/books"

	RouteAdmin          = "/api/admin"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteSession        = "/session"
	RoutePostsOrder     = "/posts/order"
	RouteBookImageAdmin = "/books/{id}/image"
	RouteUpload         = "/upload"
	RouteEvents         = "/events"
	RouteJobs           = "/jobs"
	RouteJobRun         = "/jobs/{name}/run"
	RouteCacheClear     = "/cache/clear"
)

// Routes groups the handlers and middleware mounted by Register.
type Routes struct {
	Health *HealthHandler
	Public *PublicHandler
	Auth   *AuthHandler
	Posts  *PostsHandler
	Books  *BooksHandler
	Media  *MediaHandler
	Events *EventsHandler

	// Maintenance is optional. Nil leaves the job and cache routes unmounted.
	Maintenance *MaintenanceHandler

	Codec           *session.Codec
	LoginProtection *middleware.LoginProtection
	// CSRF guards the admin API. Nil disables it.
	CSRF func(http.Handler) http.Handler
}

// Register mounts all routes on r.
func (rt Routes) Register(r chi.Router) {
	r.Get(RouteHealth, rt.Health.Health)
	r.Get(RouteHealthLive, rt.Health.Liveness)

	r.Get(RouteRSS, rt.Public.RSS)
	r.Get(RouteSitemap, rt.Public.Sitemap)
	r.Get(RouteRobots, rt.Public.Robots)
	r.Get(RouteBookImage, rt.Public.BookImage)

	r.Route(RouteAPI, func(r chi.Router) {
		r.Get(RoutePosts, rt.Public.Posts)
		r.Get(RoutePostSlug, rt.Public.Post)
		r.Get(RouteTags, rt.Public.Tags)
		r.Get(RouteBooks, rt.Public.Books)
	})

	r.Route(RouteAdmin, func(r chi.Router) {
		if rt.CSRF != nil {
			r.Use(rt.CSRF)
		}

		login := http.Handler(http.HandlerFunc(rt.Auth.Login))
		if rt.LoginProtection != nil {
			login = rt.LoginProtection.Middleware()(login)
		}
		r.Method(http.MethodPost, RouteLogin, login)
		r.Post(RouteLogout, rt.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(rt.Codec))

			r.Get(RouteSession, rt.Auth.Session)

			r.Get(RoutePosts, rt.Posts.List)
			r.Post(RoutePosts, rt.Posts.Create)
			r.Put(RoutePosts, rt.Posts.Update)
			r.Post(RoutePostsOrder, rt.Posts.Order)
			r.Delete(RoutePostSlug, rt.Posts.Delete)

			r.Get(RouteBooks, rt.Books.List)
			r.Post(RouteBooks, rt.Books.Save)
			r.Patch(RouteBookImageAdmin, rt.Books.UpdateImage)

			r.Post(RouteUpload, rt.Media.Upload)
			r.Get(RouteEvents, rt.Events.List)

			if rt.Maintenance != nil {
				r.Get(RouteJobs, rt.Maintenance.Jobs)
				r.Post(RouteJobRun, rt.Maintenance.RunJob)
				r.Post(RouteCacheClear, rt.Maintenance.ClearCache)
			}
		})
	})
}
