// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/service"
)

// MaxEventsPerPage caps the limit query parameter.
const MaxEventsPerPage = 200

// EventsHandler handles event log routes.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// EventsPage is a page of the event log.
type EventsPage struct {
	Events []model.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// List handles GET /api/admin/events?level=&category=&limit=&offset=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := service.EventFilter{
		Level:    q.Get("level"),
		Category: q.Get("category"),
		Limit:    service.DefaultEventPageSize,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, MaxEventsPerPage)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			WriteBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	events, total, err := h.events.ListEvents(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	WriteSuccess(w, EventsPage{Events: events, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}
