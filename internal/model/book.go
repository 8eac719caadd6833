// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DefaultBookLink is stored when a book is saved without a link.
const DefaultBookLink = "#"

// Book is an entry of the curated book list.
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Link   string `json:"link"`
	Image  string `json:"image,omitempty"`
	Note   string `json:"note,omitempty"`
}
