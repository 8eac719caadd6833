// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Accepted layouts for Post.Date.
var postDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04",
}

// Post is a blog/journal entry keyed by its slug.
type Post struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Excerpt    string    `json:"excerpt"`
	Tags       []string  `json:"tags"`
	CoverImage string    `json:"coverImage,omitempty"`
	Content    string    `json:"content"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Derived from Content when the post is read.
	ReadingMinutes int       `json:"readingMinutes"`
	Headings       []Heading `json:"headings"`
}

// Heading is a markdown heading of a post with its anchor slug.
type Heading struct {
	Depth int    `json:"depth"`
	Value string `json:"value"`
	Slug  string `json:"slug"`
}

// PublishedAt parses Date. The zero time is returned for unparsable dates.
func (p *Post) PublishedAt() time.Time {
	t, err := ParsePostDate(p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasTag reports whether the post carries tag, compared case-insensitively.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ParsePostDate parses a post date in one of the accepted layouts.
func ParsePostDate(s string) (time.Time, error) {
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// PostInput is the untrusted field bag submitted by the admin editor.
type PostInput struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Excerpt    string `json:"excerpt"`
	Tags       Tags   `json:"tags"`
	CoverImage string `json:"coverImage"`
	Content    string `json:"content"`
	// Published defaults to true when omitted.
	Published *bool `json:"published"`
}

// Tags is a list of post tags. It decodes from either a JSON array of strings
// or a single comma-separated string; entries are trimmed and empties dropped.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Tags{}
		return nil
	}

	var raw []string
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.Split(s, ",")
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tags must be a list or a comma-separated string: %w", err)
	}

	*t = NormalizeTags(raw)
	return nil
}

// NormalizeTags trims every tag and drops empty ones, keeping their order.
func NormalizeTags(raw []string) Tags {
	out := make(Tags, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
