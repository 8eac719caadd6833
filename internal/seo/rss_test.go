// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/psynverse/internal/model"
)

func feedConfig() FeedConfig {
	return FeedConfig{
		SiteURL:     "https://example.com/",
		Title:       "Psynverse",
		Description: "Notes",
		Language:    "en",
	}
}

func TestGenerateRSS(t *testing.T) {
	posts := []model.Post{
		{
			Slug:      "second",
			Title:     "Second & <last>",
			Date:      "2025-03-02",
			Excerpt:   "<p>Hello <b>world</b> &amp; friends</p>",
			Tags:      []string{"go", "notes"},
			CreatedAt: time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			Slug:      "first",
			Title:     "First",
			Date:      "not a date",
			CreatedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	out, err := GenerateRSS(feedConfig(), posts)
	require.NoError(t, err)
	body := string(out)

	assert.True(t, strings.HasPrefix(body, xml.Header))
	assert.Contains(t, body, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, body, `<atom:link href="https://example.com/rss.xml" rel="self" type="application/rss+xml"></atom:link>`)
	assert.Contains(t, body, "<link>https://example.com</link>")
	assert.Contains(t, body, "<title><![CDATA[Second & <last>]]></title>")
	assert.Contains(t, body, "<link>https://example.com/blog/second</link>")
	assert.Contains(t, body, `<guid isPermaLink="true">https://example.com/blog/second</guid>`)
	assert.Contains(t, body, "<description>Hello world &amp; friends</description>")
	assert.Contains(t, body, "<category>go</category>")
	assert.Contains(t, body, "<pubDate>Sun, 02 Mar 2025 00:00:00 +0000</pubDate>")
	assert.Contains(t, body, "<pubDate>Wed, 01 Jan 2025 12:00:00 +0000</pubDate>")
	assert.Contains(t, body, "<lastBuildDate>Mon, 03 Mar 2025 08:00:00 +0000</lastBuildDate>")

	assert.Less(t, strings.Index(body, "/blog/second"), strings.Index(body, "/blog/first"))
}

func TestGenerateRSSEmpty(t *testing.T) {
	out, err := GenerateRSS(feedConfig(), nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<item>")
	assert.NotContains(t, string(out), "lastBuildDate")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a < b", PlainText("<em>a &lt; b</em>"))
	assert.Equal(t, "", PlainText("<script>alert(1)</script>"))
	assert.Equal(t, "plain", PlainText("  plain "))
}
