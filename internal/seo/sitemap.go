// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the machine-readable views of the site: sitemap, RSS
// feed and robots.txt.
package seo

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/olegiv/psynverse/internal/model"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder builds sitemap XML.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder. Trailing slashes of
// siteURL are dropped.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimRight(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL,
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddSection adds a listing page such as /blog.
func (b *SitemapBuilder) AddSection(path string) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/" + strings.TrimLeft(path, "/"),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	})
}

// AddPost adds a post page to the sitemap.
func (b *SitemapBuilder) AddPost(slug string, updatedAt time.Time) {
	url := SitemapURL{
		Loc:        b.siteURL + "/blog/" + slug,
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.6",
	}
	if !updatedAt.IsZero() {
		url.LastMod = updatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap lists the home page, the blog and book sections and every
// given post.
func GenerateSitemap(siteURL string, posts []model.Post) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddSection("blog")
	builder.AddSection("books")
	for _, p := range posts {
		builder.AddPost(p.Slug, p.UpdatedAt)
	}
	return builder.Build()
}
