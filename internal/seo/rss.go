// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/psynverse/internal/model"
)

// FeedConfig describes the RSS channel.
type FeedConfig struct {
	SiteURL     string
	Title       string
	Description string
	Language    string
}

type rss struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	XMLNSAtom string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata    `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

var plainText = bluemonday.StrictPolicy()

// GenerateRSS renders an RSS 2.0 feed with one item per post, in the given
// order. Excerpts are reduced to plain text.
func GenerateRSS(cfg FeedConfig, posts []model.Post) ([]byte, error) {
	site := strings.TrimRight(cfg.SiteURL, "/")

	channel := rssChannel{
		Title:       cfg.Title,
		Link:        site,
		Description: cfg.Description,
		Language:    cfg.Language,
		AtomLink: atomLink{
			Href: site + "/rss.xml",
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: make([]rssItem, 0, len(posts)),
	}

	var latest time.Time
	for _, p := range posts {
		link := site + "/blog/" + p.Slug
		item := rssItem{
			Title:       cdata{Text: p.Title},
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: PlainText(p.Excerpt),
			Categories:  p.Tags,
		}

		published := p.PublishedAt()
		if published.IsZero() {
			published = p.CreatedAt
		}
		if !published.IsZero() {
			item.PubDate = published.UTC().Format(time.RFC1123Z)
		}
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
		channel.Items = append(channel.Items, item)
	}
	if !latest.IsZero() {
		channel.LastBuildDate = latest.UTC().Format(time.RFC1123Z)
	}

	doc := rss{
		Version:   "2.0",
		XMLNSAtom: "http://www.w3.org/2005/Atom",
		Channel:   channel,
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// PlainText strips markup from s and returns unescaped text.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
