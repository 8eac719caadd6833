// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown derives read-model metadata from raw post markdown.
// Rendering to HTML is left to the frontend.
package markdown

import (
	"math"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/util"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Headings returns the headings of src in document order.
func Headings(src string) []model.Heading {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	headings := []model.Heading{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		value := strings.TrimSpace(inlineText(h, source))
		headings = append(headings, model.Heading{
			Depth: h.Level,
			Value: value,
			Slug:  util.SanitizeSlug(value),
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// ReadingMinutes estimates the reading time of src, never less than a minute.
func ReadingMinutes(src string) int {
	words := len(strings.Fields(src))
	return max(1, int(math.Round(float64(words)/WordsPerMinute)))
}

// Enrich fills the derived fields of p from its content.
func Enrich(p *model.Post) {
	p.ReadingMinutes = ReadingMinutes(p.Content)
	p.Headings = Headings(p.Content)
}

func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		default:
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}
