// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers for building storage keys
// and sanitizing user-supplied identifiers, paths and URLs.
package util

import (
	"regexp"
	"strings"
)

// slugWhitespace is the ECMAScript whitespace set. RE2's \s alone leaves out
// \v, no-break and other Unicode spaces.
const slugWhitespace = `\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	// slugStrip matches everything a slug may not contain.
	slugStrip = regexp.MustCompile(`[^a-z0-9` + slugWhitespace + `-]`)
	// slugSpaces matches runs of whitespace.
	slugSpaces = regexp.MustCompile(`[` + slugWhitespace + `]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// SanitizeSlug converts arbitrary input into the canonical slug used as a
// post's storage key. It lower-cases the input, drops every character outside
// [a-z0-9], whitespace and hyphen, turns whitespace runs into a single hyphen,
// collapses repeated hyphens and trims hyphens from both ends.
//
// An empty result means the input has no usable identifier; callers must
// treat it as a validation failure.
func SanitizeSlug(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = slugStrip.ReplaceAllString(result, "")
	result = slugSpaces.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is already in canonical slug form.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
