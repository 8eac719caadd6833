// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "net/url"

// IsHTTPSURL reports whether value parses as an absolute https URL with a
// non-empty host.
func IsHTTPSURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Hostname() != ""
}
