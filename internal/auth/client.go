// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"github.com/mileusna/useragent"
)

// CountryResolver maps an IP address to a country code.
type CountryResolver interface {
	Country(ip string) string
}

// Client describes who made a login attempt, for the audit log.
type Client struct {
	IP      string
	Country string
	Browser string
	OS      string
	Device  string
}

// DescribeClient parses the user agent and resolves the country of ip.
// geo may be nil.
func DescribeClient(ip, userAgent string, geo CountryResolver) Client {
	ua := useragent.Parse(userAgent)

	c := Client{
		IP:      ip,
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if c.Browser == "" {
		c.Browser = "Unknown"
	}
	if c.OS == "" {
		c.OS = "Unknown"
	}

	switch {
	case ua.Bot:
		c.Device = "bot"
	case ua.Tablet:
		c.Device = "tablet"
	case ua.Mobile:
		c.Device = "mobile"
	default:
		c.Device = "desktop"
	}

	if geo != nil {
		c.Country = geo.Country(ip)
	}
	return c
}

// Metadata returns the client as event metadata. Empty values are omitted.
func (c Client) Metadata() map[string]any {
	m := map[string]any{
		"ip":      c.IP,
		"browser": c.Browser,
		"os":      c.OS,
		"device":  c.Device,
	}
	if c.Country != "" {
		m["country"] = c.Country
	}
	if c.IP == "" {
		delete(m, "ip")
	}
	return m
}
