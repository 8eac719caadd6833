// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestGenerateRobots(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RobotsConfig
		contains []string
		excludes []string
	}{
		{
			name: "default",
			cfg:  RobotsConfig{SiteURL: "https://example.com/"},
			contains: []string{
				"User-agent: *",
				"Disallow: /admin\n",
				"Disallow: /api/admin\n",
				"Allow: /",
				"Sitemap: https://example.com/sitemap.xml",
			},
		},
		{
			name:     "disallow all",
			cfg:      RobotsConfig{SiteURL: "https://example.com", DisallowAll: true},
			contains: []string{"User-agent: *", "Disallow: /\n"},
			excludes: []string{"Sitemap:", "Allow: /"},
		},
		{
			name:     "no site url",
			cfg:      RobotsConfig{},
			contains: []string{"Disallow: /admin"},
			excludes: []string{"Sitemap:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRobots(tt.cfg)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("GenerateRobots() missing %q in:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("GenerateRobots() should not contain %q in:\n%s", s, got)
				}
			}
		})
	}
}
