// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Settings is the singleton record holding the curated display orders.
// Version increments on every write.
type Settings struct {
	BlogOrder []string  `json:"blogOrder"`
	BookOrder []string  `json:"bookOrder"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}
