// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ordering reconciles admin-curated display orders with the live
// set of posts and books.
package ordering

import (
	"slices"
	"sort"
)

// Apply returns items arranged by order. Ids in order that match an item are
// emitted first, each at most once; stale or duplicate ids are skipped. Items
// not named by order follow, sorted by less when it is non-nil (stable) or in
// their original sequence otherwise.
//
// The result is always a permutation of items.
func Apply[T any](items []T, order []string, key func(T) string, less func(a, b T) bool) []T {
	byID := make(map[string]int, len(items))
	for i, item := range items {
		if _, dup := byID[key(item)]; !dup {
			byID[key(item)] = i
		}
	}

	used := make([]bool, len(items))
	out := make([]T, 0, len(items))
	for _, id := range order {
		i, ok := byID[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		out = append(out, items[i])
	}

	rest := make([]T, 0, len(items)-len(out))
	for i, item := range items {
		if !used[i] {
			rest = append(rest, item)
		}
	}
	if less != nil {
		sort.SliceStable(rest, func(i, j int) bool { return less(rest[i], rest[j]) })
	}

	return append(out, rest...)
}

// Place puts id into order at the position previously held by previous or by
// id itself, whichever comes first. Existing entries for both are removed. If
// neither was present, id is prepended.
func Place(order []string, id, previous string) []string {
	at := -1
	for i, entry := range order {
		if entry == id || (previous != "" && entry == previous) {
			at = i
			break
		}
	}

	filtered := make([]string, 0, len(order)+1)
	for _, entry := range order {
		if entry == id || (previous != "" && entry == previous) {
			continue
		}
		filtered = append(filtered, entry)
	}

	if at < 0 || at > len(filtered) {
		return append([]string{id}, filtered...)
	}
	return slices.Insert(filtered, at, id)
}

// Remove returns order without any occurrence of id.
func Remove(order []string, id string) []string {
	out := make([]string, 0, len(order))
	for _, entry := range order {
		if entry != id {
			out = append(out, entry)
		}
	}
	return out
}

// Normalize cleans a client-submitted order: every entry is passed through
// sanitize (when non-nil), and empty, duplicate or unknown ids are dropped.
// A nil known set accepts every id.
func Normalize(order []string, sanitize func(string) string, known map[string]bool) []string {
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order))
	for _, entry := range order {
		if sanitize != nil {
			entry = sanitize(entry)
		}
		if entry == "" || seen[entry] {
			continue
		}
		if known != nil && !known[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	return out
}
