// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// folderStrip matches characters not allowed in an upload folder path.
var folderStrip = regexp.MustCompile(`[^\w\-/]`)

// SanitizeFilename extracts only the base filename, removing any directory
// components. This prevents path traversal via names like "../../etc/passwd".
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if safe == "." || safe == ".." || safe == "" || safe == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// ValidatePathWithinBase ensures that targetPath resolves inside basePath.
func ValidatePathWithinBase(basePath, targetPath string) error {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	// Trailing separator keeps /uploads-malicious from matching /uploads.
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: path escapes base directory")
	}

	return nil
}

// FileUnder returns the path of a user-named file inside baseDir.
// The name is reduced to its basename first, so "../x.png" resolves to
// baseDir/x.png and can never escape the directory.
func FileUnder(baseDir, name string) (string, error) {
	safe, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(baseDir, safe)
	if err := ValidatePathWithinBase(baseDir, full); err != nil {
		return "", err
	}
	return full, nil
}

// SanitizeFolder normalizes a user-supplied folder path for the image host.
// Only word characters, hyphens and slashes survive; empty segments are
// dropped. The result is joined below base ("" yields base itself).
func SanitizeFolder(base, folder string) string {
	cleaned := folderStrip.ReplaceAllString(folder, "")

	var segments []string
	for _, seg := range strings.Split(cleaned, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return base
	}
	return base + "/" + strings.Join(segments, "/")
}
