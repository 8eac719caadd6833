// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"errors"
)

// DefaultAdminUser is used when ADMIN_USER is not set.
const DefaultAdminUser = "admin"

// ErrNotConfigured is returned when no admin password is configured.
var ErrNotConfigured = errors.New("ADMIN_PASSWORD is not configured")

// Admin holds the configured admin credentials.
type Admin struct {
	Username string
	// Password is either plain text or an argon2id hash.
	Password string
}

// NewAdmin returns credentials for username and password. An empty username
// falls back to DefaultAdminUser.
func NewAdmin(username, password string) Admin {
	if username == "" {
		username = DefaultAdminUser
	}
	return Admin{Username: username, Password: password}
}

// Verify reports whether the submitted credentials match. Both values are
// compared in constant time.
func (a Admin) Verify(username, password string) (bool, error) {
	if a.Password == "" {
		return false, ErrNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1

	var passOK bool
	if IsArgon2Hash(a.Password) {
		ok, err := CheckPassword(password, a.Password)
		if err != nil {
			return false, err
		}
		passOK = ok
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	}

	return userOK && passOK, nil
}
