// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session implements the stateless admin session: an expiring
// payload signed with HMAC-SHA256 and carried in an HttpOnly cookie.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Lifetime is how long a freshly issued token stays valid.
const Lifetime = 12 * time.Hour

// ErrMissingSecret is returned by NewCodec when no signing secret is configured.
var ErrMissingSecret = errors.New("session: SESSION_SECRET is not configured")

// Payload is the signed content of a session token.
type Payload struct {
	Username string `json:"username"`
	// Exp is the expiry as Unix milliseconds.
	Exp int64 `json:"exp"`
}

// ExpiresAt returns the payload expiry as a time.
func (p Payload) ExpiresAt() time.Time {
	return time.UnixMilli(p.Exp)
}

// Codec creates and validates session tokens.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec returns a codec signing with secret.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create issues a token for username that expires after Lifetime.
func (c *Codec) Create(username string) (string, error) {
	payload := Payload{
		Username: username,
		Exp:      c.now().Add(Lifetime).UnixMilli(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + c.sign(encoded), nil
}

// Validate returns the payload of token when its signature matches and it has
// not expired. Any malformed, forged or expired token yields ok == false.
func (c *Codec) Validate(token string) (Payload, bool) {
	dot := strings.LastIndexByte(token, '.')
	if dot <= 0 || dot == len(token)-1 {
		return Payload{}, false
	}
	encoded, signature := token[:dot], token[dot+1:]

	if !hmac.Equal([]byte(signature), []byte(c.sign(encoded))) {
		return Payload{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, false
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Payload{}, false
	}
	if c.now().UnixMilli() >= payload.Exp {
		return Payload{}, false
	}
	return payload, true
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
