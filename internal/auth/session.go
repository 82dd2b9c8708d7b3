// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// =============================================================================
// CLAIMS
// =============================================================================

// Claims are the fields copypaste reads from a session token.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		c.Subject = sub
	} else {
		c.Subject = firstString(mc, "id", "userId", "_id")
	}
	c.Email = firstString(mc, "email")
	c.Name = firstString(mc, "name")
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := mc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Expired reports whether the claims carry an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// =============================================================================
// SESSION
// =============================================================================

// Session holds the bearer token of the signed-in user. The zero token means
// guest. All methods are safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims Claims
	store  storage.SecretStore
	now    func() time.Time
}

// NewSession returns a guest session persisted through store.
func NewSession(store storage.SecretStore) *Session {
	return &Session{store: store, now: time.Now}
}

// Restore loads a previously saved token. An expired token is removed and
// the session stays guest.
func (s *Session) Restore() error {
	token, ok, err := s.store.GetSecret(storage.KeyToken)
	if err != nil {
		// A token sealed under another key is useless; forget it.
		if errors.Is(err, storage.ErrUnsealFailed) || errors.Is(err, storage.ErrInvalidSealed) {
			return s.store.Delete(storage.KeyToken)
		}
		return err
	}
	if !ok || token == "" {
		return nil
	}

	claims, _ := ParseClaims(token)
	if claims.Expired(s.now()) {
		return s.store.Delete(storage.KeyToken)
	}

	s.mu.Lock()
	s.token, s.claims = token, claims
	s.mu.Unlock()
	return nil
}

// Set installs and persists a new token. Opaque (non-JWT) tokens are
// accepted with empty claims.
func (s *Session) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	claims, _ := ParseClaims(token)
	if err := s.store.SetSecret(storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.mu.Lock()
	s.token, s.claims = token, claims
	s.mu.Unlock()
	return nil
}

// Clear forgets the token locally and on disk.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token, s.claims = "", Claims{}
	s.mu.Unlock()
	return s.store.Delete(storage.KeyToken)
}

// Token returns the bearer token, or "" for guests and expired sessions.
// It satisfies api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.claims.Expired(s.now()) {
		return ""
	}
	return s.token
}

// IsAuthenticated reports whether a live token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Claims returns the decoded claims of the current token.
func (s *Session) Claims() Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims
}

// TimeRemaining returns the time until the token expires, or 0 when it has
// no expiry or the session is guest.
func (s *Session) TimeRemaining() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.claims.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.claims.ExpiresAt.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}
