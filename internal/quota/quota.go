// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota counts generation requests made without an account.
//
// The ceiling is a nudge toward signing up, not an access control: the
// counter lives in the local key-value store and a determined user can
// clear it.
package quota

import (
	"fmt"
	"sync"

	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// DefaultLimit is the number of guest generations allowed before the
// sign-in prompt.
const DefaultLimit = 3

// Tracker counts guest generations against a ceiling. It is safe for
// concurrent use.
type Tracker struct {
	mu    sync.Mutex
	store storage.Store
	limit int
}

// NewTracker returns a tracker persisted in store. A non-positive limit
// selects DefaultLimit.
func NewTracker(store storage.Store, limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Tracker{store: store, limit: limit}
}

// Limit returns the ceiling.
func (t *Tracker) Limit() int { return t.limit }

// Count returns the number of recorded guest generations.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count()
}

func (t *Tracker) count() int {
	n, err := storage.GetInt(t.store, storage.KeyGuestCount)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RecordGuestUse adds one generation and reports whether the new count has
// reached the ceiling. The count never exceeds the ceiling.
func (t *Tracker) RecordGuestUse() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.count() + 1
	if n > t.limit {
		n = t.limit
	}
	if err := storage.SetInt(t.store, storage.KeyGuestCount, n); err != nil {
		return n >= t.limit, fmt.Errorf("failed to record guest use: %w", err)
	}
	return n >= t.limit, nil
}

// Reached reports whether the ceiling has been hit.
func (t *Tracker) Reached() bool {
	return t.Remaining() == 0
}

// Remaining returns how many guest generations are left.
func (t *Tracker) Remaining() int {
	if r := t.limit - t.Count(); r > 0 {
		return r
	}
	return 0
}

// Reset clears the counter. Called once after a successful login.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Delete(storage.KeyGuestCount)
}
