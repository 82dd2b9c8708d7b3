// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile reads and edits the signed-in user's account.
package profile

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/api"
)

// CacheTTL is how long a fetched profile is reused.
const CacheTTL = 5 * time.Minute

// DashboardHistory is how many history entries the dashboard shows.
const DashboardHistory = 5

// Age bounds accepted by CompleteSetup.
const (
	MinAge = 1
	MaxAge = 120
)

const profileKey = "profile"

// Validation errors, reported before any network call.
var (
	ErrNameEmpty       = errors.New("Name cannot be empty.")
	ErrNameUnchanged   = errors.New("This name is same as existing name.")
	ErrSetupIncomplete = errors.New("Please fill in both fields correctly.")
	ErrAgeOutOfRange   = errors.New("Please enter a valid age between 1 and 120.")
)

// Backend is the slice of the API client the service needs.
type Backend interface {
	GetProfile(ctx context.Context) (api.Profile, error)
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (api.Profile, string, error)
	DeleteAccount(ctx context.Context) error
	ListHistory(ctx context.Context) ([]api.HistoryEntry, error)
}

// Service wraps profile calls with a short-lived cache.
type Service struct {
	backend Backend
	cache   *cache.Cache
	log     *zap.Logger
}

// NewService creates a Service.
func NewService(backend Backend, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   cache.New(CacheTTL, 2*CacheTTL),
		log:     log,
	}
}

// Get returns the profile, from cache when fresh.
func (s *Service) Get(ctx context.Context) (api.Profile, error) {
	if x, found := s.cache.Get(profileKey); found {
		return x.(api.Profile), nil
	}
	p, err := s.backend.GetProfile(ctx)
	if err != nil {
		return api.Profile{}, api.UserFacing(err, "Failed to load profile")
	}
	s.cache.Set(profileKey, p, cache.DefaultExpiration)
	return p, nil
}

// Invalidate drops the cached profile.
func (s *Service) Invalidate() {
	s.cache.Delete(profileKey)
}

// UpdateName renames the account. It returns the server's confirmation.
func (s *Service) UpdateName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameEmpty
	}
	current, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	if current.Name == name {
		return "", ErrNameUnchanged
	}
	return s.update(ctx, api.ProfileUpdate{Name: name}, "Profile updated successfully!")
}

// CompleteSetup sets name and age on a fresh account. ageText is read like
// a form field: leading digits count, anything after them is ignored.
func (s *Service) CompleteSetup(ctx context.Context, name, ageText string) (string, error) {
	name = strings.TrimSpace(name)
	age, ok := parseAge(ageText)
	if name == "" || !ok || age == 0 {
		return "", ErrSetupIncomplete
	}
	if age < MinAge || age > MaxAge {
		return "", ErrAgeOutOfRange
	}
	return s.update(ctx, api.ProfileUpdate{Name: name, Age: age}, "Profile setup complete!")
}

func (s *Service) update(ctx context.Context, upd api.ProfileUpdate, fallback string) (string, error) {
	p, msg, err := s.backend.UpdateProfile(ctx, upd)
	s.Invalidate()
	if err != nil {
		return "", api.UserFacing(err, "Failed to update profile")
	}
	if p.Email != "" {
		s.cache.Set(profileKey, p, cache.DefaultExpiration)
	}
	if msg == "" {
		msg = fallback
	}
	s.log.Info("profile updated", zap.Bool("name", upd.Name != ""), zap.Bool("age", upd.Age != 0))
	return msg, nil
}

// parseAge reads an optional sign and the digits after it.
func parseAge(text string) (int, bool) {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	start := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NeedsSetup reports whether the account is missing its name or age.
func NeedsSetup(p api.Profile) bool {
	return strings.TrimSpace(p.Name) == "" || p.Age == 0
}

// DeleteAccount removes the account. The caller signs out afterwards.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.backend.DeleteAccount(ctx); err != nil {
		return api.UserFacing(err, "Failed to delete account")
	}
	s.Invalidate()
	s.log.Info("account deleted")
	return nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard is the account summary screen.
type Dashboard struct {
	Profile     api.Profile
	MemberSince string
	Recent      []api.HistoryEntry
}

// Dashboard loads the profile and the first DashboardHistory entries of
// history in server order.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	history, err := s.backend.ListHistory(ctx)
	if err != nil {
		return Dashboard{}, api.UserFacing(err, "Failed to load history")
	}
	if len(history) > DashboardHistory {
		history = history[:DashboardHistory]
	}

	d := Dashboard{Profile: p, Recent: history}
	if !p.CreatedAt.IsZero() {
		d.MemberSince = p.CreatedAt.Format("2006-01-02")
	}
	return d, nil
}
