// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app owns the state of one running client: the signed-in session,
// the thread store, the guest quota and the message pipeline.
//
// The thread store and pipeline belong to one identity. Signing in or out
// discards them and builds fresh ones, so nothing from one user leaks into
// the next.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/auth"
	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/pipeline"
	"github.com/jeranaias/copypaste-tui/internal/profile"
	"github.com/jeranaias/copypaste-tui/internal/quota"
	"github.com/jeranaias/copypaste-tui/internal/session"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ErrBlocked is returned by Ask when a guest has used up the quota.
var ErrBlocked = errors.New("🚫 You’ve reached the limit for guest responses. Log in to continue.")

// Backend is everything the client asks of the remote service.
type Backend interface {
	auth.Backend
	auth.ResetBackend
	session.Backend
	profile.Backend
	AppendHistory(ctx context.Context, query, result, language string) error
}

// Generator is the code generation service.
type Generator interface {
	pipeline.Generator
	GenerateFromPrompt(ctx context.Context, prompt, language string) (api.Generation, error)
}

// Deps are the collaborators of an App.
type Deps struct {
	KV         storage.SecretStore
	Backend    Backend
	Generator  Generator
	GuestLimit int
	Theme      string
	Log        *zap.Logger
}

// App is the client state. It is safe for concurrent use.
type App struct {
	kv      storage.SecretStore
	backend Backend
	gen     Generator
	log     *zap.Logger

	session *auth.Session
	auth    *auth.Service
	tracker *quota.Tracker
	profile *profile.Service
	theme   string

	mu    sync.RWMutex
	store *session.Store
	pipe  *pipeline.Pipeline
}

// New wires an App from configuration: it opens the state database and
// builds HTTP clients for the backend and the generation service.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, err
	}

	a := &App{}
	tokens := func() string {
		if a.session == nil {
			return ""
		}
		return a.session.Token()
	}

	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.Timeout()).
		WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst).
		WithToken(tokens).
		WithLogger(log.Named("api"))
	gen := api.NewGenerator(cfg.API.GenerateURL).
		WithTimeout(cfg.Timeout()).
		WithToken(tokens).
		WithLogger(log.Named("generate"))

	a.init(Deps{
		KV:         kv,
		Backend:    client,
		Generator:  gen,
		GuestLimit: cfg.Guest.Limit,
		Theme:      cfg.UI.Theme,
		Log:        log,
	})
	return a, nil
}

// NewWithDeps builds an App from explicit collaborators.
func NewWithDeps(d Deps) *App {
	a := &App{}
	a.init(d)
	return a
}

func (a *App) init(d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	a.kv = d.KV
	a.backend = d.Backend
	a.gen = d.Generator
	a.log = d.Log
	a.theme = d.Theme
	a.session = auth.NewSession(d.KV)
	a.auth = auth.NewService(d.Backend, a.session, auth.WithLogger(d.Log.Named("auth")))
	a.tracker = quota.NewTracker(d.KV, d.GuestLimit)
	a.profile = profile.NewService(d.Backend, d.Log.Named("profile"))
	a.rebuild()
}

// rebuild replaces the thread store and pipeline with empty ones.
func (a *App) rebuild() {
	store := session.NewStore(a.backend, a.session, a.kv, session.WithLogger(a.log.Named("threads")))
	pipe := pipeline.New(a.gen, store, a.tracker, a.session, a.log.Named("pipeline"))
	a.mu.Lock()
	a.store, a.pipe = store, pipe
	a.mu.Unlock()
}

// Close releases the state database.
func (a *App) Close() error {
	if c, ok := a.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Store returns the current thread store.
func (a *App) Store() *session.Store {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store
}

// Pipeline returns the current message pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pipe
}

func (a *App) Session() *auth.Session { return a.session }

func (a *App) Quota() *quota.Tracker { return a.tracker }

func (a *App) Profile() *profile.Service { return a.profile }

// Blocked reports whether a guest can no longer generate.
func (a *App) Blocked() bool {
	if a.session.IsAuthenticated() {
		return false
	}
	return a.Pipeline().Blocked() || a.tracker.Reached()
}

// ResetFlow starts a password reset.
func (a *App) ResetFlow() *auth.ResetFlow { return auth.NewResetFlow(a.backend) }

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start restores a saved sign-in and loads its threads. A failed load is
// returned but leaves the App usable.
func (a *App) Start(ctx context.Context) error {
	if err := a.session.Restore(); err != nil {
		a.log.Warn("failed to restore session", zap.Error(err))
	}
	return a.Store().LoadThreads(ctx)
}

// Login signs in, clears the guest quota and loads the user's threads.
func (a *App) Login(ctx context.Context, email, password string) error {
	if err := a.auth.Login(ctx, email, password); err != nil {
		return err
	}
	return a.afterSignIn(ctx)
}

// Register creates an account and signs in.
func (a *App) Register(ctx context.Context, email, password string) error {
	if err := a.auth.Register(ctx, email, password); err != nil {
		return err
	}
	return a.afterSignIn(ctx)
}

func (a *App) afterSignIn(ctx context.Context) error {
	if err := a.tracker.Reset(); err != nil {
		a.log.Warn("failed to reset guest quota", zap.Error(err))
	}
	a.Store().Discard()
	a.rebuild()
	a.profile.Invalidate()
	return a.Store().LoadThreads(ctx)
}

// Logout signs out and drops every thread.
func (a *App) Logout() error {
	a.Store().Discard()
	err := a.auth.Logout()
	a.rebuild()
	a.profile.Invalidate()
	return err
}

// DeleteAccount deletes the account and signs out.
func (a *App) DeleteAccount(ctx context.Context) error {
	if err := a.profile.DeleteAccount(ctx); err != nil {
		return err
	}
	return a.Logout()
}

// =============================================================================
// SINGLE PROMPTS
// =============================================================================

// Answer is the result of Ask.
type Answer struct {
	Language string
	Output   string
	Reply    string
}

// Ask runs one prompt outside any thread. An empty language is classified
// from the prompt. Signed-in users get the exchange recorded in history;
// guests spend quota.
func (a *App) Ask(ctx context.Context, prompt, language string) (Answer, error) {
	if prompt == "" {
		return Answer{}, errors.New("prompt is empty")
	}
	authed := a.session.IsAuthenticated()
	if !authed && a.tracker.Reached() {
		return Answer{}, ErrBlocked
	}
	if language == "" {
		language = pipeline.Classify(prompt)
	}

	gen, err := a.gen.GenerateFromPrompt(ctx, prompt, language)
	if err != nil {
		return Answer{}, fmt.Errorf("%s: %w", pipeline.FailureReply, err)
	}
	ans := Answer{Language: language, Output: gen.Output()}
	ans.Reply = pipeline.FormatReply(prompt, language, ans.Output)

	if authed {
		if err := a.backend.AppendHistory(ctx, prompt, ans.Output, language); err != nil {
			a.log.Warn("failed to record history", zap.Error(err))
		}
	} else if _, err := a.tracker.RecordGuestUse(); err != nil {
		a.log.Warn("failed to record guest use", zap.Error(err))
	}
	return ans, nil
}

// =============================================================================
// THEME
// =============================================================================

// Theme returns the saved theme, falling back to the configured one.
func (a *App) Theme() string {
	def := a.theme
	if def == "" {
		def = ThemeDark
	}
	return storage.GetString(a.kv, storage.KeyTheme, def)
}

// SetTheme saves the theme preference.
func (a *App) SetTheme(name string) error {
	if name != ThemeDark && name != ThemeLight {
		return fmt.Errorf("unknown theme %q (use %s or %s)", name, ThemeDark, ThemeLight)
	}
	return a.kv.Set(storage.KeyTheme, name)
}

// ToggleTheme flips between dark and light and returns the new theme.
func (a *App) ToggleTheme() (string, error) {
	next := ThemeLight
	if a.Theme() == ThemeLight {
		next = ThemeDark
	}
	return next, a.SetTheme(next)
}
