// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// fakeBackend implements Backend in memory.
type fakeBackend struct {
	mu       sync.Mutex
	token    string
	threads  []model.Thread
	history  []string
	deleted  bool
	loginErr error
}

func (f *fakeBackend) Login(context.Context, string, string) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeBackend) Register(context.Context, string, string) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeBackend) RequestPasswordReset(context.Context, string) (string, error) {
	return "sent", nil
}
func (f *fakeBackend) VerifyResetCode(context.Context, string, string) (string, error) {
	return "ok", nil
}
func (f *fakeBackend) ResetPassword(context.Context, string, string, string) (string, error) {
	return "done", nil
}
func (f *fakeBackend) ListThreads(context.Context) ([]model.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Thread(nil), f.threads...), nil
}
func (f *fakeBackend) SaveThread(context.Context, model.Thread) error { return nil }
func (f *fakeBackend) DeleteThread(context.Context, string) error     { return nil }
func (f *fakeBackend) GetProfile(context.Context) (api.Profile, error) {
	return api.Profile{Name: "Ada", Email: "ada@example.com", Age: 30}, nil
}
func (f *fakeBackend) UpdateProfile(context.Context, api.ProfileUpdate) (api.Profile, string, error) {
	return api.Profile{}, "", nil
}
func (f *fakeBackend) DeleteAccount(context.Context) error {
	f.deleted = true
	return nil
}
func (f *fakeBackend) ListHistory(context.Context) ([]api.HistoryEntry, error) { return nil, nil }
func (f *fakeBackend) AppendHistory(_ context.Context, query, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, query)
	return nil
}

type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(context.Context, []api.Turn) (api.Generation, error) {
	return api.Generation{Code: "x"}, g.err
}

func (g *fakeGenerator) GenerateFromPrompt(_ context.Context, _, language string) (api.Generation, error) {
	return api.Generation{Result: "lang=" + language}, g.err
}

func newTestApp(t *testing.T) (*App, *fakeBackend, *storage.Memory) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ada@example.com"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	backend := &fakeBackend{
		token:   tok,
		threads: []model.Thread{model.NewThread("a"), model.NewThread("b")},
	}
	kv := storage.NewMemory()
	a := NewWithDeps(Deps{KV: kv, Backend: backend, Generator: &fakeGenerator{}, GuestLimit: 3})
	return a, backend, kv
}

func TestApp_GuestStartIsEmpty(t *testing.T) {
	a, _, _ := newTestApp(t)
	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, 0, a.Store().Len())
	assert.False(t, a.Session().IsAuthenticated())
}

func TestApp_LoginResetsQuotaAndLoadsThreads(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	guestStore := a.Store()
	id, err := guestStore.CreateThread(ctx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		a.Pipeline().Submit(ctx, id, "hello")
	}
	assert.True(t, a.Blocked())

	require.NoError(t, a.Login(ctx, "ada@example.com", "pw"))
	assert.Equal(t, 3, a.Quota().Remaining())
	assert.False(t, a.Blocked())
	assert.NotSame(t, guestStore, a.Store())
	assert.Equal(t, 2, a.Store().Len())
	assert.Equal(t, "a", a.Store().ActiveID())
	assert.Equal(t, 0, guestStore.Len())
}

func TestApp_StartRestoresSavedLogin(t *testing.T) {
	a, backend, kv := newTestApp(t)
	require.NoError(t, a.Login(context.Background(), "ada@example.com", "pw"))

	restarted := NewWithDeps(Deps{KV: kv, Backend: backend, Generator: &fakeGenerator{}})
	require.NoError(t, restarted.Start(context.Background()))
	assert.True(t, restarted.Session().IsAuthenticated())
	assert.Equal(t, 2, restarted.Store().Len())
}

func TestApp_LogoutDiscardsState(t *testing.T) {
	a, _, kv := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Login(ctx, "ada@example.com", "pw"))

	require.NoError(t, a.Logout())
	assert.False(t, a.Session().IsAuthenticated())
	assert.Equal(t, 0, a.Store().Len())
	_, ok, _ := kv.Get(storage.KeyActiveThread)
	assert.False(t, ok)
	_, ok, _ = kv.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestApp_LoginFailureKeepsGuest(t *testing.T) {
	a, backend, _ := newTestApp(t)
	backend.loginErr = &api.Error{Status: 404, Message: "User not found"}

	err := a.Login(context.Background(), "x@y.z", "pw")
	require.Error(t, err)
	assert.Equal(t, "❌ User not found", err.Error())
	assert.False(t, a.Session().IsAuthenticated())
}

func TestApp_DeleteAccountSignsOut(t *testing.T) {
	a, backend, _ := newTestApp(t)
	require.NoError(t, a.Login(context.Background(), "ada@example.com", "pw"))

	require.NoError(t, a.DeleteAccount(context.Background()))
	assert.True(t, backend.deleted)
	assert.False(t, a.Session().IsAuthenticated())
}

func TestApp_AskRecordsHistoryWhenSignedIn(t *testing.T) {
	a, backend, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Login(ctx, "ada@example.com", "pw"))

	ans, err := a.Ask(ctx, "an html page", "")
	require.NoError(t, err)
	assert.Equal(t, "html", ans.Language)
	assert.Equal(t, "lang=html", ans.Output)
	assert.Contains(t, ans.Reply, "```html\nlang=html\n```")
	assert.Equal(t, []string{"an html page"}, backend.history)
}

func TestApp_AskSpendsGuestQuota(t *testing.T) {
	a, backend, _ := newTestApp(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := a.Ask(ctx, "q", "python")
		require.NoError(t, err)
	}
	_, err := a.Ask(ctx, "q", "python")
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Empty(t, backend.history)
}

func TestApp_AskFailure(t *testing.T) {
	kv := storage.NewMemory()
	a := NewWithDeps(Deps{KV: kv, Backend: &fakeBackend{}, Generator: &fakeGenerator{err: api.ErrTimeout}})

	_, err := a.Ask(context.Background(), "q", "")
	assert.True(t, errors.Is(err, api.ErrTimeout))
	assert.Equal(t, 3, a.Quota().Remaining())
}

func TestApp_Theme(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Equal(t, ThemeDark, a.Theme())

	next, err := a.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
	assert.Equal(t, ThemeLight, a.Theme())

	assert.Error(t, a.SetTheme("neon"))
}
