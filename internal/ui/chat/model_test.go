// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeBackend struct {
	mu      sync.Mutex
	token   string
	threads []model.Thread
	saved   []model.Thread
}

func (f *fakeBackend) Login(context.Context, string, string) (string, error)    { return f.token, nil }
func (f *fakeBackend) Register(context.Context, string, string) (string, error) { return f.token, nil }
func (f *fakeBackend) RequestPasswordReset(context.Context, string) (string, error) {
	return "", nil
}
func (f *fakeBackend) VerifyResetCode(context.Context, string, string) (string, error) {
	return "", nil
}
func (f *fakeBackend) ResetPassword(context.Context, string, string, string) (string, error) {
	return "", nil
}
func (f *fakeBackend) ListThreads(context.Context) ([]model.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Thread(nil), f.threads...), nil
}
func (f *fakeBackend) SaveThread(_ context.Context, t model.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, t)
	return nil
}
func (f *fakeBackend) DeleteThread(context.Context, string) error { return nil }
func (f *fakeBackend) GetProfile(context.Context) (api.Profile, error) {
	return api.Profile{}, nil
}
func (f *fakeBackend) UpdateProfile(context.Context, api.ProfileUpdate) (api.Profile, string, error) {
	return api.Profile{}, "", nil
}
func (f *fakeBackend) DeleteAccount(context.Context) error                     { return nil }
func (f *fakeBackend) ListHistory(context.Context) ([]api.HistoryEntry, error) { return nil, nil }
func (f *fakeBackend) AppendHistory(context.Context, string, string, string) error {
	return nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(context.Context, []api.Turn) (api.Generation, error) {
	return api.Generation{Code: "print(sorted(xs))"}, nil
}

func (fakeGenerator) GenerateFromPrompt(context.Context, string, string) (api.Generation, error) {
	return api.Generation{Code: "x"}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func newGuestModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	a := app.NewWithDeps(app.Deps{
		KV:         storage.NewMemory(),
		Backend:    &fakeBackend{},
		Generator:  fakeGenerator{},
		GuestLimit: 3,
	})
	m := New(a, config.Default())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = send(t, m, m.loadCmd()())
	return m, a
}

func newSignedInModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ada@example.com"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	alpha, beta := model.NewThread("a"), model.NewThread("b")
	alpha.Title, beta.Title = "Alpha notes", "Beta ideas"
	a := app.NewWithDeps(app.Deps{
		KV:        storage.NewMemory(),
		Backend:   &fakeBackend{token: tok, threads: []model.Thread{alpha, beta}},
		Generator: fakeGenerator{},
	})
	require.NoError(t, a.Login(context.Background(), "ada@example.com", "pw"))

	m := New(a, config.Default())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = send(t, m, m.loadCmd()())
	return m, a
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and returns the model with the command it produced.
func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

// settle runs cmd and feeds back the messages that finish an intent. Timer
// commands are never produced by the intents themselves, so running them
// does not block.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case submitDoneMsg, actionDoneMsg, threadsLoadedMsg:
			m = send(t, m, msg)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func ask(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(t, m, text)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return settle(t, m, cmd)
}

// =============================================================================
// TESTS
// =============================================================================

func TestModel_GuestRoundCreatesThread(t *testing.T) {
	m, a := newGuestModel(t)
	assert.Contains(t, m.View(), "Guest · 3/3 left")

	m = ask(t, m, "sort a list in python")

	active, ok := a.Store().Active()
	require.True(t, ok)
	require.Len(t, active.Messages, 2)
	assert.Equal(t, "sort a list in python", active.Title)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, 0, m.inflight)

	view := m.View()
	assert.Contains(t, view, "sort a list in python")
	assert.Contains(t, view, "Guest · 2/3 left")
}

func TestModel_SecondEnterWaitsForNewThread(t *testing.T) {
	m, a := newGuestModel(t)

	m = typeText(t, m, "first")
	m, first := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)
	assert.True(t, m.creating)

	m = typeText(t, m, "second")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Still waiting for the last reply", m.notice)
	assert.Equal(t, "second", m.input.Value())
	assert.Equal(t, 1, m.inflight)

	m = settle(t, m, first)
	assert.False(t, m.creating)
	assert.Equal(t, 0, m.inflight)
	assert.False(t, m.noticeErr)
	require.Equal(t, 1, a.Store().Len())

	active, ok := a.Store().Active()
	require.True(t, ok)
	require.Len(t, active.Messages, 2)
	assert.Equal(t, "first", active.Messages[0].Text)
}

func TestModel_EmptyPromptIgnored(t *testing.T) {
	m, a := newGuestModel(t)
	m = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, a.Store().Len())
	assert.Equal(t, 0, m.inflight)
}

func TestModel_GuestBlockedAfterQuota(t *testing.T) {
	m, a := newGuestModel(t)
	for i := 0; i < 3; i++ {
		m = ask(t, m, "hello")
	}
	require.True(t, a.Blocked())
	assert.Contains(t, m.View(), BlockedBanner)

	m = typeText(t, m, "one more")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "one more", m.input.Value())

	active, _ := a.Store().Active()
	assert.Len(t, active.Messages, 6)
}

func TestModel_NewThreadAndRename(t *testing.T) {
	m, a := newGuestModel(t)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = settle(t, m, cmd)
	id := a.Store().ActiveID()
	require.NotEmpty(t, id)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, modeRename, m.mode)
	assert.Equal(t, model.DefaultTitle, m.rename.Value())
	assert.Contains(t, m.View(), "Rename chat")

	m.rename.SetValue("Sorting")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeNormal, m.mode)
	m = settle(t, m, cmd)

	th, ok := a.Store().Thread(id)
	require.True(t, ok)
	assert.Equal(t, "Sorting", th.Title)
	assert.Equal(t, "Renamed", m.notice)
}

func TestModel_RenameRejectionShownAsNotice(t *testing.T) {
	m, _ := newGuestModel(t)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = settle(t, m, cmd)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, cmd)
	assert.True(t, m.noticeErr)
	assert.NotEmpty(t, m.notice)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	m, a := newSignedInModel(t)
	require.Equal(t, "a", a.Store().ActiveID())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Alpha notes")

	m, _ = press(t, m, runeKey('n'))
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, 2, a.Store().Len())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	m, cmd := press(t, m, runeKey('y'))
	m = settle(t, m, cmd)

	assert.Equal(t, 1, a.Store().Len())
	assert.Equal(t, "", a.Store().ActiveID())
	_, ok := a.Store().Thread("a")
	assert.False(t, ok)
	assert.Equal(t, "Chat deleted", m.notice)
}

func TestModel_MoveCursorSelectsThread(t *testing.T) {
	m, a := newSignedInModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlJ})
	assert.Equal(t, "b", a.Store().ActiveID())
	assert.Equal(t, 1, m.cursor)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlJ})
	assert.Equal(t, "b", a.Store().ActiveID())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlK})
	assert.Equal(t, "a", a.Store().ActiveID())
	assert.Equal(t, 0, m.cursor)
}

func TestModel_SearchFiltersSidebar(t *testing.T) {
	m, _ := newSignedInModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	require.Equal(t, modeSearch, m.mode)
	m = typeText(t, m, "BETA")

	visible := m.visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "b", visible[0].ID)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeNormal, m.mode)
	assert.Len(t, m.visible(), 2)
}

func TestModel_FavoriteAndFavoritesOnly(t *testing.T) {
	m, a := newSignedInModel(t)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m = settle(t, m, cmd)
	th, _ := a.Store().Thread("a")
	assert.True(t, th.Favorite)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}, Alt: true})
	assert.True(t, m.favoritesOnly)
	require.Len(t, m.visible(), 1)
	assert.Contains(t, m.View(), "★ Favorites")
}

func TestModel_SignedInRoundIsSaved(t *testing.T) {
	m, a := newSignedInModel(t)
	m = ask(t, m, "write a java class")

	th, _ := a.Store().Thread("a")
	require.Len(t, th.Messages, 2)
	assert.Equal(t, model.Synced, th.Sync)
	assert.Contains(t, th.Messages[1].Text, "```java")
	assert.Contains(t, m.View(), "ada@example.com")
	assert.False(t, m.noticeErr)
}

func TestModel_ToggleTheme(t *testing.T) {
	m, a := newGuestModel(t)
	require.Equal(t, "dark", m.theme.Name)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "light", m.theme.Name)
	assert.Equal(t, "light", a.Theme())
}

func TestModel_ConfigReloadSwapsTheme(t *testing.T) {
	m, a := newGuestModel(t)

	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.UI.ShowSyncState = false
	m = send(t, m, ConfigChangedMsg{Config: cfg})

	assert.Equal(t, "light", m.theme.Name)
	assert.Equal(t, "light", a.Theme())
	assert.False(t, m.cfg.UI.ShowSyncState)

	// Same theme again is not a change.
	m = send(t, m, ConfigChangedMsg{Config: cfg.Clone()})
	assert.Equal(t, "light", m.theme.Name)
}

func TestModel_NoticeExpires(t *testing.T) {
	m, _ := newGuestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotEmpty(t, m.notice)

	m = send(t, m, clearNoticeMsg{id: m.noticeID - 1})
	assert.NotEmpty(t, m.notice)
	m = send(t, m, clearNoticeMsg{id: m.noticeID})
	assert.Empty(t, m.notice)
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newGuestModel(t)
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
