// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/pipeline"
	"github.com/jeranaias/copypaste-tui/internal/session"
	"github.com/jeranaias/copypaste-tui/internal/ui/components"
	"github.com/jeranaias/copypaste-tui/internal/ui/styles"
)

// BlockedBanner is shown once a guest has used every free response.
const BlockedBanner = "🚫 You’ve reached the limit for guest responses."

// =============================================================================
// CHAT MODE
// =============================================================================

// mode decides which widget receives keystrokes.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeRename
	modeConfirmDelete
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	app   *app.App
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	// Dimensions
	width  int
	height int

	// Components
	viewport viewport.Model
	input    textinput.Model
	search   textinput.Model
	rename   textinput.Model
	spinner  spinner.Model

	mode          mode
	cursor        int
	favoritesOnly bool
	deleteID      string

	loaded   bool
	inflight int
	// creating is set while a round that starts its own thread is running.
	creating bool

	notice    string
	noticeErr bool
	noticeID  int

	// render caches the conversation so keystrokes do not re-highlight it.
	render *renderCache
}

type renderCache struct {
	key     string
	content string
}

// New creates the chat screen for a.
func New(a *app.App, cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask for some code..."
	ti.CharLimit = 4096
	ti.Focus()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search chats..."
	search.CharLimit = 256

	rename := textinput.New()
	rename.Prompt = "> "
	rename.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		app:      a,
		cfg:      cfg,
		theme:    styles.NewTheme(a.Theme()),
		keys:     DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    ti,
		search:   search,
		rename:   rename,
		spinner:  sp,
		render:   &renderCache{},
	}
	m.spinner.Style = m.theme.Spinner
	m.input.PromptStyle = m.theme.InputPrompt
	return m
}

// Init starts the cursor blink and loads the saved session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd())
}

// Update implements tea.Model. Every message ends with a fresh layout and
// conversation render.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.layout()
	m.refresh()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case threadsLoadedMsg:
		m.loaded = true
		m.syncCursor()
		m.viewport.GotoBottom()
		if msg.err != nil {
			return m, m.setNotice("Could not load chats: "+msg.err.Error(), true)
		}
		return m, nil

	case submitDoneMsg:
		if msg.created {
			m.creating = false
		}
		return m.handleSubmitDone(msg.result)

	case actionDoneMsg:
		m.syncCursor()
		if msg.err != nil {
			return m, m.setNotice(msg.err.Error(), true)
		}
		return m, m.setNotice(msg.notice, false)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice, m.noticeErr = "", false
		}
		return m, nil

	case ConfigChangedMsg:
		return m.applyConfig(msg.Config)

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewThread):
		return m, m.createCmd()

	case key.Matches(msg, m.keys.PrevThread):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextThread):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		t, ok := m.app.Store().Active()
		if !ok {
			return m, nil
		}
		m.mode = modeRename
		m.rename.SetValue(t.Title)
		m.rename.CursorEnd()
		m.input.Blur()
		return m, m.rename.Focus()

	case key.Matches(msg, m.keys.Delete):
		id := m.app.Store().ActiveID()
		if id == "" {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.deleteID = id
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		if id := m.app.Store().ActiveID(); id != "" {
			return m, m.favoriteCmd(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.FavoritesOnly):
		m.favoritesOnly = !m.favoritesOnly
		m.syncCursor()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.Blur()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Resync):
		if id := m.app.Store().ActiveID(); id != "" {
			return m, m.resyncCmd(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		name, err := m.app.ToggleTheme()
		if err != nil {
			return m, m.setNotice(err.Error(), true)
		}
		m.setTheme(name)
		return m, m.setNotice("Theme: "+name, false)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.search.Value() != "" {
			m.search.Reset()
			m.syncCursor()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.deleteID
		m.mode, m.deleteID = modeNormal, ""
		return m, m.deleteCmd(id)
	case key.Matches(msg, m.keys.Deny):
		m.mode, m.deleteID = modeNormal, ""
		return m, m.setNotice("Delete cancelled", false)
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.leaveDialog()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Submit):
		title := m.rename.Value()
		id := m.app.Store().ActiveID()
		m.leaveDialog()
		if id == "" {
			return m, nil
		}
		return m, m.renameCmd(id, title)
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.search.Reset()
		m.leaveDialog()
		m.syncCursor()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Submit):
		m.leaveDialog()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.PrevThread):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.NextThread):
		m.moveCursor(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

// leaveDialog returns focus to the prompt.
func (m *Model) leaveDialog() {
	m.mode = modeNormal
	m.rename.Blur()
	m.search.Blur()
	m.input.Focus()
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) submit() (Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.app.Blocked() {
		return m, nil
	}
	id := m.app.Store().ActiveID()
	if (id == "" && m.creating) || (id != "" && m.app.Pipeline().Busy(id)) {
		return m, m.setNotice("Still waiting for the last reply", false)
	}

	if id == "" {
		m.creating = true
	}
	m.input.Reset()
	m.inflight++
	m.viewport.GotoBottom()
	cmds := []tea.Cmd{m.submitCmd(id, text)}
	if m.inflight == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSubmitDone(res pipeline.Result) (Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	m.syncCursor()
	if res.ThreadID == m.app.Store().ActiveID() {
		m.viewport.GotoBottom()
	}

	switch {
	case res.Outcome == pipeline.RejectedBlocked:
		return m, nil
	case res.Outcome == pipeline.Failed:
		return m, m.setNotice(pipeline.FailureReply, true)
	case res.SaveErr != nil:
		return m, m.setNotice("Reply not saved, press ctrl+s to retry", true)
	}
	return m, nil
}

// =============================================================================
// THREAD CURSOR
// =============================================================================

// visible returns the threads the sidebar shows.
func (m Model) visible() []model.Thread {
	return session.Filter(m.app.Store().Threads(), m.search.Value(), m.favoritesOnly)
}

// syncCursor puts the cursor on the active thread, or clamps it.
func (m *Model) syncCursor() {
	threads := m.visible()
	active := m.app.Store().ActiveID()
	for i, t := range threads {
		if t.ID == active {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(threads) {
		m.cursor = len(threads) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// moveCursor moves the cursor and opens the thread under it.
func (m *Model) moveCursor(delta int) {
	threads := m.visible()
	if len(threads) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(threads) {
		m.cursor = len(threads) - 1
	}
	if m.app.Store().SelectThread(threads[m.cursor].ID) {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// THEME AND CONFIG
// =============================================================================

func (m *Model) setTheme(name string) {
	m.theme = styles.NewTheme(name)
	m.spinner.Style = m.theme.Spinner
	m.input.PromptStyle = m.theme.InputPrompt
}

// applyConfig takes over a reloaded config. A changed theme in the file
// wins over the stored preference.
func (m Model) applyConfig(cfg *config.Config) (Model, tea.Cmd) {
	if cfg == nil {
		return m, nil
	}
	prev := m.cfg
	m.cfg = cfg
	if cfg.UI.Theme == "" || (prev != nil && prev.UI.Theme == cfg.UI.Theme) {
		return m, nil
	}
	if err := m.app.SetTheme(cfg.UI.Theme); err != nil {
		return m, m.setNotice(err.Error(), true)
	}
	m.setTheme(cfg.UI.Theme)
	return m, m.setNotice(fmt.Sprintf("Config reloaded, theme: %s", cfg.UI.Theme), false)
}

// =============================================================================
// NOTICES
// =============================================================================

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.noticeID++
	m.notice, m.noticeErr = text, isErr
	return clearNoticeAfter(m.noticeID)
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) sidebarWidth() int {
	w := m.cfg.UI.SidebarWidth
	if w <= 0 {
		w = config.Default().UI.SidebarWidth
	}
	if limit := m.width / 3; limit > 12 && w > limit {
		w = limit
	}
	return w
}

// layout sizes the viewport and prompt to the space the fixed rows leave.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	fixed := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderBottom())
	h := m.height - fixed
	if h < 1 {
		h = 1
	}
	// sidebar border
	w := m.width - m.sidebarWidth() - 1
	if w < 10 {
		w = 10
	}
	m.viewport.Width, m.viewport.Height = w, h

	inputWidth := m.width - lipgloss.Width(m.input.Prompt) - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth
	m.rename.Width = inputWidth - 6
	m.search.Width = m.sidebarWidth() - 4
}

// refresh re-renders the active conversation when it or the layout changed.
func (m *Model) refresh() {
	t, ok := m.app.Store().Active()
	cacheKey := fmt.Sprintf("%s|%d|%s|%d|%t|%d", t.ID, len(t.Messages), m.theme.Name, m.viewport.Width,
		m.loaded, m.app.Quota().Remaining())
	if cacheKey == m.render.key {
		return
	}

	atBottom := m.viewport.AtBottom()
	m.render.key = cacheKey
	if !ok {
		m.render.content = m.renderWelcome()
	} else {
		m.render.content = components.RenderConversation(t.Messages, m.viewport.Width, m.theme)
	}
	m.viewport.SetContent(m.render.content)
	if atBottom {
		m.viewport.GotoBottom()
	}
}
