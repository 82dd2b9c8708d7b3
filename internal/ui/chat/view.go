// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/copypaste-tui/internal/ui/components"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View implements tea.Model.
// Layout: header, sidebar beside the conversation, then the bottom rows
// (banner, prompt or dialog, status bar).
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sidebar := components.ThreadList{
		Threads:       m.visible(),
		ActiveID:      m.app.Store().ActiveID(),
		Cursor:        m.cursor,
		Width:         m.sidebarWidth(),
		Height:        m.viewport.Height,
		ShowSync:      m.cfg.UI.ShowSyncState,
		Search:        m.search.Value(),
		Searching:     m.mode == modeSearch,
		FavoritesOnly: m.favoritesOnly,
	}.Render(m.theme)
	sidebar = lipgloss.NewStyle().MaxHeight(m.viewport.Height).Render(sidebar)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.viewport.View())
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderBottom(),
	))
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("CopyPaste")
	user := m.theme.HeaderUser.Render(m.identity())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(user) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).MaxHeight(1).Render(title + strings.Repeat(" ", gap) + user)
}

func (m Model) identity() string {
	s := m.app.Session()
	if !s.IsAuthenticated() {
		return "Guest"
	}
	if c := s.Claims(); c.Email != "" {
		return c.Email
	}
	return "Signed in"
}

// renderBottom is everything under the conversation.
func (m Model) renderBottom() string {
	var rows []string
	if m.app.Blocked() {
		rows = append(rows, m.theme.Banner.Width(m.width-2).Render(
			BlockedBanner+" Run `copypaste login` to keep going."))
	}

	switch m.mode {
	case modeRename:
		rows = append(rows, m.renderDialog("Rename chat", m.rename.View()))
	case modeConfirmDelete:
		title := "this chat"
		if t, ok := m.app.Store().Thread(m.deleteID); ok {
			title = fmt.Sprintf("%q", t.Title)
		}
		rows = append(rows, m.renderDialog("Delete "+title+"?", m.theme.Muted.Render("y to delete, n to keep")))
	default:
		rows = append(rows, m.renderInput())
	}

	rows = append(rows, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderInput() string {
	line := m.input.View()
	if m.inflight > 0 {
		line = m.spinner.View() + " " + line
	}
	return m.theme.Input.Width(m.width).Render(line)
}

func (m Model) renderDialog(title, body string) string {
	return m.theme.Dialog.Width(m.width - 2).Render(m.theme.DialogTitle.Render(title) + "\n" + body)
}

func (m Model) renderStatus() string {
	q := m.app.Quota()
	notice := m.notice
	if notice != "" && m.noticeErr {
		notice = m.theme.Error.Render(notice)
	}
	return components.StatusBar{
		Identity:  m.identity(),
		Guest:     !m.app.Session().IsAuthenticated(),
		Remaining: q.Remaining(),
		Limit:     q.Limit(),
		Notice:    notice,
		Hints:     m.keys.Hints(),
		Width:     m.width,
	}.Render(m.theme)
}

// renderWelcome fills the conversation pane when no thread is active.
func (m Model) renderWelcome() string {
	if !m.loaded {
		return m.theme.Muted.Render("Loading chats...")
	}
	lines := []string{
		m.theme.HeaderTitle.Render("CopyPaste"),
		"",
		"Type a request and press enter to get code back.",
		m.theme.Muted.Render("ctrl+n starts a new chat, ctrl+j/ctrl+k switch between chats."),
	}
	if !m.app.Session().IsAuthenticated() {
		q := m.app.Quota()
		lines = append(lines, "",
			m.theme.Warning.Render(fmt.Sprintf("Guest mode: %d of %d free responses left.", q.Remaining(), q.Limit())))
	}
	return strings.Join(lines, "\n")
}
