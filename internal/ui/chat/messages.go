// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/pipeline"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ConfigChangedMsg carries a config reloaded from disk.
type ConfigChangedMsg struct {
	Config *config.Config
}

// threadsLoadedMsg reports the result of the initial load.
type threadsLoadedMsg struct {
	err error
}

// submitDoneMsg reports a finished chat round. created is set when the
// round had to start a new thread.
type submitDoneMsg struct {
	result  pipeline.Result
	created bool
}

// actionDoneMsg reports a finished thread mutation. notice is shown on
// success, err on failure.
type actionDoneMsg struct {
	notice string
	err    error
}

// clearNoticeMsg drops the status notice if it is still the one with id.
type clearNoticeMsg struct {
	id int
}

// noticeTTL is how long a status notice stays up.
const noticeTTL = 4 * time.Second

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return threadsLoadedMsg{err: a.Start(context.Background())}
	}
}

// submitCmd runs one round. With no active thread a new one is created
// first.
func (m Model) submitCmd(threadID, text string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()
		created := threadID == ""
		if created {
			// A failed save leaves the thread marked WriteFailed.
			threadID, _ = a.Store().CreateThread(ctx)
		}
		return submitDoneMsg{result: a.Pipeline().Submit(ctx, threadID, text), created: created}
	}
}

func (m Model) createCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		_, err := a.Store().CreateThread(context.Background())
		return actionDoneMsg{notice: "New chat", err: err}
	}
}

func (m Model) renameCmd(id, title string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		err := a.Store().RenameThread(context.Background(), id, title)
		return actionDoneMsg{notice: "Renamed", err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		// The y/n prompt already ran in the view.
		err := a.Store().DeleteThread(context.Background(), id, func(model.Thread) bool { return true })
		return actionDoneMsg{notice: "Chat deleted", err: err}
	}
}

func (m Model) favoriteCmd(id string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		err := a.Store().ToggleFavorite(context.Background(), id)
		return actionDoneMsg{notice: "Updated favorites", err: err}
	}
}

func (m Model) resyncCmd(id string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		err := a.Store().Resync(context.Background(), id)
		return actionDoneMsg{notice: "Synced", err: err}
	}
}

func clearNoticeAfter(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
