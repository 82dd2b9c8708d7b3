// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/copypaste-tui/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat screen. The prompt
// always has focus, so every thread action sits behind a modifier.
type KeyMap struct {
	Submit        key.Binding
	NewThread     key.Binding
	PrevThread    key.Binding
	NextThread    key.Binding
	Rename        key.Binding
	Delete        key.Binding
	Favorite      key.Binding
	FavoritesOnly key.Binding
	Search        key.Binding
	Resync        key.Binding
	ToggleTheme   key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Cancel        key.Binding
	Confirm       key.Binding
	Deny          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewThread: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new"),
		),
		PrevThread: key.NewBinding(
			key.WithKeys("ctrl+k", "alt+up"),
			key.WithHelp("ctrl+k", "prev"),
		),
		NextThread: key.NewBinding(
			key.WithKeys("ctrl+j", "alt+down"),
			key.WithHelp("ctrl+j", "next"),
		),
		Rename: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "star"),
		),
		FavoritesOnly: key.NewBinding(
			key.WithKeys("alt+f"),
			key.WithHelp("alt+f", "starred"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "search"),
		),
		Resync: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "sync"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// Hints returns the bindings shown in the status bar.
func (k KeyMap) Hints() []components.KeyHint {
	bindings := []key.Binding{
		k.Submit, k.NewThread, k.PrevThread, k.NextThread, k.Rename,
		k.Delete, k.Favorite, k.Search, k.Resync, k.ToggleTheme, k.Quit,
	}
	hints := make([]components.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, components.KeyHint{Key: h.Key, Desc: h.Desc})
	}
	return hints
}
