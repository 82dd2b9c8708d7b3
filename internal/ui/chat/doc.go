// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea program behind the bare `copypaste`
// command.
//
// The screen is a thread sidebar on the left, the active conversation in a
// scrolling viewport on the right, and a single-line prompt with a status
// bar underneath. Every intent (send, new, rename, delete, favorite, resync)
// runs as a tea.Cmd against the app.App, so the view never blocks on the
// network. The model re-reads the thread store on every render and keeps no
// copy of its own.
//
// # Key Types
//
//   - Model: the tea.Model
//   - KeyMap: key bindings
//   - ConfigChangedMsg: sent by the config watcher to hot-swap the theme
package chat
