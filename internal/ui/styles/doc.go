// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and lipgloss styles of the TUI.
//
// Two palettes exist, dark and light. The user picks one explicitly; the
// terminal background is only consulted when no preference is saved.
package styles
