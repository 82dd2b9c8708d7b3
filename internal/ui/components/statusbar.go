// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/ui/styles"
)

// KeyHint is one key shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the TUI.
type StatusBar struct {
	Identity  string
	Guest     bool
	Remaining int
	Limit     int
	Notice    string
	Hints     []KeyHint
	Width     int
}

// Render draws identity and quota on the left, then the notice or the key
// hints, clipped to the width.
func (s StatusBar) Render(theme *styles.Theme) string {
	var left string
	if s.Guest {
		quota := fmt.Sprintf("Guest · %d/%d left", s.Remaining, s.Limit)
		if s.Remaining == 0 {
			left = theme.Error.Render(quota)
		} else {
			left = theme.Warning.Render(quota)
		}
	} else {
		left = theme.Success.Render(s.Identity)
	}

	var right string
	if s.Notice != "" {
		right = s.Notice
	} else {
		parts := make([]string, 0, len(s.Hints))
		for _, h := range s.Hints {
			parts = append(parts, theme.ShortcutKey.Render(h.Key)+" "+theme.ShortcutDesc.Render(h.Desc))
		}
		right = strings.Join(parts, "  ")
	}

	line := left + "  " + right
	if s.Width <= 0 {
		return theme.StatusBar.Render(line)
	}
	return theme.StatusBar.Width(s.Width).MaxWidth(s.Width).MaxHeight(1).Render(line)
}
