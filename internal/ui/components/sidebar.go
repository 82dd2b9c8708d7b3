// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/ui/styles"
	"github.com/jeranaias/copypaste-tui/internal/util"
)

// ThreadList is the sidebar. Threads are already filtered.
type ThreadList struct {
	Threads       []model.Thread
	ActiveID      string
	Cursor        int
	Width         int
	Height        int
	ShowSync      bool
	Search        string
	Searching     bool
	FavoritesOnly bool
}

// Render draws the title, the search line and one row per thread, scrolled
// so the cursor stays visible.
func (l ThreadList) Render(theme *styles.Theme) string {
	width := l.Width
	if width < 12 {
		width = 12
	}

	var b strings.Builder
	title := "Chats"
	if l.FavoritesOnly {
		title = "★ Favorites"
	}
	b.WriteString(theme.SidebarTitle.Render(title))
	b.WriteString("\n")

	search := l.Search
	if l.Searching {
		search += "▏"
	}
	if search != "" {
		b.WriteString(theme.SidebarSearch.Render(util.TruncateWidth("/ "+search, width-1)))
		b.WriteString("\n")
	}

	if len(l.Threads) == 0 {
		b.WriteString(theme.Muted.Render("No chats"))
		return theme.Sidebar.Width(width).Render(b.String())
	}

	rows := l.Height - 3
	if rows < 1 {
		rows = len(l.Threads)
	}
	start := 0
	if l.Cursor >= rows {
		start = l.Cursor - rows + 1
	}
	end := start + rows
	if end > len(l.Threads) {
		end = len(l.Threads)
	}

	for i := start; i < end; i++ {
		b.WriteString(l.row(i, width, theme))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(l.Threads) {
		b.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("+%d more", len(l.Threads)-end)))
	}
	return theme.Sidebar.Width(width).Render(b.String())
}

func (l ThreadList) row(i, width int, theme *styles.Theme) string {
	t := l.Threads[i]

	star := "  "
	if t.Favorite {
		star = theme.Favorite.Render("★") + " "
	}

	badge, badgeWidth := "", 0
	if l.ShowSync && t.Sync.Badge() != "" {
		style := theme.BadgePending
		if t.Sync == model.WriteFailed {
			style = theme.BadgeFailed
		}
		badge = " " + style.Render(t.Sync.Badge())
		badgeWidth = 1 + util.StringWidth(t.Sync.Badge())
	}

	title := t.Title
	if title == "" {
		title = "Untitled Chat"
	}
	// star, then the sidebar's right padding
	room := width - 3 - badgeWidth
	title = util.PadWidth(util.TruncateWidth(title, room), room)

	style := theme.ThreadItem
	if t.ID == l.ActiveID {
		style = theme.ThreadItemActive
	}
	line := star + style.Render(title) + badge
	if i == l.Cursor {
		line = theme.ThreadCursor.Render(line)
	}
	return line
}
