// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the TUI.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile
	Palette      Palette

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	SidebarSearch    lipgloss.Style
	ThreadItem       lipgloss.Style
	ThreadItemActive lipgloss.Style
	ThreadCursor     lipgloss.Style
	Favorite         lipgloss.Style
	BadgePending     lipgloss.Style
	BadgeFailed      lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	FailedBubble    lipgloss.Style
	SenderUser      lipgloss.Style
	SenderAssistant lipgloss.Style

	// ==========================================================================
	// CODE BLOCKS
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style
	InlineCode    lipgloss.Style

	// ==========================================================================
	// INPUT, STATUS AND DIALOGS
	// ==========================================================================

	Input        lipgloss.Style
	InputPrompt  lipgloss.Style
	Spinner      lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Banner       lipgloss.Style
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style

	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// NewTheme builds the theme called name ("dark" or "light"). An empty name
// follows the terminal background.
func NewTheme(name string) *Theme {
	if name == "" {
		name = "dark"
		if !termenv.HasDarkBackground() {
			name = "light"
		}
	}
	p := PaletteFor(name)
	t := &Theme{
		Name:         name,
		IsDark:       name != "light",
		ColorProfile: termenv.ColorProfile(),
		Palette:      p,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles from the palette.
func (t *Theme) initStyles() {
	p := t.Palette

	t.App = lipgloss.NewStyle().Foreground(p.Text)

	t.Header = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Brand)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(p.TextSecondary)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.Overlay).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		MarginBottom(1)
	t.SidebarSearch = lipgloss.NewStyle().
		Foreground(p.TextSecondary)
	t.ThreadItem = lipgloss.NewStyle().
		Foreground(p.TextSecondary)
	t.ThreadItemActive = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)
	t.ThreadCursor = lipgloss.NewStyle().
		Background(p.Selection)
	t.Favorite = lipgloss.NewStyle().Foreground(p.Star)
	t.BadgePending = lipgloss.NewStyle().Foreground(p.Warning)
	t.BadgeFailed = lipgloss.NewStyle().Foreground(p.Danger).Bold(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserFg).
		Background(p.UserBg).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.AssistantFg).
		Padding(0, 1).
		MarginRight(4)
	t.FailedBubble = lipgloss.NewStyle().
		Foreground(p.Danger).
		Padding(0, 1)
	t.SenderUser = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Brand)
	t.SenderAssistant = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.Accent).
		Padding(0, 1).
		Bold(true)
	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)
	t.InlineCode = lipgloss.NewStyle().
		Foreground(p.Brand).
		Background(p.SurfaceDim)

	// Input, status, dialogs
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Brand).
		Bold(true)
	t.Spinner = lipgloss.NewStyle().Foreground(p.Accent)
	t.StatusBar = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(p.Brand).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Banner = lipgloss.NewStyle().
		Foreground(p.Warning).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Warning).
		Padding(0, 1)
	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	t.Muted = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(p.Danger)
	t.Warning = lipgloss.NewStyle().Foreground(p.Warning)
	t.Success = lipgloss.NewStyle().Foreground(p.Success)
}
