// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from.
type Palette struct {
	// Accents
	Accent  lipgloss.Color // selections, assistant name
	Brand   lipgloss.Color // header, user highlights
	Success lipgloss.Color
	Warning lipgloss.Color // pending writes, quota
	Danger  lipgloss.Color // failures, delete prompts
	Star    lipgloss.Color // favorites

	// Surfaces
	Surface    lipgloss.Color
	SurfaceDim lipgloss.Color
	Overlay    lipgloss.Color
	Selection  lipgloss.Color

	// Text
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextInverse   lipgloss.Color

	// Message bubbles
	UserBg      lipgloss.Color
	UserFg      lipgloss.Color
	AssistantBg lipgloss.Color
	AssistantFg lipgloss.Color

	// ChromaStyle names the chroma style used for code blocks.
	ChromaStyle string
}

// =============================================================================
// PALETTES
// =============================================================================

// Dark is Catppuccin Mocha with blue user bubbles.
var Dark = Palette{
	Accent:  "#A78BFA",
	Brand:   "#22D3EE",
	Success: "#34D399",
	Warning: "#FBBF24",
	Danger:  "#FB7185",
	Star:    "#FACC15",

	Surface:    "#1E1E2E",
	SurfaceDim: "#181825",
	Overlay:    "#313244",
	Selection:  "#1E3A5F",

	Text:          "#CDD6F4",
	TextSecondary: "#A6ADC8",
	TextMuted:     "#6C7086",
	TextInverse:   "#1E1E2E",

	UserBg:      "#1D4ED8",
	UserFg:      "#E0F2FE",
	AssistantBg: "#3B3655",
	AssistantFg: "#E9E4F5",

	ChromaStyle: "monokai",
}

// Light is Catppuccin Latte.
var Light = Palette{
	Accent:  "#7C3AED",
	Brand:   "#0891B2",
	Success: "#059669",
	Warning: "#D97706",
	Danger:  "#E11D48",
	Star:    "#CA8A04",

	Surface:    "#FFFFFF",
	SurfaceDim: "#F5F5F5",
	Overlay:    "#E5E5E5",
	Selection:  "#BFDBFE",

	Text:          "#1F2937",
	TextSecondary: "#6B7280",
	TextMuted:     "#9CA3AF",
	TextInverse:   "#FFFFFF",

	UserBg:      "#DBEAFE",
	UserFg:      "#1E40AF",
	AssistantBg: "#F5F3FF",
	AssistantFg: "#5B4B8A",

	ChromaStyle: "github",
}

// PaletteFor returns the palette for a theme name. Unknown names get Dark.
func PaletteFor(name string) Palette {
	if name == "light" {
		return Light
	}
	return Dark
}
