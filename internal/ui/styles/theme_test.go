// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, Light, PaletteFor("light"))
	assert.Equal(t, Dark, PaletteFor("dark"))
	assert.Equal(t, Dark, PaletteFor("neon"))
}

func TestNewTheme(t *testing.T) {
	dark := NewTheme("dark")
	assert.True(t, dark.IsDark)
	assert.Equal(t, "monokai", dark.Palette.ChromaStyle)

	light := NewTheme("light")
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.Name)
	assert.Equal(t, Light.Danger, light.Palette.Danger)
}
