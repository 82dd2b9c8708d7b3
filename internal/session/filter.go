// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jeranaias/copypaste-tui/internal/model"
)

// Filter returns the threads whose title contains search, ignoring case,
// optionally restricted to favorites. Order is preserved.
func Filter(threads []model.Thread, search string, favoritesOnly bool) []model.Thread {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))

	out := make([]model.Thread, 0, len(threads))
	for _, t := range threads {
		if favoritesOnly && !t.Favorite {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(t.Title), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}
