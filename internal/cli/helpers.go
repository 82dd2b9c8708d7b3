// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/copypaste-tui/internal/model"
)

// formatDuration renders d as "2h 5m", "5m 10s" or "42s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// resolveThread finds a thread by 1-based list position or by id prefix.
// A prefix matching more than one thread is an error.
func resolveThread(threads []model.Thread, ref string) (model.Thread, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Thread{}, &UsageError{Message: "missing chat number or id"}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(threads) {
		return threads[n-1], nil
	}

	var match []model.Thread
	for _, t := range threads {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Thread{}, &NotFoundError{Resource: "chat", ID: ref}
	case 1:
		return match[0], nil
	default:
		return model.Thread{}, &UsageError{Message: fmt.Sprintf("%q matches %d chats, use more of the id", ref, len(match))}
	}
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
