// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/ui/styles"
)

// failurePrefix marks replies that stand in for a failed generation.
const failurePrefix = "❌"

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one message.
type MessageBubble struct {
	Message model.Message
	Width   int
}

// NewMessageBubble creates a bubble at the default width.
func NewMessageBubble(msg model.Message) MessageBubble {
	return MessageBubble{Message: msg, Width: 80}
}

// Render returns the sender line followed by the message body.
func (b MessageBubble) Render(theme *styles.Theme) string {
	width := b.Width
	if width < 24 {
		width = 24
	}
	name := b.Message.Sender.DisplayName()

	if b.Message.Sender == model.SenderUser {
		return theme.SenderUser.Render(name) + "\n" +
			theme.UserBubble.MaxWidth(width).Render(strings.TrimSpace(b.Message.Text))
	}

	header := theme.SenderAssistant.Render(name)
	if strings.HasPrefix(b.Message.Text, failurePrefix) {
		return header + "\n" + theme.FailedBubble.Render(b.Message.Text)
	}
	return header + "\n" + RenderFenced(b.Message.Text, width-4, theme, theme.AssistantBubble)
}

// RenderConversation renders every message separated by a blank line.
func RenderConversation(msgs []model.Message, width int, theme *styles.Theme) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		b := NewMessageBubble(m)
		b.Width = width
		parts = append(parts, b.Render(theme))
	}
	return strings.Join(parts, "\n\n")
}
