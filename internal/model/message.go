// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
)

// wireAssistant is how the thread backend spells the assistant sender.
const wireAssistant = "ai"

// String returns the role name used in generation requests.
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("Sender(%d)", int(s))
	}
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	if s == SenderUser {
		return "You"
	}
	return "CopyPaste"
}

// MarshalText writes the backend spelling ("user" or "ai").
func (s Sender) MarshalText() ([]byte, error) {
	switch s {
	case SenderUser:
		return []byte("user"), nil
	case SenderAssistant:
		return []byte(wireAssistant), nil
	default:
		return nil, fmt.Errorf("unknown sender %d", int(s))
	}
}

// ParseSender maps a backend sender name to a Sender. Names other than
// "user", "ai" and "assistant" report false.
func ParseSender(name string) (Sender, bool) {
	switch strings.ToLower(name) {
	case "user":
		return SenderUser, true
	case wireAssistant, "assistant":
		return SenderAssistant, true
	default:
		return SenderAssistant, false
	}
}

// UnmarshalText accepts "user", "ai" and "assistant". Any other name is
// read as the assistant so one odd record cannot fail a whole listing.
func (s *Sender) UnmarshalText(text []byte) error {
	*s, _ = ParseSender(string(text))
	return nil
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a thread. Messages are never edited after they
// are appended.
type Message struct {
	Sender Sender `json:"sender" yaml:"sender"`
	Text   string `json:"text" yaml:"text"`
}

// UserMessage builds a message written by the user.
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// AssistantMessage builds a reply message.
func AssistantMessage(text string) Message {
	return Message{Sender: SenderAssistant, Text: text}
}

// Preview returns the first line of the message, cut to maxLen characters.
func (m Message) Preview(maxLen int) string {
	line := m.Text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > maxLen && maxLen > 3 {
		return string(runes[:maxLen-3]) + "..."
	}
	return line
}
