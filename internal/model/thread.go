// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// DefaultTitle is the title of a thread nobody has written in yet.
const DefaultTitle = "New Chat"

// =============================================================================
// SYNC STATE
// =============================================================================

// SyncState tracks whether the local copy of a thread matches the backend.
type SyncState int

const (
	// Synced means the last write reached the backend (or none was needed).
	Synced SyncState = iota
	// PendingWrite means a save or delete is in flight.
	PendingWrite
	// WriteFailed means the last save failed; the local copy is ahead.
	WriteFailed
)

func (s SyncState) String() string {
	switch s {
	case Synced:
		return "synced"
	case PendingWrite:
		return "saving"
	case WriteFailed:
		return "unsaved"
	default:
		return "unknown"
	}
}

// Badge returns a one-character marker for lists. Synced threads get none.
func (s SyncState) Badge() string {
	switch s {
	case PendingWrite:
		return "…"
	case WriteFailed:
		return "!"
	default:
		return ""
	}
}

// =============================================================================
// THREAD TYPE
// =============================================================================

// Thread is a single conversation.
type Thread struct {
	ID       string    `json:"chatId" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Messages []Message `json:"messages" yaml:"messages"`
	Favorite bool      `json:"favorite" yaml:"favorite"`

	// Local only.
	Sync      SyncState `json:"-" yaml:"-"`
	SyncError string    `json:"-" yaml:"-"`
}

// NewThread returns an empty, unfavorited thread with the default title.
func NewThread(id string) Thread {
	return Thread{ID: id, Title: DefaultTitle, Messages: []Message{}}
}

// Clone returns a copy whose message slice does not alias t's.
func (t Thread) Clone() Thread {
	c := t
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	return c
}

// IsUntouched reports whether the thread still has its placeholder title and
// no messages.
func (t Thread) IsUntouched() bool {
	return t.Title == DefaultTitle && len(t.Messages) == 0
}

// Counts returns the number of user and assistant messages.
func (t Thread) Counts() (user, assistant int) {
	for _, m := range t.Messages {
		if m.Sender == SenderUser {
			user++
		} else {
			assistant++
		}
	}
	return user, assistant
}

// LastMessage returns the newest message, if any.
func (t Thread) LastMessage() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}
