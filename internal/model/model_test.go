// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_WireSpelling(t *testing.T) {
	data, err := json.Marshal(AssistantMessage("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"ai","text":"hi"}`, string(data))

	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"sender":"assistant","text":"x"}`), &m))
	assert.Equal(t, SenderAssistant, m.Sender)

	var odd Message
	require.NoError(t, json.Unmarshal([]byte(`{"sender":"robot","text":"x"}`), &odd))
	assert.Equal(t, SenderAssistant, odd.Sender)
	assert.Equal(t, "x", odd.Text)
}

func TestParseSender(t *testing.T) {
	s, ok := ParseSender("User")
	assert.True(t, ok)
	assert.Equal(t, SenderUser, s)

	s, ok = ParseSender("bot")
	assert.False(t, ok)
	assert.Equal(t, SenderAssistant, s)
}

func TestSender_String(t *testing.T) {
	assert.Equal(t, "user", SenderUser.String())
	assert.Equal(t, "assistant", SenderAssistant.String())
	assert.Equal(t, "You", SenderUser.DisplayName())
}

func TestThread_CloneDoesNotAlias(t *testing.T) {
	th := NewThread("a")
	th.Messages = append(th.Messages, UserMessage("one"))

	c := th.Clone()
	c.Messages[0] = UserMessage("changed")
	c.Messages = append(c.Messages, AssistantMessage("two"))

	assert.Equal(t, "one", th.Messages[0].Text)
	assert.Len(t, th.Messages, 1)
}

func TestThread_IsUntouched(t *testing.T) {
	th := NewThread("a")
	assert.True(t, th.IsUntouched())

	th.Title = "renamed"
	assert.False(t, th.IsUntouched())

	th = NewThread("b")
	th.Messages = append(th.Messages, UserMessage("x"))
	assert.False(t, th.IsUntouched())
}

func TestThread_Counts(t *testing.T) {
	th := NewThread("a")
	th.Messages = []Message{UserMessage("q"), AssistantMessage("a"), UserMessage("q2")}

	u, a := th.Counts()
	assert.Equal(t, 2, u)
	assert.Equal(t, 1, a)

	last, ok := th.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "q2", last.Text)
}

func TestThread_JSONUsesChatID(t *testing.T) {
	th := NewThread("abc")
	th.Sync = WriteFailed

	data, err := json.Marshal(th)
	require.NoError(t, err)
	assert.JSONEq(t, `{"chatId":"abc","title":"New Chat","messages":[],"favorite":false}`, string(data))
}

func TestMessage_Preview(t *testing.T) {
	m := UserMessage("first line that is rather long\nsecond")
	assert.Equal(t, "first line...", m.Preview(13))
	assert.Equal(t, "first line that is rather long", m.Preview(100))
}

func TestSyncState_Badge(t *testing.T) {
	assert.Equal(t, "", Synced.Badge())
	assert.Equal(t, "!", WriteFailed.Badge())
	assert.Equal(t, "unsaved", WriteFailed.String())
}
