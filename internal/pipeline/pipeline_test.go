// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/quota"
	"github.com/jeranaias/copypaste-tui/internal/session"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeGenerator struct {
	calls int32
	out   api.Generation
	err   error
	gate  chan struct{}
	seen  [][]api.Turn
	mu    sync.Mutex
}

func (f *fakeGenerator) Generate(ctx context.Context, turns []api.Turn) (api.Generation, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.seen = append(f.seen, turns)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.out, f.err
}

func (f *fakeGenerator) count() int { return int(atomic.LoadInt32(&f.calls)) }

type fakeBackend struct {
	mu    sync.Mutex
	saved []model.Thread
	err   error
}

func (f *fakeBackend) ListThreads(context.Context) ([]model.Thread, error) { return nil, nil }
func (f *fakeBackend) DeleteThread(context.Context, string) error          { return nil }
func (f *fakeBackend) SaveThread(_ context.Context, t model.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, t)
	return f.err
}

type identity bool

func (i identity) IsAuthenticated() bool { return bool(i) }

type fixture struct {
	pipe    *Pipeline
	store   *session.Store
	tracker *quota.Tracker
	gen     *fakeGenerator
	backend *fakeBackend
	id      string
}

func newFixture(t *testing.T, authed bool, gen *fakeGenerator) *fixture {
	t.Helper()
	kv := storage.NewMemory()
	backend := &fakeBackend{}
	store := session.NewStore(backend, identity(authed), kv)
	tracker := quota.NewTracker(kv, 3)
	id, err := store.CreateThread(context.Background())
	require.NoError(t, err)
	return &fixture{
		pipe:    New(gen, store, tracker, identity(authed), nil),
		store:   store,
		tracker: tracker,
		gen:     gen,
		backend: backend,
		id:      id,
	}
}

// =============================================================================
// CLASSIFY / FORMAT
// =============================================================================

func TestClassify(t *testing.T) {
	tests := map[string]string{
		"write a Python script": "python",
		"JAVA hello world":      "java",
		"javascript fetch":      "java",
		"a C++ linked list":     "cpp",
		"an HTML form":          "html",
		"python vs java":        "python",
		"sort an array":         DefaultLanguage,
		"":                      DefaultLanguage,
		"an html page in c++":   "cpp",
	}
	for prompt, want := range tests {
		assert.Equal(t, want, Classify(prompt), "prompt %q", prompt)
	}
	assert.Equal(t, []string{"python", "java", "cpp", "html", "javascript"}, Languages())
}

func TestFormatReply(t *testing.T) {
	got := FormatReply("sort a list in python", "python", "sorted(xs)")
	assert.Equal(t, "Here’s your response for: \"sort a list in python\"\n\n```python\nsorted(xs)\n```", got)
}

func TestTurns(t *testing.T) {
	history := []model.Message{model.UserMessage("q1"), model.AssistantMessage("a1")}
	turns := Turns(history, "q2")
	assert.Equal(t, []api.Turn{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}, turns)
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_AuthenticatedRound(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{out: api.Generation{Code: "print(1)"}})

	res := f.pipe.Submit(context.Background(), f.id, "  print one in python  ")
	require.Equal(t, Replied, res.Outcome)
	assert.Equal(t, "python", res.Language)
	assert.NoError(t, res.SaveErr)

	thread, _ := f.store.Thread(f.id)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, model.UserMessage("print one in python"), thread.Messages[0])
	assert.Equal(t, model.SenderAssistant, thread.Messages[1].Sender)
	assert.Contains(t, thread.Messages[1].Text, "```python\nprint(1)\n```")
	assert.Equal(t, "print one in python", thread.Title)
	assert.Equal(t, model.Synced, thread.Sync)

	last := f.backend.saved[len(f.backend.saved)-1]
	assert.Len(t, last.Messages, 2)
	assert.Equal(t, 3, f.tracker.Remaining())
}

func TestSubmit_TitleOnlyForUntouchedThread(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{out: api.Generation{Result: "ok"}})
	long := strings.Repeat("é", 80)

	f.pipe.Submit(context.Background(), f.id, long)
	thread, _ := f.store.Thread(f.id)
	assert.Equal(t, strings.Repeat("é", TitleLength), thread.Title)

	f.pipe.Submit(context.Background(), f.id, "second prompt")
	thread, _ = f.store.Thread(f.id)
	assert.Equal(t, strings.Repeat("é", TitleLength), thread.Title)
}

func TestSubmit_NoOutputFallback(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{})
	res := f.pipe.Submit(context.Background(), f.id, "anything")
	assert.Contains(t, res.Reply.Text, "\n"+api.NoOutput+"\n")
}

func TestSubmit_FailureKeepsUserMessage(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{err: api.ErrTimeout})

	res := f.pipe.Submit(context.Background(), f.id, "hello")
	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, api.ErrTimeout)

	thread, _ := f.store.Thread(f.id)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "hello", thread.Messages[0].Text)
	assert.Equal(t, FailureReply, thread.Messages[1].Text)
	assert.False(t, f.pipe.Busy(f.id))
}

func TestSubmit_SaveFailureMarksThread(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{out: api.Generation{Code: "x"}})
	f.backend.err = errors.New("offline")

	res := f.pipe.Submit(context.Background(), f.id, "hello")
	assert.Equal(t, Replied, res.Outcome)
	assert.Error(t, res.SaveErr)

	thread, _ := f.store.Thread(f.id)
	assert.Equal(t, model.WriteFailed, thread.Sync)
	assert.Len(t, thread.Messages, 2)
}

func TestSubmit_Rejections(t *testing.T) {
	f := newFixture(t, true, &fakeGenerator{})

	assert.Equal(t, RejectedEmpty, f.pipe.Submit(context.Background(), f.id, "   ").Outcome)
	assert.Equal(t, RejectedUnknownThread, f.pipe.Submit(context.Background(), "nope", "hi").Outcome)
	assert.Equal(t, 0, f.gen.count())
	assert.True(t, RejectedBusy.Rejected())
	assert.False(t, Failed.Rejected())
}

func TestSubmit_SingleFlightPerThread(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), out: api.Generation{Code: "x"}}
	f := newFixture(t, true, gen)

	done := make(chan Result)
	go func() { done <- f.pipe.Submit(context.Background(), f.id, "first") }()

	require.Eventually(t, func() bool { return gen.count() == 1 }, timeout, tick)
	assert.True(t, f.pipe.Busy(f.id))

	res := f.pipe.Submit(context.Background(), f.id, "second")
	assert.Equal(t, RejectedBusy, res.Outcome)

	close(gen.gate)
	assert.Equal(t, Replied, (<-done).Outcome)
	assert.Equal(t, 1, gen.count())

	thread, _ := f.store.Thread(f.id)
	assert.Len(t, thread.Messages, 2)
	assert.False(t, f.pipe.Busy(f.id))
}

func TestSubmit_AssistantNeverOutnumbersUser(t *testing.T) {
	gen := &fakeGenerator{out: api.Generation{Code: "x"}}
	f := newFixture(t, true, gen)
	other, err := f.store.CreateThread(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, id := range []string{f.id, other} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				f.pipe.Submit(context.Background(), id, "prompt")
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []string{f.id, other} {
		thread, _ := f.store.Thread(id)
		user, assistant := thread.Counts()
		assert.Equal(t, user, assistant)
		assert.GreaterOrEqual(t, user, 1)
	}
}

func TestSubmit_GuestCeiling(t *testing.T) {
	gen := &fakeGenerator{out: api.Generation{Code: "x"}}
	f := newFixture(t, false, gen)

	for i := 0; i < 3; i++ {
		res := f.pipe.Submit(context.Background(), f.id, "prompt")
		require.Equal(t, Replied, res.Outcome)
	}
	assert.Equal(t, 0, f.tracker.Remaining())
	assert.True(t, f.pipe.Blocked())

	res := f.pipe.Submit(context.Background(), f.id, "fourth")
	assert.Equal(t, RejectedBlocked, res.Outcome)
	assert.Equal(t, 3, gen.count())

	thread, _ := f.store.Thread(f.id)
	assert.Len(t, thread.Messages, 6)
	assert.Empty(t, f.backend.saved)

	f.pipe.Unblock()
	assert.False(t, f.pipe.Blocked())
}

func TestSubmit_GuestFailureDoesNotCount(t *testing.T) {
	f := newFixture(t, false, &fakeGenerator{err: api.ErrTransport})
	f.pipe.Submit(context.Background(), f.id, "prompt")
	assert.Equal(t, 3, f.tracker.Remaining())
	assert.False(t, f.pipe.Blocked())
}
