// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline turns a prompt into a chat round: the user message, the
// generation call and the assistant reply.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/util"
)

// FailureReply is appended when the generation call fails.
const FailureReply = "❌ Failed to get AI response."

// TitleLength is how many characters of the first prompt become the title.
const TitleLength = 50

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Generator produces a reply for a role-tagged conversation.
type Generator interface {
	Generate(ctx context.Context, turns []api.Turn) (api.Generation, error)
}

// Threads is the part of the session store the pipeline mutates.
type Threads interface {
	Thread(id string) (model.Thread, bool)
	Append(id string, msgs ...model.Message) error
	SetTitle(id, title string) error
	Resync(ctx context.Context, id string) error
}

// Quota counts guest generations.
type Quota interface {
	RecordGuestUse() (bool, error)
	Reached() bool
}

// Identity reports whether a user is signed in.
type Identity interface {
	IsAuthenticated() bool
}

// =============================================================================
// RESULT
// =============================================================================

// Outcome is how a submission ended.
type Outcome int

const (
	// Replied means the generation succeeded and a reply was appended.
	Replied Outcome = iota
	// Failed means the generation failed and FailureReply was appended.
	Failed
	// RejectedEmpty means the prompt was blank.
	RejectedEmpty
	// RejectedUnknownThread means the thread does not exist.
	RejectedUnknownThread
	// RejectedBusy means a submission for the thread is still running.
	RejectedBusy
	// RejectedBlocked means the guest ceiling has been reached.
	RejectedBlocked
)

func (o Outcome) String() string {
	switch o {
	case Replied:
		return "replied"
	case Failed:
		return "failed"
	case RejectedEmpty:
		return "empty"
	case RejectedUnknownThread:
		return "unknown thread"
	case RejectedBusy:
		return "busy"
	case RejectedBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Rejected reports whether nothing was appended.
func (o Outcome) Rejected() bool { return o >= RejectedEmpty }

// Result describes a finished submission.
type Result struct {
	Outcome  Outcome
	ThreadID string
	Language string
	Reply    model.Message
	// Err is the generation error for Failed.
	Err error
	// SaveErr is set when the reply was appended but the save failed.
	SaveErr error
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs chat rounds. Submissions for one thread are serialized by
// rejecting overlaps; different threads run concurrently.
type Pipeline struct {
	gen     Generator
	threads Threads
	quota   Quota
	ident   Identity
	log     *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	blocked  bool
}

// New creates a pipeline.
func New(gen Generator, threads Threads, quota Quota, ident Identity, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		gen:      gen,
		threads:  threads,
		quota:    quota,
		ident:    ident,
		log:      log,
		inflight: make(map[string]struct{}),
	}
}

// Blocked reports whether a guest has been stopped by the ceiling.
func (p *Pipeline) Blocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocked
}

// Unblock lowers the blocked flag, after sign-in.
func (p *Pipeline) Unblock() {
	p.mu.Lock()
	p.blocked = false
	p.mu.Unlock()
}

// Busy reports whether a submission for threadID is running.
func (p *Pipeline) Busy(threadID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inflight[threadID]
	return ok
}

func (p *Pipeline) acquire(threadID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inflight[threadID]; ok {
		return false
	}
	p.inflight[threadID] = struct{}{}
	return true
}

func (p *Pipeline) release(threadID string) {
	p.mu.Lock()
	delete(p.inflight, threadID)
	p.mu.Unlock()
}

func (p *Pipeline) setBlocked() {
	p.mu.Lock()
	p.blocked = true
	p.mu.Unlock()
}

// Submit runs one round for threadID. Rejections append nothing. A failed
// generation still keeps the user message and appends FailureReply.
func (p *Pipeline) Submit(ctx context.Context, threadID, text string) Result {
	res := Result{ThreadID: threadID}
	text = strings.TrimSpace(text)
	if text == "" {
		res.Outcome = RejectedEmpty
		return res
	}
	if !p.acquire(threadID) {
		res.Outcome = RejectedBusy
		return res
	}
	defer p.release(threadID)

	before, ok := p.threads.Thread(threadID)
	if !ok {
		res.Outcome = RejectedUnknownThread
		return res
	}

	authed := p.ident.IsAuthenticated()
	if !authed && p.quota.Reached() {
		p.setBlocked()
		res.Outcome = RejectedBlocked
		return res
	}

	if err := p.threads.Append(threadID, model.UserMessage(text)); err != nil {
		res.Outcome = RejectedUnknownThread
		return res
	}

	turns := Turns(before.Messages, text)
	res.Language = Classify(text)

	gen, err := p.gen.Generate(ctx, turns)
	if err != nil {
		p.log.Warn("generation failed", zap.String("thread", threadID), zap.Error(err))
		res.Outcome, res.Err = Failed, err
		res.Reply = model.AssistantMessage(FailureReply)
		_ = p.threads.Append(threadID, res.Reply)
		return res
	}

	res.Outcome = Replied
	res.Reply = model.AssistantMessage(FormatReply(text, res.Language, gen.Output()))
	_ = p.threads.Append(threadID, res.Reply)
	if before.IsUntouched() {
		_ = p.threads.SetTitle(threadID, util.TruncateRunes(text, TitleLength))
	}

	if authed {
		res.SaveErr = p.threads.Resync(ctx, threadID)
		return res
	}

	reached, err := p.quota.RecordGuestUse()
	if err != nil {
		p.log.Warn("failed to record guest use", zap.Error(err))
	}
	if reached {
		p.setBlocked()
	}
	return res
}

// Turns maps a thread's history plus the new prompt to generation turns.
func Turns(history []model.Message, prompt string) []api.Turn {
	turns := make([]api.Turn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, api.Turn{Role: m.Sender.String(), Content: m.Text})
	}
	return append(turns, api.Turn{Role: model.SenderUser.String(), Content: prompt})
}

// FormatReply wraps raw generated output in a fenced block.
func FormatReply(prompt, language, raw string) string {
	return fmt.Sprintf("Here’s your response for: \"%s\"\n\n```%s\n%s\n```", prompt, language, raw)
}
