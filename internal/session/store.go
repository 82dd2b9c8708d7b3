// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/storage"
)

// Validation errors, reported before any network call.
var (
	ErrUnknownThread      = errors.New("thread not found")
	ErrTitleEmpty         = errors.New("Title cannot be empty")
	ErrTitleUnchanged     = errors.New("Title is unchanged")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
)

// Backend persists threads remotely.
type Backend interface {
	ListThreads(ctx context.Context) ([]model.Thread, error)
	SaveThread(ctx context.Context, t model.Thread) error
	DeleteThread(ctx context.Context, id string) error
}

// Identity reports whether a user is signed in.
type Identity interface {
	IsAuthenticated() bool
}

// ConfirmFunc is asked before a thread is deleted.
type ConfirmFunc func(t model.Thread) bool

// =============================================================================
// STORE
// =============================================================================

// Store is the thread collection of one user. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	threads  []model.Thread
	activeID string

	backend Backend
	ident   Identity
	kv      storage.Store
	log     *zap.Logger
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIDGenerator replaces the uuid generator used by CreateThread.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore creates an empty store.
func NewStore(backend Backend, ident Identity, kv storage.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ident:   ident,
		kv:      kv,
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// READS
// =============================================================================

// Threads returns a copy of the collection in display order.
func (s *Store) Threads() []model.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of threads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}

// Thread returns a copy of the thread with id.
func (s *Store) Thread(id string) (model.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.threads[i].Clone(), true
	}
	return model.Thread{}, false
}

// ActiveID returns the id of the thread on screen, or "".
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the thread on screen.
func (s *Store) Active() (model.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.activeID); i >= 0 {
		return s.threads[i].Clone(), true
	}
	return model.Thread{}, false
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.threads {
		if s.threads[i].ID == id {
			return i
		}
	}
	return -1
}

// setActiveLocked records id as active and remembers it on disk. Caller
// holds mu.
func (s *Store) setActiveLocked(id string) {
	s.activeID = id
	var err error
	if id == "" {
		err = s.kv.Delete(storage.KeyActiveThread)
	} else {
		err = s.kv.Set(storage.KeyActiveThread, id)
	}
	if err != nil {
		s.log.Warn("failed to remember active thread", zap.Error(err))
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// LoadThreads replaces the collection with the backend's listing. The
// remembered active id is kept if it still exists, otherwise the first
// thread becomes active. Guests start empty. A failed fetch leaves the
// store empty and returns the error.
func (s *Store) LoadThreads(ctx context.Context) error {
	if !s.ident.IsAuthenticated() {
		s.Discard()
		return nil
	}

	threads, err := s.backend.ListThreads(ctx)
	if err != nil {
		s.mu.Lock()
		s.threads, s.activeID = nil, ""
		s.mu.Unlock()
		s.log.Warn("failed to load threads", zap.Error(err))
		return fmt.Errorf("failed to load threads: %w", err)
	}

	remembered := storage.GetString(s.kv, storage.KeyActiveThread, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = threads
	switch {
	case s.indexOf(remembered) >= 0:
		s.setActiveLocked(remembered)
	case len(threads) > 0:
		s.setActiveLocked(threads[0].ID)
	default:
		s.setActiveLocked("")
	}
	s.log.Debug("threads loaded", zap.Int("count", len(threads)), zap.String("active", s.activeID))
	return nil
}

// Discard drops every thread and forgets the active id.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = nil
	s.setActiveLocked("")
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateThread adds an empty thread and makes it active. Signed-in users get
// it prepended and saved; for guests it replaces the collection.
func (s *Store) CreateThread(ctx context.Context) (string, error) {
	t := model.NewThread(s.newID())
	authed := s.ident.IsAuthenticated()

	s.mu.Lock()
	if authed {
		s.threads = append([]model.Thread{t}, s.threads...)
	} else {
		s.threads = []model.Thread{t}
	}
	s.setActiveLocked(t.ID)
	s.mu.Unlock()

	if !authed {
		return t.ID, nil
	}
	return t.ID, s.Resync(ctx, t.ID)
}

// SelectThread makes id active. Unknown ids are ignored.
func (s *Store) SelectThread(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.setActiveLocked(id)
	return true
}

// RenameThread sets a thread's title and saves it. An empty title or the
// current title is rejected without touching the backend.
func (s *Store) RenameThread(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleEmpty
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownThread
	}
	if s.threads[i].Title == title {
		s.mu.Unlock()
		return ErrTitleUnchanged
	}
	s.threads[i].Title = title
	s.mu.Unlock()

	return s.save(ctx, id)
}

// ToggleFavorite flips the favorite flag and saves the thread.
func (s *Store) ToggleFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownThread
	}
	s.threads[i].Favorite = !s.threads[i].Favorite
	s.mu.Unlock()

	return s.save(ctx, id)
}

// DeleteThread removes a thread once confirm agrees. The active id is
// cleared if it pointed at the thread.
func (s *Store) DeleteThread(ctx context.Context, id string, confirm ConfirmFunc) error {
	t, ok := s.Thread(id)
	if !ok {
		return ErrUnknownThread
	}
	if confirm == nil || !confirm(t) {
		return ErrDeleteNotConfirmed
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.threads = append(s.threads[:i], s.threads[i+1:]...)
	}
	if s.activeID == id {
		s.setActiveLocked("")
	}
	s.mu.Unlock()

	if !s.ident.IsAuthenticated() {
		return nil
	}
	if err := s.backend.DeleteThread(ctx, id); err != nil {
		s.log.Warn("failed to delete thread", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// Append adds messages to the end of a thread. It does not save.
func (s *Store) Append(id string, msgs ...model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrUnknownThread
	}
	s.threads[i].Messages = append(s.threads[i].Messages, msgs...)
	return nil
}

// SetTitle changes a title without saving.
func (s *Store) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrUnknownThread
	}
	s.threads[i].Title = title
	return nil
}

// Resync writes the current local copy of a thread to the backend. It is
// how a WriteFailed thread is retried.
func (s *Store) Resync(ctx context.Context, id string) error {
	if !s.ident.IsAuthenticated() {
		if _, ok := s.Thread(id); !ok {
			return ErrUnknownThread
		}
		return nil
	}
	return s.save(ctx, id)
}

// save snapshots the thread, marks it PendingWrite and upserts it. The sync
// state reflects the outcome; the local copy is never reverted.
func (s *Store) save(ctx context.Context, id string) error {
	if !s.ident.IsAuthenticated() {
		return nil
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownThread
	}
	s.threads[i].Sync, s.threads[i].SyncError = model.PendingWrite, ""
	snapshot := s.threads[i].Clone()
	s.mu.Unlock()

	err := s.backend.SaveThread(ctx, snapshot)

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		if err != nil {
			s.threads[i].Sync, s.threads[i].SyncError = model.WriteFailed, err.Error()
		} else {
			s.threads[i].Sync, s.threads[i].SyncError = model.Synced, ""
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("failed to save thread", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// Unsynced returns the ids of threads whose last write failed.
func (s *Store) Unsynced() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, t := range s.threads {
		if t.Sync == model.WriteFailed {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
