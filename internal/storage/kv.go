// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"
)

// Keys for the entries copypaste keeps locally.
const (
	KeyTheme        = "theme"
	KeyActiveThread = "activeChatId"
	KeyToken        = "token"
	KeyGuestCount   = "guest-response-count"
)

// Store is the key-value contract the rest of copypaste depends on.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// SecretStore is a Store that can also keep values sealed at rest.
type SecretStore interface {
	Store
	SetSecret(key, value string) error
	GetSecret(key string) (string, bool, error)
}

var (
	_ SecretStore = (*KV)(nil)
	_ SecretStore = (*Memory)(nil)
)

// Schema is the DDL for the state database.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// KV is a Store backed by a SQLite file.
type KV struct {
	db     *sql.DB
	path   string
	sealer *Sealer
}

// Open opens (creating if needed) the state database at path. The token
// sealing key lives next to it.
func Open(path string) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite allows one writer; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	sealer, err := LoadOrCreateSealer(filepath.Join(filepath.Dir(path), ".state.key"))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &KV{db: db, path: path, sealer: sealer}, nil
}

// Path returns the database file path.
func (s *KV) Path() string { return s.path }

// Get returns the value for key and whether it was present.
func (s *KV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *KV) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *KV) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists every stored key in sorted order.
func (s *KV) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SetSecret seals value before storing it.
func (s *KV) SetSecret(key, value string) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return err
	}
	return s.Set(key, sealed)
}

// GetSecret reads and opens a value written by SetSecret.
func (s *KV) GetSecret(key string) (string, bool, error) {
	sealed, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}
	value, err := s.sealer.Open(sealed)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Close closes the database.
func (s *KV) Close() error {
	return s.db.Close()
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory is a Store held in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// SetSecret stores value as is; Memory never touches disk.
func (m *Memory) SetSecret(key, value string) error {
	return m.Set(key, value)
}

// GetSecret reads a value written by SetSecret.
func (m *Memory) GetSecret(key string) (string, bool, error) {
	return m.Get(key)
}

// =============================================================================
// TYPED HELPERS
// =============================================================================

// GetInt reads an integer entry. Missing or malformed entries read as zero.
func GetInt(s Store, key string) (int, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, nil
	}
	return n, nil
}

// SetInt writes an integer entry.
func SetInt(s Store, key string, n int) error {
	return s.Set(key, strconv.Itoa(n))
}

// GetString reads key, returning def when it is missing or unreadable.
func GetString(s Store, key, def string) string {
	v, ok, err := s.Get(key)
	if err != nil || !ok || v == "" {
		return def
	}
	return v
}
