// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps copypaste's local state.
//
// Local state is a handful of scalar entries (theme, last active thread,
// auth token, guest usage counter) kept in a single SQLite table. The auth
// token is sealed with AES-256-GCM before it is written.
//
// # Key Types
//
//   - KV: SQLite-backed key-value store
//   - Memory: in-process KV used when no state file is available
//   - Sealer: encrypts secrets with a per-install key
//
// # Usage
//
//	kv, err := storage.Open(filepath.Join(dataDir, "state.db"))
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//	theme, _, _ := kv.Get(storage.KeyTheme)
package storage
