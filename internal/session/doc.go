// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat threads of the current user and the id of
// the thread on screen.
//
// # Key Types
//
//   - Store: the thread collection plus the active thread id
//   - Backend: remote thread persistence (list, upsert, delete)
//
// # Persistence
//
// Every mutation is applied locally first and then written to the backend.
// A failed write never reverts the local view: the thread is marked
// model.WriteFailed and stays that way until Resync succeeds. Guests have no
// remote copy, so their mutations stay local.
//
// The active thread id is remembered in the key-value store under
// storage.KeyActiveThread and restored by LoadThreads.
package session
