// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat threads and messages.
//
// # Key Types
//
//   - Thread: a titled, optionally favorited conversation
//   - Message: one user prompt or assistant reply
//   - Sender: who wrote a message ("user" or "ai" on the wire)
//   - SyncState: whether the local thread matches the backend
package model
