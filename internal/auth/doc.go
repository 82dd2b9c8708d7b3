// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth handles sign-in state for copypaste.
//
// # Key Types
//
//   - Session: the current bearer token and its decoded claims, persisted
//     sealed in local state
//   - Service: login, register and logout against the backend
//   - LoginError: a failed sign-in, classified for display
//   - ResetFlow: the two-step emailed-code password reset
//
// Tokens are decoded without signature verification; the backend is the
// only party that trusts them. Claims are read for display (email) and to
// drop a token locally once it has expired.
package auth
