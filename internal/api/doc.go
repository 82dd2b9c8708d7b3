// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the CopyPaste backend and the code
// generation service.
//
// Every call is JSON over HTTP with a bearer token when one is available,
// bounded by a fixed timeout, and throttled by a client-side rate limiter.
// Failures are returned as *Error values that match the sentinel errors in
// this package through errors.Is.
//
// # Key Types
//
//   - Client: account backend (auth, threads, profile, history)
//   - Generator: code generation endpoint
//   - Error: a non-2xx or non-JSON response
//
// # Usage
//
//	client := api.NewClient(cfg.API.BaseURL).
//	    WithTimeout(cfg.Timeout()).
//	    WithToken(session.Token)
//	threads, err := client.ListThreads(ctx)
package api
