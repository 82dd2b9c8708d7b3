// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/api"
)

// Validation errors, reported before any network call.
var (
	ErrEmailRequired    = errors.New("Email is required")
	ErrPasswordRequired = errors.New("Password is required")
)

// LoginFailure classifies a failed sign-in.
type LoginFailure int

const (
	// FailureInvalid is any rejection that names neither cause.
	FailureInvalid LoginFailure = iota
	// FailureUserNotFound means no account has that email.
	FailureUserNotFound
	// FailureWrongPassword means the account exists but the password is wrong.
	FailureWrongPassword
	// FailureNetwork means the backend could not be reached.
	FailureNetwork
)

// LoginError is returned by Service.Login.
type LoginError struct {
	Kind LoginFailure
	Err  error
}

// Error returns the message shown on the login form.
func (e *LoginError) Error() string {
	switch e.Kind {
	case FailureUserNotFound:
		return "❌ User not found"
	case FailureWrongPassword:
		return "❌ Password is incorrect"
	case FailureNetwork:
		return "Unable to reach the server. Please try again."
	default:
		return "Invalid credentials"
	}
}

func (e *LoginError) Unwrap() error { return e.Err }

// ClassifyLoginError maps a backend error to a LoginError by looking at the
// server's message.
func ClassifyLoginError(err error) *LoginError {
	if api.IsNetwork(err) {
		return &LoginError{Kind: FailureNetwork, Err: err}
	}
	msg := strings.ToLower(api.MessageOf(err))
	switch {
	case strings.Contains(msg, "incorrect"):
		return &LoginError{Kind: FailureWrongPassword, Err: err}
	case strings.Contains(msg, "not found"):
		return &LoginError{Kind: FailureUserNotFound, Err: err}
	default:
		return &LoginError{Kind: FailureInvalid, Err: err}
	}
}
