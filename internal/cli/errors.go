// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/auth"
	"github.com/jeranaias/copypaste-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	// ExitQuotaError means a guest has no free responses left.
	ExitQuotaError = 9
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNotLoggedIn is returned by commands that need an account.
var ErrNotLoggedIn = errors.New("not logged in; run `copypaste login` first")

// UsageError is a malformed command line.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\nUsage: %s", e.Message, e.Usage)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrMissingArgument returns a UsageError for a missing positional.
func ErrMissingArgument(name, usage string) error {
	return &UsageError{Message: "missing " + name, Usage: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, or as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+err.Error())
}

// GetExitCode maps err to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var notFound *NotFoundError
	var loginErr *auth.LoginError
	var cfgErrs config.ValidateErrors
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &notFound), errors.Is(err, api.ErrNotFound):
		return ExitNotFoundError
	case errors.Is(err, app.ErrBlocked):
		return ExitQuotaError
	case api.IsNetwork(err):
		return ExitNetworkError
	case errors.As(err, &loginErr), errors.Is(err, ErrNotLoggedIn), errors.Is(err, api.ErrUnauthorized):
		return ExitAuthError
	case errors.As(err, &cfgErrs):
		return ExitConfigError
	}
	return ExitGeneralError
}
