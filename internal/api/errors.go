// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates a 401 or 403 response.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a 404 response.
	ErrNotFound = errors.New("not found")

	// ErrTimeout indicates the request did not complete within the client timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("network error")

	// ErrNotJSON indicates the server answered with something other than JSON.
	ErrNotJSON = errors.New("unexpected non-JSON response")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// Error is a failed call. Message is the server's "message" field when it
// sent one.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	// Details holds the server's "errors" field, if any.
	Details []string
	kind    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s (HTTP %d): %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap exposes the sentinel this error belongs to.
func (e *Error) Unwrap() error {
	return e.kind
}

// kindForStatus picks the sentinel for an HTTP status.
func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server message carried by err, falling back to
// err.Error().
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsNetwork reports whether err is a transport failure or timeout, as
// opposed to an answer from the server.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTimeout)
}

// displayError shows a fixed text but still unwraps to the original failure,
// so callers can tell a network error from a server answer.
type displayError struct {
	msg   string
	cause error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.cause }

// UserFacing returns err with text fit for display: fallback for transport
// failures and timeouts, otherwise the server's message, or fallback when
// the server sent none.
func UserFacing(err error, fallback string) error {
	if err == nil {
		return nil
	}
	msg := fallback
	var apiErr *Error
	if !IsNetwork(err) && errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &displayError{msg: msg, cause: err}
}
