// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/copypaste-tui/internal/api"
)

// MinPasswordLength is the shortest password the reset form accepts.
const MinPasswordLength = 6

// Reset flow validation errors.
var (
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrPasswordReused   = errors.New("New password must be different from the current password")
	ErrCodeRequired     = errors.New("Enter the code from your email")
	ErrCodeNotSent      = errors.New("Request a reset code first")
	ErrCodeNotVerified  = errors.New("Verify the reset code first")
)

// ResetBackend is the slice of the API client the reset flow needs.
type ResetBackend interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (string, error)
}

// ResetStep is the screen the reset flow is on.
type ResetStep int

const (
	// StepRequestCode asks for the account email.
	StepRequestCode ResetStep = 1
	// StepEnterCode asks for the emailed code and, once verified, the new password.
	StepEnterCode ResetStep = 2
)

// ResetFlow walks a user through requesting, verifying and consuming a
// one-time reset code.
type ResetFlow struct {
	mu       sync.Mutex
	backend  ResetBackend
	step     ResetStep
	email    string
	code     string
	verified bool
}

// NewResetFlow starts a flow at StepRequestCode.
func NewResetFlow(backend ResetBackend) *ResetFlow {
	return &ResetFlow{backend: backend, step: StepRequestCode}
}

// Step returns the current step.
func (f *ResetFlow) Step() ResetStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Verified reports whether the code has been accepted.
func (f *ResetFlow) Verified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified
}

// Email returns the address the code was sent to.
func (f *ResetFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// SendCode requests a code for email and moves to StepEnterCode.
func (f *ResetFlow) SendCode(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	msg, err := f.backend.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", failure(err, "Failed to send OTP")
	}

	f.mu.Lock()
	f.step, f.email, f.code, f.verified = StepEnterCode, email, "", false
	f.mu.Unlock()
	return msg, nil
}

// VerifyCode checks the emailed code. A rejected code clears any earlier
// verification.
func (f *ResetFlow) VerifyCode(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	f.mu.Lock()
	step, email := f.step, f.email
	f.mu.Unlock()

	if step != StepEnterCode {
		return "", ErrCodeNotSent
	}
	if code == "" {
		return "", ErrCodeRequired
	}

	msg, err := f.backend.VerifyResetCode(ctx, email, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.verified = false
		return "", failure(err, "Invalid or expired OTP")
	}
	f.code, f.verified = code, true
	return msg, nil
}

// Reset sets a new password. The three password checks run before anything
// else; on success the flow returns to StepRequestCode.
func (f *ResetFlow) Reset(ctx context.Context, previous, next, confirm string) (string, error) {
	if err := ValidateNewPassword(previous, next, confirm); err != nil {
		return "", err
	}

	f.mu.Lock()
	email, code, verified := f.email, f.code, f.verified
	f.mu.Unlock()
	if !verified {
		return "", ErrCodeNotVerified
	}

	msg, err := f.backend.ResetPassword(ctx, email, code, next)
	if err != nil {
		return "", failure(err, "Failed to reset password")
	}

	f.mu.Lock()
	f.step, f.email, f.code, f.verified = StepRequestCode, "", "", false
	f.mu.Unlock()
	return msg, nil
}

// ValidateNewPassword applies the reset form rules in order: confirmation
// matches, minimum length, differs from the previous password.
func ValidateNewPassword(previous, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(next)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if previous != "" && next == previous {
		return ErrPasswordReused
	}
	return nil
}

// failure prefers the server's message and falls back to a fixed one.
func failure(err error, fallback string) error {
	return api.UserFacing(err, fallback)
}
