// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/api"
)

// Backend is the slice of the API client the auth service needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (string, error)
}

// Service signs users in and out.
type Service struct {
	backend Backend
	session *Session
	log     *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a Service that stores tokens in session.
func NewService(backend Backend, session *Session, opts ...ServiceOption) *Service {
	s := &Service{backend: backend, session: session, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session the service writes to.
func (s *Service) Session() *Session { return s.session }

// Login exchanges credentials for a token. Backend rejections come back as
// *LoginError.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		le := ClassifyLoginError(err)
		s.log.Info("login rejected", zap.Int("kind", int(le.Kind)), zap.Int("status", api.StatusOf(err)))
		return le
	}
	if err := s.session.Set(token); err != nil {
		return err
	}
	s.log.Info("logged in", zap.String("email", s.session.Claims().Email))
	return nil
}

// Register creates an account and signs in with the returned token.
func (s *Service) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	token, err := s.backend.Register(ctx, email, password)
	if err != nil {
		return api.UserFacing(err, "Registration failed")
	}
	if err := s.session.Set(token); err != nil {
		return err
	}
	s.log.Info("registered", zap.String("email", email))
	return nil
}

// Logout drops the token.
func (s *Service) Logout() error {
	if err := s.session.Clear(); err != nil {
		return err
	}
	s.log.Info("logged out")
	return nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
