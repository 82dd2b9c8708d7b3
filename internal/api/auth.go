// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
)

// errNoToken is returned when a login/register response carries no token.
var errNoToken = errors.New("server response did not include a token")

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.Post(ctx, "/auth/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.Post(ctx, "/auth/register", credentials{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}

// RequestPasswordReset asks the backend to email a one-time reset code.
// The server's confirmation message is returned.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.Post(ctx, "/password/public/request-reset", map[string]string{"email": email}, &resp)
	return resp.Message, err
}

// VerifyResetCode checks a reset code without consuming it.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	var resp messageResponse
	err := c.Post(ctx, "/password/public/verify-token", map[string]string{
		"email": email,
		"token": code,
	}, &resp)
	return resp.Message, err
}

// ResetPassword consumes a verified code and sets a new password.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (string, error) {
	var resp messageResponse
	err := c.Post(ctx, "/password/public/verify-reset", map[string]string{
		"email":       email,
		"token":       code,
		"newPassword": newPassword,
	}, &resp)
	return resp.Message, err
}
