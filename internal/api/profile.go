// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"time"
)

// Profile is the signed-in user's account record.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	PhotoURL  string    `json:"photoURL"`
	CreatedAt time.Time `json:"createdAt"`
}

// profileEnvelope accepts both {user:{...}} and a bare profile object.
type profileEnvelope struct {
	Profile
	User    *Profile `json:"user"`
	Message string   `json:"message"`
}

func (e profileEnvelope) profile() Profile {
	if e.User != nil {
		return *e.User
	}
	return e.Profile
}

// ProfileUpdate is a partial profile update. Zero fields are not sent.
type ProfileUpdate struct {
	Name string `json:"name,omitempty"`
	Age  int    `json:"age,omitempty"`
}

// GetProfile fetches the account profile.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var env profileEnvelope
	if err := c.Get(ctx, "/user/profile", &env); err != nil {
		return Profile{}, err
	}
	return env.profile(), nil
}

// UpdateProfile applies a partial update and returns the stored profile and
// the server's message.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, string, error) {
	var env profileEnvelope
	if err := c.Patch(ctx, "/user/profile", upd, &env); err != nil {
		return Profile{}, "", err
	}
	return env.profile(), env.Message, nil
}

// DeleteAccount permanently deletes the signed-in account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.Delete(ctx, "/user", nil)
}
