// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/auth"
)

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

// HandleLogin signs in with an email and password.
func HandleLogin(ctx context.Context, env *Env, args Args) error {
	email, err := askEmail(env, args.Parser().Subcommand())
	if err != nil {
		return err
	}
	password, err := env.Prompt.Secret("Password: ")
	if err != nil {
		return err
	}

	if err := env.App.Login(ctx, email, password); err != nil {
		if env.App.Session().IsAuthenticated() {
			// Signed in, but the chat list did not load.
			env.info(WarningStyle.Render("Logged in, but chats could not be loaded: " + err.Error()))
			return nil
		}
		return err
	}
	return reportSignIn(env, "login", "Logged in as "+email)
}

// HandleRegister creates an account and signs in.
func HandleRegister(ctx context.Context, env *Env, args Args) error {
	email, err := askEmail(env, args.Parser().Subcommand())
	if err != nil {
		return err
	}
	password, err := env.Prompt.Secret("Password: ")
	if err != nil {
		return err
	}
	if password != "" && !env.JSON {
		fmt.Fprintln(env.Err, DimStyle.Render("Strength: ")+strengthLabel(auth.PasswordStrength(password)))
	}
	confirm, err := env.Prompt.Secret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return auth.ErrPasswordMismatch
	}

	if err := env.App.Register(ctx, email, password); err != nil {
		if env.App.Session().IsAuthenticated() {
			env.info(WarningStyle.Render("Account created, but chats could not be loaded: " + err.Error()))
			return nil
		}
		return err
	}
	return reportSignIn(env, "register", "Account created for "+email)
}

func reportSignIn(env *Env, command, message string) error {
	if env.JSON {
		c := env.App.Session().Claims()
		return env.emit(command, map[string]interface{}{
			"email":   c.Email,
			"name":    c.Name,
			"expires": c.ExpiresAt,
			"threads": env.App.Store().Len(),
		})
	}
	env.info(SuccessStyle.Render("✓ ") + message)
	return nil
}

func askEmail(env *Env, given string) (string, error) {
	email := strings.TrimSpace(given)
	if email != "" {
		return email, nil
	}
	line, err := env.Prompt.Line("Email: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func strengthLabel(s auth.Strength) string {
	switch s {
	case auth.StrengthStrong:
		return SuccessStyle.Render(string(s))
	case auth.StrengthMedium:
		return WarningStyle.Render(string(s))
	default:
		return ErrorStyle.Render(string(s))
	}
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

// HandleLogout signs out and drops every chat held in memory.
func HandleLogout(ctx context.Context, env *Env, args Args) error {
	_ = env.start(ctx)
	was := env.App.Session().IsAuthenticated()
	if err := env.App.Logout(); err != nil {
		return err
	}
	if env.JSON {
		return env.emit("logout", map[string]bool{"was_logged_in": was})
	}
	if was {
		env.info(SuccessStyle.Render("✓ ") + "Logged out")
	} else {
		env.info(DimStyle.Render("Not logged in."))
	}
	return nil
}

// HandleWhoami shows the signed-in account, or the guest allowance.
func HandleWhoami(ctx context.Context, env *Env, args Args) error {
	s := env.App.Session()
	// An unreadable token leaves the guest view.
	_ = s.Restore()
	q := env.App.Quota()

	if !s.IsAuthenticated() {
		if env.JSON {
			return env.emit("whoami", map[string]interface{}{
				"guest":     true,
				"remaining": q.Remaining(),
				"limit":     q.Limit(),
			})
		}
		env.println(TitleStyle.Render("Guest"))
		env.println(RenderField("Free responses", fmt.Sprintf("%d of %d left", q.Remaining(), q.Limit())))
		env.println(DimStyle.Render("Run `copypaste login` to save chats."))
		return nil
	}

	c := s.Claims()
	left := s.TimeRemaining()
	if env.JSON {
		return env.emit("whoami", map[string]interface{}{
			"guest":             false,
			"email":             c.Email,
			"name":              c.Name,
			"subject":           c.Subject,
			"expires":           c.ExpiresAt,
			"remaining_seconds": int(left.Seconds()),
		})
	}
	env.println(TitleStyle.Render("Logged in"))
	if c.Email != "" {
		env.println(RenderField("Email", c.Email))
	}
	if c.Name != "" {
		env.println(RenderField("Name", c.Name))
	}
	if left > 0 {
		env.println(RenderField("Session", formatDuration(left)+" left"))
	}
	return nil
}

// =============================================================================
// PASSWORD RESET
// =============================================================================

// HandleResetPassword walks the emailed-code reset flow.
func HandleResetPassword(ctx context.Context, env *Env, args Args) error {
	flow := env.App.ResetFlow()

	email, err := askEmail(env, args.Parser().Subcommand())
	if err != nil {
		return err
	}
	msg, err := flow.SendCode(ctx, email)
	if err != nil {
		return err
	}
	env.info(SuccessStyle.Render("✓ ") + msg)

	code, err := env.Prompt.Line("Code from the email: ")
	if err != nil {
		return err
	}
	msg, err = flow.VerifyCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	env.info(SuccessStyle.Render("✓ ") + msg)

	previous, err := env.Prompt.Secret("Current password: ")
	if err != nil {
		return err
	}
	next, err := env.Prompt.Secret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := env.Prompt.Secret("Confirm new password: ")
	if err != nil {
		return err
	}
	msg, err = flow.Reset(ctx, previous, next, confirm)
	if err != nil {
		return err
	}
	if env.JSON {
		return env.emit("reset-password", map[string]string{"email": flow.Email(), "message": msg})
	}
	env.info(SuccessStyle.Render("✓ ") + msg)
	return nil
}
