// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/api"
	"github.com/jeranaias/copypaste-tui/internal/profile"
	"github.com/jeranaias/copypaste-tui/internal/util"
)

// HandleProfile dispatches the profile subcommands.
func HandleProfile(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(ctx); err != nil {
		return err
	}
	p := args.Parser()
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
		return profileShow(ctx, env)
	case "name", "rename":
		return profileName(ctx, env, p)
	case "setup":
		return profileSetup(ctx, env, p)
	case "delete":
		return profileDelete(ctx, env, p)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown profile subcommand %q", sub),
			Usage:   "copypaste profile [show|name|setup|delete]",
		}
	}
}

func profileShow(ctx context.Context, env *Env) error {
	prof, err := env.App.Profile().Get(ctx)
	if err != nil {
		return err
	}
	if env.JSON {
		return env.emit("profile", prof)
	}
	printProfile(env, prof)
	if profile.NeedsSetup(prof) {
		env.println()
		env.println(WarningStyle.Render("Finish your profile: copypaste profile setup --name NAME --age AGE"))
	}
	return nil
}

func printProfile(env *Env, p api.Profile) {
	env.println(TitleStyle.Render("Profile"))
	name := p.Name
	if name == "" {
		name = DimStyle.Render("(not set)")
	}
	env.println(RenderField("Name", name))
	env.println(RenderField("Email", p.Email))
	if p.Age > 0 {
		env.println(RenderField("Age", strconv.Itoa(p.Age)))
	}
	if !p.CreatedAt.IsZero() {
		env.println(RenderField("Member since", p.CreatedAt.Format("2006-01-02")))
	}
}

func profileName(ctx context.Context, env *Env, p *ArgParser) error {
	name := p.Join(1)
	if strings.TrimSpace(name) == "" {
		return ErrMissingArgument("name", "copypaste profile name <name>")
	}
	msg, err := env.App.Profile().UpdateName(ctx, name)
	if err != nil {
		return err
	}
	return reportProfile(env, "profile name", msg)
}

func profileSetup(ctx context.Context, env *Env, p *ArgParser) error {
	name := p.Flag("name", "n")
	age := p.Flag("age", "a")
	var err error
	if name == "" && !env.JSON {
		if name, err = env.Prompt.Line("Name: "); err != nil {
			return err
		}
	}
	if age == "" && !env.JSON {
		if age, err = env.Prompt.Line("Age: "); err != nil {
			return err
		}
	}
	msg, err := env.App.Profile().CompleteSetup(ctx, strings.TrimSpace(name), strings.TrimSpace(age))
	if err != nil {
		return err
	}
	return reportProfile(env, "profile setup", msg)
}

func reportProfile(env *Env, command, msg string) error {
	if env.JSON {
		return env.emit(command, map[string]string{"message": msg})
	}
	env.info(SuccessStyle.Render("✓ ") + msg)
	return nil
}

func profileDelete(ctx context.Context, env *Env, p *ArgParser) error {
	ok, err := env.Confirm(p.BoolFlag("yes", "y"), "permanently delete your account and every chat")
	if err != nil {
		return err
	}
	if !ok {
		env.cancelled()
		return nil
	}
	if err := env.App.DeleteAccount(ctx); err != nil {
		return err
	}
	if env.JSON {
		return env.emit("profile delete", map[string]bool{"deleted": true})
	}
	env.info(SuccessStyle.Render("✓ ") + "Account deleted. You are now a guest.")
	return nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// HandleDashboard shows the profile with the most recent history.
func HandleDashboard(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(ctx); err != nil {
		return err
	}
	d, err := env.App.Profile().Dashboard(ctx)
	if err != nil {
		return err
	}
	if env.JSON {
		return env.emit("dashboard", map[string]interface{}{
			"profile":      d.Profile,
			"member_since": d.MemberSince,
			"recent":       d.Recent,
		})
	}

	printProfile(env, d.Profile)
	env.println()
	env.println(SectionStyle.Render("Recent"))
	if len(d.Recent) == 0 {
		env.println(DimStyle.Render("No history yet."))
		return nil
	}
	width := GetTerminalWidth() - 16
	if width < 20 {
		width = 20
	}
	for _, h := range d.Recent {
		query := util.TruncateWidth(strings.Join(strings.Fields(h.Query), " "), width)
		env.printf("  %-10s %s\n", DimStyle.Render(h.Language), query)
	}
	return nil
}
