// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/config"
)

// HandleTheme shows or sets the TUI theme.
func HandleTheme(ctx context.Context, env *Env, args Args) error {
	name := strings.ToLower(args.Parser().Subcommand())
	if name == "" {
		theme := env.App.Theme()
		if env.JSON {
			return env.emit("theme", map[string]string{"theme": theme})
		}
		env.println(theme)
		return nil
	}
	if name == "toggle" {
		next, err := env.App.ToggleTheme()
		if err != nil {
			return err
		}
		name = next
	} else if err := env.App.SetTheme(name); err != nil {
		return &UsageError{Message: err.Error(), Usage: "copypaste theme [" + app.ThemeDark + "|" + app.ThemeLight + "|toggle]"}
	}
	if env.JSON {
		return env.emit("theme", map[string]string{"theme": name})
	}
	env.info(SuccessStyle.Render("✓ ") + "Theme set to " + name)
	return nil
}

// HandleConfig shows and edits the config file.
func HandleConfig(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
		if env.JSON {
			return env.emit("config", env.Config)
		}
		env.println(env.Config.String())
		return nil

	case "path":
		if env.JSON {
			return env.emit("config path", map[string]string{"path": env.ConfigPath})
		}
		env.println(env.ConfigPath)
		return nil

	case "keys":
		keys := config.GetAllKeys()
		if env.JSON {
			return env.emit("config keys", keys)
		}
		for _, k := range keys {
			env.println(k)
		}
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "copypaste config get <key>")
		}
		v, err := env.Config.Get(key)
		if err != nil {
			return &NotFoundError{Resource: "config key", ID: key}
		}
		if env.JSON {
			return env.emit("config get", map[string]interface{}{"key": key, "value": v})
		}
		env.println(fmt.Sprint(v))
		return nil

	case "set":
		key, value := p.Positional(1), p.Join(2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "copypaste config set <key> <value>")
		}
		next := env.Config.Clone()
		if err := next.Set(key, value); err != nil {
			return &UsageError{Message: err.Error(), Usage: "see `copypaste config keys`"}
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := config.SaveTOML(next, env.ConfigPath); err != nil {
			return err
		}
		*env.Config = *next
		if env.JSON {
			return env.emit("config set", map[string]string{"key": key, "value": value})
		}
		env.info(SuccessStyle.Render("✓ ") + key + " = " + value)
		return nil

	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand %q", sub),
			Usage:   "copypaste config [show|path|keys|get|set]",
		}
	}
}
