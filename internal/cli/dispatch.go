// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/copypaste-tui/internal/pipeline"
)

// Handler runs one command.
type Handler func(ctx context.Context, env *Env, args Args) error

var handlers = map[Command]Handler{
	CmdLogin:         HandleLogin,
	CmdRegister:      HandleRegister,
	CmdLogout:        HandleLogout,
	CmdWhoami:        HandleWhoami,
	CmdResetPassword: HandleResetPassword,
	CmdAsk:           HandleAsk,
	CmdChat:          HandleChat,
	CmdThreads:       HandleThreads,
	CmdProfile:       HandleProfile,
	CmdDashboard:     HandleDashboard,
	CmdTheme:         HandleTheme,
	CmdConfig:        HandleConfig,
}

// Run executes a non-TUI command.
func Run(ctx context.Context, cmd Command, env *Env, args Args) error {
	switch cmd {
	case CmdHelp:
		PrintUsage(env.Out, pipeline.Languages())
		return nil
	case CmdVersion:
		PrintVersion(env.Out)
		return nil
	case CmdUnknown:
		msg := fmt.Sprintf("unknown command %q", args.Name)
		if args.Suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", args.Suggestion)
		}
		return &UsageError{Message: msg, Usage: "copypaste help"}
	}
	h, ok := handlers[cmd]
	if !ok {
		return &UsageError{Message: "command not available here"}
	}
	return h(ctx, env, args)
}

// CommandName is the name used in JSON envelopes and error output.
func CommandName(args Args) string {
	if args.Name != "" {
		return args.Name
	}
	return "copypaste"
}
