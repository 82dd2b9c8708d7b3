// copypaste - code generation chat in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/cli"
	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/logging"
	"github.com/jeranaias/copypaste-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])
	os.Exit(run(cmd, args))
}

func run(cmd cli.Command, args cli.Args) int {
	// Help and version work without a config or state file.
	if cmd == cli.CmdHelp || cmd == cli.CmdVersion || cmd == cli.CmdUnknown {
		env := &cli.Env{Out: os.Stdout, Err: os.Stderr, JSON: args.JSON}
		return report(cmd, args, cli.Run(context.Background(), cmd, env, args))
	}

	cfg, cfgPath, err := loadConfig(args.ConfigPath)
	if err != nil {
		return report(cmd, args, err)
	}

	tui := cmd == cli.CmdTUI
	log := newLogger(cfg, !tui)
	defer log.Sync() //nolint:errcheck

	a, err := app.New(cfg, log)
	if err != nil {
		return report(cmd, args, err)
	}
	defer a.Close()

	if tui {
		if err := runTUI(a, cfg, cfgPath, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := cli.NewEnv(a, cfg, cfgPath, args)
	return report(cmd, args, cli.Run(ctx, cmd, env, args))
}

// report prints err and maps it to an exit code.
func report(cmd cli.Command, args cli.Args, err error) int {
	if err == nil {
		return cli.ExitSuccess
	}
	cli.DisplayError(os.Stderr, cli.CommandName(args), err, args.JSON)
	return cli.GetExitCode(err)
}

// loadConfig reads the --config file or the default location. A broken
// default file falls back to defaults with a warning; a broken --config
// file is fatal.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return nil, path, err
		}
		config.SetGlobal(cfg)
		return cfg, path, nil
	}

	def, err := config.ConfigPathTOML()
	if err != nil {
		return nil, "", err
	}
	return config.Global(), def, nil
}

// newLogger opens the rotating log file. The TUI never logs to the console.
func newLogger(cfg *config.Config, console bool) *zap.Logger {
	path, err := cfg.ResolvedLogPath()
	if err != nil {
		return logging.Nop()
	}
	log, err := logging.New(logging.Options{
		Path:    path,
		Level:   cfg.Log.Level,
		Console: console && cfg.Log.Console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		return logging.Nop()
	}
	return log
}

// runTUI runs the full-screen client and reloads the config file on change.
func runTUI(a *app.App, cfg *config.Config, cfgPath string, log *zap.Logger) error {
	if err := cli.RequiresTTY("the TUI"); err != nil {
		return err
	}

	p := tea.NewProgram(chat.New(a, cfg), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.EnsureConfigDir(); err != nil {
		log.Warn("failed to create config directory", zap.Error(err))
	}
	w, err := config.NewWatcher(cfgPath,
		func(next *config.Config) {
			config.SetGlobal(next)
			p.Send(chat.ConfigChangedMsg{Config: next})
		},
		func(err error) {
			log.Warn("config reload failed", zap.Error(err))
		},
	)
	if err != nil {
		log.Warn("config watcher unavailable", zap.Error(err))
	} else {
		go w.Run(ctx)
	}

	log.Info("tui started", zap.String("version", Version))
	_, err = p.Run()
	return err
}
