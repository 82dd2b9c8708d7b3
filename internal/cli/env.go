// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/copypaste-tui/internal/app"
	"github.com/jeranaias/copypaste-tui/internal/config"
)

// Env is what every handler runs against.
type Env struct {
	App    *app.App
	Config *config.Config
	// ConfigPath is where `config set` writes.
	ConfigPath string
	Out        io.Writer
	Err        io.Writer
	Prompt     Prompter
	JSON       bool
	Quiet      bool
}

// NewEnv wires an Env to the process's standard streams.
func NewEnv(a *app.App, cfg *config.Config, configPath string, args Args) *Env {
	return &Env{
		App:        a,
		Config:     cfg,
		ConfigPath: configPath,
		Out:        os.Stdout,
		Err:        os.Stderr,
		Prompt:     NewTermPrompter(os.Stdin, os.Stderr),
		JSON:       args.JSON,
		Quiet:      args.Quiet,
	}
}

func (e *Env) printf(format string, a ...interface{}) {
	fmt.Fprintf(e.Out, format, a...)
}

func (e *Env) println(a ...interface{}) {
	fmt.Fprintln(e.Out, a...)
}

// info prints unless --quiet.
func (e *Env) info(a ...interface{}) {
	if !e.Quiet {
		fmt.Fprintln(e.Out, a...)
	}
}

// emit prints data as a JSON envelope.
func (e *Env) emit(command string, data interface{}) error {
	return NewJSONResponse(command, data).Print(e.Out)
}

// start restores the saved login and loads its threads.
func (e *Env) start(ctx context.Context) error {
	return e.App.Start(ctx)
}

// requireLogin starts the app and fails for guests.
func (e *Env) requireLogin(ctx context.Context) error {
	if err := e.start(ctx); err != nil && e.App.Session().IsAuthenticated() {
		return err
	}
	if !e.App.Session().IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// =============================================================================
// PROMPTS
// =============================================================================

// Prompter reads answers from the user.
type Prompter interface {
	// Line reads one line of visible input.
	Line(prompt string) (string, error)
	// Secret reads one line without echo.
	Secret(prompt string) (string, error)
}

// TermPrompter prompts on a terminal, hiding secrets with x/term when the
// input is a TTY.
type TermPrompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

// NewTermPrompter reads from in and writes prompts to out.
func NewTermPrompter(in *os.File, out io.Writer) *TermPrompter {
	return &TermPrompter{in: in, reader: bufio.NewReader(in), out: out}
}

// Line implements Prompter.
func (p *TermPrompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret implements Prompter. Without a TTY it falls back to Line so
// passwords can be piped in.
func (p *TermPrompter) Secret(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// Confirm asks a y/N question unless yes is already set. JSON mode never
// prompts, so it needs --yes.
func (e *Env) Confirm(yes bool, action string) (bool, error) {
	if yes {
		return true, nil
	}
	if e.JSON {
		return false, &UsageError{Message: "confirmation required: pass --yes to " + action}
	}
	answer, err := e.Prompt.Line(fmt.Sprintf("Are you sure you want to %s? [y/N]: ", action))
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// cancelled reports a declined confirmation.
func (e *Env) cancelled() {
	e.info(DimStyle.Render("Cancelled."))
}
