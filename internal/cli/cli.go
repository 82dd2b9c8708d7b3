// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdResetPassword
	CmdAsk
	CmdChat
	CmdThreads
	CmdProfile
	CmdDashboard
	CmdTheme
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	JSON       bool
	ConfigPath string

	// Name is the command word as typed.
	Name string
	// Raw are the arguments after the command word.
	Raw []string
	// Suggestion is a close command name when Name is unknown.
	Suggestion string
}

// Parser returns an ArgParser over the command's arguments.
func (a Args) Parser() *ArgParser {
	return NewArgParser(a.Raw)
}

const usageText = `copypaste - code generation from the terminal

Usage:
  copypaste                          Start the TUI (default)
  copypaste ask "prompt" [--lang L]  Generate code for one prompt
  copypaste chat                     Line-based chat in the current terminal

Account:
  copypaste login [email]            Log in (clears the guest quota)
  copypaste register [email]         Create an account and log in
  copypaste logout                   Log out and forget every chat
  copypaste whoami                   Show who is logged in
  copypaste reset-password [email]   Reset a forgotten password by email code

Chats (logged in):
  copypaste threads [list]           List chats
    --favorites                      Only starred chats
    --search TEXT                    Only chats whose title contains TEXT
  copypaste threads new              Start an empty chat
  copypaste threads show <n|id>      Print a chat
  copypaste threads rename <n|id> <title>
  copypaste threads delete <n|id> [--yes]
  copypaste threads favorite <n|id>  Star or unstar a chat
  copypaste threads sync [<n|id>]    Retry saving chats whose save failed
  copypaste threads export <n|id>    Export a chat
    --format md|json|yaml            Export format (default: md)
    --output DIR                     Directory to write to (default: cwd)
    --stdout                         Print instead of writing a file

Profile (logged in):
  copypaste profile [show]           Show your profile
  copypaste profile name <name>      Change your display name
  copypaste profile setup --name N --age A
  copypaste profile delete [--yes]   Delete your account
  copypaste dashboard                Profile plus recent history

Settings:
  copypaste theme [dark|light]       Show or set the TUI theme
  copypaste config [show]            Show the configuration
  copypaste config get <key>         Print one setting (dot notation)
  copypaste config set <key> <value> Change one setting
  copypaste config path              Print the config file path
  copypaste config keys              List every setting

Global Flags:
  --json            Machine-readable output where supported
  -q, --quiet       Less output
  --config PATH     Use a different config file

Languages for --lang: %s

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer, languages []string) {
	fmt.Fprintf(w, usageText, strings.Join(languages, ", "), Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "copypaste version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// commands maps every command word and alias to its Command.
var commands = map[string]Command{
	"tui":            CmdTUI,
	"login":          CmdLogin,
	"signin":         CmdLogin,
	"register":       CmdRegister,
	"signup":         CmdRegister,
	"logout":         CmdLogout,
	"whoami":         CmdWhoami,
	"reset-password": CmdResetPassword,
	"reset":          CmdResetPassword,
	"ask":            CmdAsk,
	"chat":           CmdChat,
	"threads":        CmdThreads,
	"thread":         CmdThreads,
	"chats":          CmdThreads,
	"profile":        CmdProfile,
	"dashboard":      CmdDashboard,
	"theme":          CmdTheme,
	"config":         CmdConfig,
	"version":        CmdVersion,
	"--version":      CmdVersion,
	"-V":             CmdVersion,
	"help":           CmdHelp,
	"--help":         CmdHelp,
	"-h":             CmdHelp,
}

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]
	if cmd, ok := commands[strings.ToLower(args.Name)]; ok {
		return cmd, args
	}
	args.Suggestion = SuggestCommand(args.Name)
	return CmdUnknown, args
}

// parseGlobalFlags pulls the global flags that appear before the command
// word. Flags after it belong to the command, except --json and --quiet
// which are honoured anywhere.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var rest []string
	command := false

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--json":
			args.JSON = true
			if command {
				rest = append(rest, a)
			}
		case a == "-q" || a == "--quiet":
			args.Quiet = true
		case !command && a == "--config" && i+1 < len(argv):
			args.ConfigPath = argv[i+1]
			i++
		case !command && strings.HasPrefix(a, "--config="):
			args.ConfigPath = strings.TrimPrefix(a, "--config=")
		default:
			if !strings.HasPrefix(a, "-") || commands[a] != 0 {
				command = true
			}
			rest = append(rest, a)
		}
	}
	return rest, args
}
