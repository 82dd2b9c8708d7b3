// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements every copypaste subcommand except the TUI itself.
//
// Parse turns os.Args into a Command and Args; main builds an Env around
// the app.App and hands both to the matching Handle function. Handlers
// write to Env.Out, read answers through Env.Prompt and return errors
// rather than exiting, so they run unchanged under test.
//
// # Commands
//
//	login, register, logout, whoami, reset-password
//	ask <prompt> [--lang L]      one-shot generation
//	chat                         line-based chat (liner)
//	threads [list|new|show|rename|delete|favorite|sync|export]
//	profile [show|name|setup|delete], dashboard
//	theme [dark|light], config [show|get|set|path|keys]
//	version, help
package cli
