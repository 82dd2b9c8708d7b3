// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/copypaste-tui/internal/config"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/pipeline"
	"github.com/jeranaias/copypaste-tui/internal/session"
)

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads REPL input.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerReader is a lineReader with editing and persistent history.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &linerReader{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close writes the history file (0600) and restores the terminal.
func (r *linerReader) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const chatHelp = `Commands:
  /new             Start a new chat
  /list            List chats
  /open <n|id>     Switch to a chat
  /rename <title>  Rename the current chat
  /star            Star or unstar the current chat
  /sync            Retry saving the current chat
  /delete          Delete the current chat
  /help            Show this help
  /quit            Leave`

// HandleChat runs the line-based chat.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	r := newLinerReader()
	defer r.Close()
	return runChat(ctx, env, r)
}

func runChat(ctx context.Context, env *Env, r lineReader) error {
	if err := env.start(ctx); err != nil {
		fmt.Fprintln(env.Err, WarningStyle.Render("Could not load chats: "+err.Error()))
	}
	printChatIntro(env)

	for {
		input, err := r.Prompt("copypaste> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				env.println()
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			more, err := chatCommand(ctx, env, input)
			if err != nil {
				fmt.Fprintln(env.Err, ErrorStyle.Render("Error:")+" "+err.Error())
			}
			if !more {
				return nil
			}
			continue
		}
		chatSubmit(ctx, env, input)
	}
}

func printChatIntro(env *Env) {
	if env.Quiet {
		return
	}
	env.println(TitleStyle.Render("CopyPaste chat") + DimStyle.Render("  /help for commands, ctrl+d to leave"))
	if env.App.Session().IsAuthenticated() {
		if t, ok := env.App.Store().Active(); ok {
			env.println(DimStyle.Render(fmt.Sprintf("Continuing %q", t.Title)))
			if last, ok := t.LastMessage(); ok {
				env.println(DimStyle.Render("  " + last.Preview(60)))
			}
		}
		return
	}
	q := env.App.Quota()
	env.println(WarningStyle.Render(fmt.Sprintf("Guest mode: %d of %d free responses left. Chats are not saved.", q.Remaining(), q.Limit())))
}

// chatSubmit sends one prompt to the active chat, creating one first when
// none is active.
func chatSubmit(ctx context.Context, env *Env, text string) {
	if env.App.Blocked() {
		env.println(ErrorStyle.Render(BlockedMessage))
		return
	}
	store := env.App.Store()
	id := store.ActiveID()
	if id == "" {
		id, _ = store.CreateThread(ctx)
	}

	res := env.App.Pipeline().Submit(ctx, id, text)
	switch res.Outcome {
	case pipeline.Replied:
		fmt.Fprint(env.Out, renderMarkdown(res.Reply.Text))
		if res.SaveErr != nil {
			env.println(WarningStyle.Render("Reply not saved: " + res.SaveErr.Error() + " (run /sync to retry)"))
		}
		if !env.App.Session().IsAuthenticated() && !env.Quiet {
			q := env.App.Quota()
			env.println(DimStyle.Render(fmt.Sprintf("%d of %d free responses left", q.Remaining(), q.Limit())))
		}
	case pipeline.Failed:
		env.println(ErrorStyle.Render(pipeline.FailureReply))
	case pipeline.RejectedBlocked:
		env.println(ErrorStyle.Render(BlockedMessage))
	case pipeline.RejectedBusy:
		env.println(WarningStyle.Render("Still waiting on the last reply."))
	default:
		env.println(WarningStyle.Render("Message not sent: " + res.Outcome.String()))
	}
}

// BlockedMessage is printed once a guest has used every free response.
const BlockedMessage = "🚫 You’ve reached the limit for guest responses. Run `copypaste login` to keep going."

// chatCommand runs a slash command. It returns false to leave the REPL.
func chatCommand(ctx context.Context, env *Env, input string) (bool, error) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	store := env.App.Store()

	switch strings.ToLower(name) {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		env.println(chatHelp)

	case "/new":
		id, err := store.CreateThread(ctx)
		if err != nil {
			// The chat exists locally; only the save failed.
			env.println(WarningStyle.Render("New chat not saved: " + err.Error()))
		}
		env.println(DimStyle.Render("Started chat " + shortID(id)))

	case "/list", "/ls":
		printThreadList(env, store.Threads(), store.ActiveID())

	case "/open":
		t, err := resolveThread(store.Threads(), rest)
		if err != nil {
			return true, err
		}
		store.SelectThread(t.ID)
		env.println(DimStyle.Render(fmt.Sprintf("Switched to %q", t.Title)))
		printMessages(env, t.Messages)

	case "/rename":
		id, err := activeThread(store)
		if err != nil {
			return true, err
		}
		if err := store.RenameThread(ctx, id, rest); err != nil {
			return true, err
		}
		env.println(SuccessStyle.Render("✓ ") + "Renamed")

	case "/star", "/favorite":
		id, err := activeThread(store)
		if err != nil {
			return true, err
		}
		if err := store.ToggleFavorite(ctx, id); err != nil {
			return true, err
		}
		t, _ := store.Thread(id)
		if t.Favorite {
			env.println(StarStyle.Render("★ ") + "Starred")
		} else {
			env.println("Unstarred")
		}

	case "/sync":
		id, err := activeThread(store)
		if err != nil {
			return true, err
		}
		if err := store.Resync(ctx, id); err != nil {
			return true, err
		}
		env.println(SuccessStyle.Render("✓ ") + "Saved")

	case "/delete":
		id, err := activeThread(store)
		if err != nil {
			return true, err
		}
		t, _ := store.Thread(id)
		ok, err := env.Confirm(false, fmt.Sprintf("delete %q", t.Title))
		if err != nil || !ok {
			return true, err
		}
		if err := store.DeleteThread(ctx, id, func(model.Thread) bool { return true }); err != nil {
			return true, err
		}
		env.println(SuccessStyle.Render("✓ ") + "Chat deleted")

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return true, nil
}

func activeThread(store *session.Store) (string, error) {
	id := store.ActiveID()
	if id == "" {
		return "", errors.New("no chat is open")
	}
	return id, nil
}

// printMessages replays a conversation.
func printMessages(env *Env, msgs []model.Message) {
	for _, m := range msgs {
		if m.Sender == model.SenderUser {
			env.println(PromptStyle.Render("› ") + WrapText(m.Text, GetTerminalWidth()-2))
			continue
		}
		fmt.Fprint(env.Out, renderMarkdown(m.Text))
	}
}
