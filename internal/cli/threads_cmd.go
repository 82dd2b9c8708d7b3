// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/copypaste-tui/internal/export"
	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/jeranaias/copypaste-tui/internal/session"
	"github.com/jeranaias/copypaste-tui/internal/util"
)

// errGuestThreads is returned by chat commands run without an account.
var errGuestThreads = fmt.Errorf("guest chats are not saved: %w", ErrNotLoggedIn)

// threadJSON is the JSON shape of a listed chat.
type threadJSON struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Favorite bool   `json:"favorite"`
	Messages int    `json:"messages"`
	Active   bool   `json:"active"`
	Sync     string `json:"sync"`
}

// HandleThreads dispatches the threads subcommands.
func HandleThreads(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(ctx); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return errGuestThreads
		}
		return err
	}

	p := args.Parser()
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "list", "ls":
		return threadsList(env, p)
	case "new", "create":
		return threadsNew(ctx, env)
	case "show", "open", "view":
		return threadsShow(env, p)
	case "rename":
		return threadsRename(ctx, env, p)
	case "delete", "rm":
		return threadsDelete(ctx, env, p)
	case "favorite", "star", "unstar":
		return threadsFavorite(ctx, env, p)
	case "sync", "resync":
		return threadsSync(ctx, env, p)
	case "export":
		return threadsExport(env, p)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown threads subcommand %q", sub),
			Usage:   "copypaste threads [list|new|show|rename|delete|favorite|sync|export]",
		}
	}
}

func threadsList(env *Env, p *ArgParser) error {
	store := env.App.Store()
	all := store.Threads()
	// Indexes refer to the full list so they can be passed back to show.
	index := make(map[string]int, len(all))
	for i, t := range all {
		index[t.ID] = i + 1
	}
	shown := session.Filter(all, p.Flag("search", "s"), p.BoolFlag("favorites"))

	if env.JSON {
		out := make([]threadJSON, 0, len(shown))
		for _, t := range shown {
			out = append(out, threadJSON{
				Index:    index[t.ID],
				ID:       t.ID,
				Title:    t.Title,
				Favorite: t.Favorite,
				Messages: len(t.Messages),
				Active:   t.ID == store.ActiveID(),
				Sync:     t.Sync.String(),
			})
		}
		return env.emit("threads list", out)
	}
	if len(shown) == 0 {
		if len(all) == 0 {
			env.println(DimStyle.Render("No chats yet. Start one with `copypaste chat` or `copypaste threads new`."))
		} else {
			env.println(DimStyle.Render("No chats match."))
		}
		return nil
	}
	printIndexedThreads(env, shown, index, store.ActiveID())
	return nil
}

// printThreadList prints threads numbered by position.
func printThreadList(env *Env, threads []model.Thread, activeID string) {
	if len(threads) == 0 {
		env.println(DimStyle.Render("No chats."))
		return
	}
	index := make(map[string]int, len(threads))
	for i, t := range threads {
		index[t.ID] = i + 1
	}
	printIndexedThreads(env, threads, index, activeID)
}

func printIndexedThreads(env *Env, threads []model.Thread, index map[string]int, activeID string) {
	width := GetTerminalWidth() - 24
	if width < 20 {
		width = 20
	}
	for _, t := range threads {
		marker := "  "
		if t.ID == activeID {
			marker = PromptStyle.Render("› ")
		}
		star := " "
		if t.Favorite {
			star = StarStyle.Render("★")
		}
		badge := t.Sync.Badge()
		if badge != "" {
			badge = " " + WarningStyle.Render(badge)
		}
		env.printf("%s%3d. %s %s %s%s\n",
			marker,
			index[t.ID],
			star,
			util.TruncateWidth(t.Title, width),
			DimStyle.Render(fmt.Sprintf("(%s, %d)", shortID(t.ID), len(t.Messages))),
			badge,
		)
	}
}

func threadsNew(ctx context.Context, env *Env) error {
	id, err := env.App.Store().CreateThread(ctx)
	if env.JSON {
		data := map[string]interface{}{"id": id, "saved": err == nil}
		return env.emit("threads new", data)
	}
	if err != nil {
		env.println(WarningStyle.Render("Chat created but not saved: " + err.Error()))
		return err
	}
	env.info(SuccessStyle.Render("✓ ") + "Created chat " + shortID(id))
	return nil
}

func threadsShow(env *Env, p *ArgParser) error {
	t, err := resolveThread(env.App.Store().Threads(), p.Positional(1))
	if err != nil {
		return err
	}
	if env.JSON {
		return env.emit("threads show", t)
	}
	env.println(TitleStyle.Render(t.Title))
	env.println(RenderSeparator(40))
	if len(t.Messages) == 0 {
		env.println(DimStyle.Render("(empty)"))
		return nil
	}
	printMessages(env, t.Messages)
	return nil
}

func threadsRename(ctx context.Context, env *Env, p *ArgParser) error {
	const usage = "copypaste threads rename <n|id> <title>"
	if p.PositionalCount() < 2 {
		return ErrMissingArgument("chat", usage)
	}
	store := env.App.Store()
	t, err := resolveThread(store.Threads(), p.Positional(1))
	if err != nil {
		return err
	}
	title := p.Join(2)
	if err := store.RenameThread(ctx, t.ID, title); err != nil {
		return err
	}
	if env.JSON {
		return env.emit("threads rename", map[string]string{"id": t.ID, "title": strings.TrimSpace(title)})
	}
	env.info(SuccessStyle.Render("✓ ") + fmt.Sprintf("Renamed to %q", strings.TrimSpace(title)))
	return nil
}

func threadsDelete(ctx context.Context, env *Env, p *ArgParser) error {
	store := env.App.Store()
	t, err := resolveThread(store.Threads(), p.Positional(1))
	if err != nil {
		return err
	}
	ok, err := env.Confirm(p.BoolFlag("yes", "y"), fmt.Sprintf("delete %q", t.Title))
	if err != nil {
		return err
	}
	if !ok {
		env.cancelled()
		return nil
	}
	if err := store.DeleteThread(ctx, t.ID, func(model.Thread) bool { return true }); err != nil {
		return err
	}
	if env.JSON {
		return env.emit("threads delete", map[string]string{"id": t.ID})
	}
	env.info(SuccessStyle.Render("✓ ") + "Chat deleted")
	return nil
}

func threadsFavorite(ctx context.Context, env *Env, p *ArgParser) error {
	store := env.App.Store()
	t, err := resolveThread(store.Threads(), p.Positional(1))
	if err != nil {
		return err
	}
	if err := store.ToggleFavorite(ctx, t.ID); err != nil {
		return err
	}
	now, _ := store.Thread(t.ID)
	if env.JSON {
		return env.emit("threads favorite", map[string]interface{}{"id": t.ID, "favorite": now.Favorite})
	}
	if now.Favorite {
		env.info(StarStyle.Render("★ ") + fmt.Sprintf("Starred %q", now.Title))
	} else {
		env.info(fmt.Sprintf("Unstarred %q", now.Title))
	}
	return nil
}

// threadsSync saves one chat, or every chat whose last save failed.
func threadsSync(ctx context.Context, env *Env, p *ArgParser) error {
	store := env.App.Store()
	var ids []string
	if ref := p.Positional(1); ref != "" {
		t, err := resolveThread(store.Threads(), ref)
		if err != nil {
			return err
		}
		ids = []string{t.ID}
	} else {
		ids = store.Unsynced()
	}

	var failed []string
	for _, id := range ids {
		if err := store.Resync(ctx, id); err != nil {
			failed = append(failed, id)
		}
	}
	if env.JSON {
		return env.emit("threads sync", map[string]interface{}{"synced": len(ids) - len(failed), "failed": failed})
	}
	switch {
	case len(ids) == 0:
		env.info(DimStyle.Render("Nothing to sync."))
	case len(failed) > 0:
		return fmt.Errorf("%d of %d chats could not be saved", len(failed), len(ids))
	default:
		env.info(SuccessStyle.Render("✓ ") + fmt.Sprintf("Saved %d chat(s)", len(ids)))
	}
	return nil
}

func threadsExport(env *Env, p *ArgParser) error {
	t, err := resolveThread(env.App.Store().Threads(), p.Positional(1))
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.OutputDir = p.FlagOrDefault("output", ".")
	exporter, err := export.ForFormat(p.FlagOrDefault("format", "md"), opts)
	if err != nil {
		return &UsageError{Message: err.Error(), Usage: "formats: " + strings.Join(export.Formats(), ", ")}
	}

	if p.BoolFlag("stdout") {
		content, err := exporter.Export(t)
		if err != nil {
			return err
		}
		_, err = env.Out.Write(content)
		return err
	}

	path, err := export.ToFile(t, exporter, opts)
	if err != nil {
		return err
	}
	if env.JSON {
		return env.emit("threads export", map[string]string{"id": t.ID, "path": path})
	}
	env.info(SuccessStyle.Render("✓ ") + "Exported to " + path)
	return nil
}
