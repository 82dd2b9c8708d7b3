// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/copypaste-tui/internal/pipeline"
)

// markdownRenderer renders replies on a terminal. nil means plain output.
var markdownRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		markdownRenderer = r
	}
}

// renderMarkdown renders content when stdout is a colour terminal and
// returns it unchanged otherwise.
func renderMarkdown(content string) string {
	if markdownRenderer == nil || !IsStdoutTTY() || !ColorsEnabled() {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// askResult is the JSON shape of ask.
type askResult struct {
	Prompt    string `json:"prompt"`
	Language  string `json:"language"`
	Output    string `json:"output"`
	Reply     string `json:"reply"`
	Remaining *int   `json:"guest_remaining,omitempty"`
}

// HandleAsk generates code for one prompt.
//
//	copypaste ask "sort a list in python"
//	copypaste ask --lang cpp "reverse a string"
//	copypaste ask --raw "..."      only the generated code
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	prompt := strings.TrimSpace(p.Join(0))
	if prompt == "" {
		return ErrMissingArgument("prompt", `copypaste ask "prompt" [--lang LANG]`)
	}
	lang := strings.ToLower(p.Flag("lang", "l"))
	if lang != "" && !knownLanguage(lang) {
		return &UsageError{
			Message: fmt.Sprintf("unknown language %q", lang),
			Usage:   "languages: " + strings.Join(pipeline.Languages(), ", "),
		}
	}

	// Restore the sign-in so history is recorded; a failed thread load
	// does not matter here.
	_ = env.start(ctx)

	ans, err := env.App.Ask(ctx, prompt, lang)
	if err != nil {
		return err
	}

	guest := !env.App.Session().IsAuthenticated()
	if env.JSON {
		res := askResult{Prompt: prompt, Language: ans.Language, Output: ans.Output, Reply: ans.Reply}
		if guest {
			left := env.App.Quota().Remaining()
			res.Remaining = &left
		}
		return env.emit("ask", res)
	}
	if p.BoolFlag("raw") {
		fmt.Fprintln(env.Out, ans.Output)
		return nil
	}

	fmt.Fprint(env.Out, renderMarkdown(ans.Reply))
	if guest && !env.Quiet {
		q := env.App.Quota()
		fmt.Fprintln(env.Err, DimStyle.Render(fmt.Sprintf("Guest: %d of %d free responses left", q.Remaining(), q.Limit())))
	}
	return nil
}

func knownLanguage(lang string) bool {
	for _, l := range pipeline.Languages() {
		if l == lang {
			return true
		}
	}
	return false
}
