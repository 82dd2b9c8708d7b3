// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/copypaste-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports threads to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontmatter is marshalled with yaml.v3 so titles never need hand escaping.
type frontmatter struct {
	Title     string `yaml:"title"`
	ID        string `yaml:"id"`
	Favorite  bool   `yaml:"favorite"`
	Messages  int    `yaml:"messages"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// Export converts a thread to Markdown.
func (e *MarkdownExporter) Export(t model.Thread) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Title:     t.Title,
			ID:        t.ID,
			Favorite:  t.Favorite,
			Messages:  len(t.Messages),
			Exported:  e.options.now().Format(time.RFC3339),
			Generator: "copypaste-tui",
		})
		if err != nil {
			return nil, fmt.Errorf("frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	title := t.Title
	if title == "" {
		title = "Untitled Chat"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(title)))

	if e.options.IncludeMetadata {
		user, assistant := t.Counts()
		sb.WriteString(fmt.Sprintf("- **Prompts**: %d\n", user))
		sb.WriteString(fmt.Sprintf("- **Replies**: %d\n", assistant))
		if t.Favorite {
			sb.WriteString("- **Favorite**: yes\n")
		}
		sb.WriteString("\n---\n\n")
	}

	for i, msg := range t.Messages {
		sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Sender.DisplayName()))
		sb.WriteString(strings.TrimSpace(msg.Text))
		sb.WriteString("\n\n")
		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
		"\n", " ",
	)
	return r.Replace(s)
}
