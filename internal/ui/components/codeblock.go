// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/copypaste-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced block from a reply.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a new code block.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{Language: language, Code: code, MaxWidth: 80}
}

// Render highlights the code and frames it with a language badge and line
// numbers.
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.Trim(c.Code, "\n")
	highlighted := highlightCode(code, c.Language, theme.Palette.ChromaStyle)

	lines := strings.Split(highlighted, "\n")
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = theme.CodeLineNum.Render(strconv.Itoa(i+1)) + line
	}

	var header string
	if c.Language != "" {
		header = theme.CodeLangBadge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + strings.Join(rendered, "\n"))
}

// =============================================================================
// MARKDOWN CODE BLOCK PARSER
// =============================================================================

// Segment is a run of reply text: either prose or one fenced block.
type Segment struct {
	Text     string
	Code     bool
	Language string
}

// SplitFences splits text on ``` fences. An unclosed fence runs to the end.
func SplitFences(text string) []Segment {
	var (
		segs   []Segment
		buf    []string
		inCode bool
		lang   string
	)
	flush := func() {
		if len(buf) == 0 && !inCode {
			return
		}
		segs = append(segs, Segment{Text: strings.Join(buf, "\n"), Code: inCode, Language: lang})
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				flush()
				inCode, lang = false, ""
			} else {
				flush()
				inCode = true
				lang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return segs
}

// RenderFenced renders text with every fenced block highlighted.
func RenderFenced(text string, width int, theme *styles.Theme, prose lipgloss.Style) string {
	var out []string
	for _, seg := range SplitFences(text) {
		if seg.Code {
			cb := NewCodeBlock(seg.Language, seg.Text)
			cb.MaxWidth = width
			out = append(out, cb.Render(theme))
			continue
		}
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		out = append(out, prose.Width(width).Render(ParseInlineCode(seg.Text, theme)))
	}
	return strings.Join(out, "\n")
}

// =============================================================================
// INLINE CODE RENDERER
// =============================================================================

// ParseInlineCode replaces `code` with styled inline code.
func ParseInlineCode(text string, theme *styles.Theme) string {
	var result, code strings.Builder
	inCode := false

	for _, r := range text {
		switch {
		case r == '`' && inCode:
			result.WriteString(theme.InlineCode.Render(code.String()))
			code.Reset()
			inCode = false
		case r == '`':
			inCode = true
		case inCode:
			code.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	if inCode {
		result.WriteString("`")
		result.WriteString(code.String())
	}
	return result.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode returns ANSI-highlighted code, or the input unchanged when
// chroma cannot tokenise it.
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
