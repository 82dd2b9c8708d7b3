// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/copypaste-tui/internal/model"
)

func sampleThread() model.Thread {
	t := model.NewThread("abc-123")
	t.Title = "Sort in *python*"
	t.Favorite = true
	t.Messages = []model.Message{
		model.UserMessage("sort a list in python"),
		model.AssistantMessage("```python\nsorted(xs)\n```"),
	}
	return t
}

func fixedOptions(dir string) *Options {
	return &Options{
		OutputDir:       dir,
		IncludeMetadata: true,
		Now:             func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(fixedOptions("")).Export(sampleThread())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "# Sort in \\*python\\*")
	assert.Contains(t, md, "### You\n\nsort a list in python")
	assert.Contains(t, md, "### CopyPaste\n\n```python\nsorted(xs)\n```")
	assert.Contains(t, md, "2025-01-02T03:04:05Z")

	end := strings.Index(md[4:], "---\n")
	require.Greater(t, end, 0)
	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(md[4:4+end]), &fm))
	assert.Equal(t, "Sort in *python*", fm.Title)
	assert.Equal(t, 2, fm.Messages)
}

func TestMarkdownExport_TitleWithNewlineStaysInFrontmatter(t *testing.T) {
	th := sampleThread()
	th.Title = "Test\nInjection: malicious"

	out, err := NewMarkdownExporter(nil).Export(th)
	require.NoError(t, err)

	for _, line := range strings.Split(string(out), "\n") {
		assert.False(t, strings.HasPrefix(line, "Injection:"), "title leaked into a new line")
	}
}

func TestJSONExport_WireShape(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleThread())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, "abc-123", raw["chatId"])
	msgs := raw["messages"].([]interface{})
	assert.Equal(t, "ai", msgs[1].(map[string]interface{})["sender"])
	assert.NotContains(t, raw, "Sync")
}

func TestYAMLExport(t *testing.T) {
	out, err := NewYAMLExporter(nil).Export(sampleThread())
	require.NoError(t, err)
	assert.Contains(t, string(out), "id: abc-123")
	assert.Contains(t, string(out), "favorite: true")
}

func TestEmptyThreadRejected(t *testing.T) {
	for _, format := range Formats() {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err)
		_, err = exp.Export(model.NewThread("x"))
		assert.ErrorIs(t, err, ErrEmptyThread, format)
	}
}

func TestForFormat(t *testing.T) {
	for name, ext := range map[string]string{"md": ".md", "markdown": ".md", "JSON": ".json", ".yml": ".yaml"} {
		exp, err := ForFormat(name, nil)
		require.NoError(t, err)
		assert.Equal(t, ext, exp.FileExtension())
	}
	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	opts := fixedOptions(dir)

	path, err := ToFile(sampleThread(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat_Sort_in_-python-_20250102_030405.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sorted(xs)")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "chat", sanitizeFilename("   "))
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, 50, len([]rune(sanitizeFilename(strings.Repeat("x", 80)))))
}
