// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultLanguage is the fence tag used when no rule matches.
const DefaultLanguage = "javascript"

// languageRules are tried in order. The first keyword found anywhere in the
// prompt wins, so "javascript" matches "java".
var languageRules = []struct {
	keyword  string
	language string
}{
	{"python", "python"},
	{"java", "java"},
	{"c++", "cpp"},
	{"html", "html"},
}

// Classify picks the code fence language for a prompt.
func Classify(prompt string) string {
	p := cases.Fold().String(prompt)
	for _, r := range languageRules {
		if strings.Contains(p, r.keyword) {
			return r.language
		}
	}
	return DefaultLanguage
}

// Languages lists every tag Classify can return.
func Languages() []string {
	out := make([]string, 0, len(languageRules)+1)
	for _, r := range languageRules {
		out = append(out, r.language)
	}
	return append(out, DefaultLanguage)
}
