// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strings"
)

// SuggestCommand returns the closest known command word to input, or "" when
// nothing is close. The allowed distance grows with the input length.
func SuggestCommand(input string) string {
	input = strings.ToLower(strings.TrimLeft(input, "-"))
	if input == "" {
		return ""
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		if !strings.HasPrefix(name, "-") {
			names = append(names, name)
		}
	}
	// Stable ties.
	sort.Strings(names)

	threshold := 2
	if len(input) <= 3 {
		threshold = 1
	}

	best, bestDist := "", threshold+1
	for _, name := range names {
		if strings.HasPrefix(name, input) && len(input) >= 3 {
			return name
		}
		if d := levenshteinDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// levenshteinDistance returns the edit distance between s1 and s2.
func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
