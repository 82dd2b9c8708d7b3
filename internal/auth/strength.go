// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

// Strength is a coarse password rating shown while registering.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength scores one point each for length >= 6, an upper-case
// letter, a digit, and a character that is not an ASCII letter or digit.
// 0-1 is weak, 2 medium, 3-4 strong.
func PasswordStrength(pw string) Strength {
	var long, upper, digit, symbol bool
	long = len([]rune(pw)) >= 6
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			symbol = true
		}
	}

	score := 0
	for _, ok := range []bool{long, upper, digit, symbol} {
		if ok {
			score++
		}
	}

	switch {
	case score <= 1:
		return StrengthWeak
	case score == 2:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
