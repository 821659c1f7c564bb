// SPDX-License-Identifier: MIT

package schemagraph

import (
	"strings"
	"unicode"
)

// nameTokens splits a field name into lowercase tokens on underscores,
// dashes, dots, digits and camelCase boundaries.
func nameTokens(name string) []string {
	var out []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsDigit(r):
			flush()
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				flush()
			}
			cur.WriteRune(r)
			prevLower = false
		default:
			cur.WriteRune(r)
			prevLower = true
		}
	}
	flush()

	return out
}

// diceSimilarity returns the Dice coefficient 2|A∩B| / (|A|+|B|) of two
// token sets. Two empty sets score 0, not 1, so blank names never match.
func diceSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}

	return 2 * float64(inter) / float64(len(setA)+len(setB))
}
