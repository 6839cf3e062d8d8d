// Package textutil holds the title normalization and similarity measure
// shared by the structured/DOM correlator and the deduplicator.
package textutil

import "strings"

// minTokenLen is the shortest token that participates in similarity
// scoring; shorter tokens (articles, unit suffixes) are discarded.
const minTokenLen = 3

// Similarity computes the token-overlap similarity between two titles.
//
// Both titles are tokenized on whitespace and tokens of length <= 2 are
// dropped. A token of a counts as matching when it contains, or is
// contained in, any token of b. The denominator is the qualifying token
// count of a (floored at 1), so the measure is deliberately asymmetric:
// Similarity(a, b) != Similarity(b, a) in general. Correlation scoring and
// dedup thresholding both depend on this exact formula.
func Similarity(a, b string) float64 {
	tokensA := qualifyingTokens(a)
	tokensB := qualifyingTokens(b)

	denom := len(tokensA)
	if denom == 0 {
		denom = 1
	}

	matches := 0
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				matches++
				break
			}
		}
	}

	return float64(matches) / float64(denom)
}

// Normalize lowercases a title, strips punctuation, and collapses runs of
// whitespace to single spaces.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ', r == '\t', r == '\n', r == '\r':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// punctuation and symbols are dropped outright
		}
	}

	return strings.TrimSpace(b.String())
}

func qualifyingTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
