package model

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// RBDNumberingOffset reconciles the spike numbering users type (e.g. N501Y)
// with the domain-relative numbering stored in the RBD strain labels.
// Revisit if the RBD reference numbering of the matrices changes.
const RBDNumberingOffset = 330

// RemapRule renumbers tokens for one protein: positions above Threshold are
// shifted down by Threshold.
type RemapRule struct {
	Protein   Protein
	Threshold int
}

var DefaultRemap = RemapRule{Protein: ProteinRBD, Threshold: RBDNumberingOffset}

// ParseMutations splits comma separated user input into tokens, dropping
// blanks.
func ParseMutations(input string) []string {
	var tokens []string
	for _, part := range strings.Split(input, ",") {
		if tok := strings.TrimSpace(part); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Adjust rewrites the numeric position of token when the rule applies.
// The first and last characters are kept as the residue codes. Tokens
// without a parseable position are returned unchanged (SkipAndContinue).
func (r RemapRule) Adjust(token string, protein Protein) string {
	if protein != r.Protein {
		return token
	}

	pos, ok := position(token)
	if !ok || pos <= r.Threshold {
		return token
	}

	first, _ := utf8.DecodeRuneInString(token)
	last, _ := utf8.DecodeLastRuneInString(token)
	return string(first) + strconv.Itoa(pos-r.Threshold) + string(last)
}

// AdjustAll applies Adjust to every token.
func (r RemapRule) AdjustAll(tokens []string, protein Protein) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = r.Adjust(tok, protein)
	}
	return out
}

// position concatenates every ASCII digit of the token, so "P132H" gives 132.
func position(token string) (int, bool) {
	var digits strings.Builder
	for i := 0; i < len(token); i++ {
		if c := token[i]; c >= '0' && c <= '9' {
			digits.WriteByte(c)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	pos, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return pos, true
}

// MatchesAll reports whether label contains every token literally. With no
// tokens every label matches; lookups reject empty token lists before this.
func MatchesAll(label string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(label, tok) {
			return false
		}
	}
	return true
}
