// Package tokenizer is the injected analyzer collaborator (SPEC_FULL §1):
// it turns UTF-8 attribute text into the (word, word_index, char_index,
// char_length) tuples the raw indexer consumes. The default implementation
// adapts the teacher repository's internal/tokenizer (camelCase/PascalCase
// splitting, lowercasing, splitting on non-alphanumeric runs) to also track
// character offsets, which the teacher's version discarded.
package tokenizer

import "regexp"

// Token is one word produced from an attribute's text, with its position
// among the attribute's words and its character span in the source string.
type Token struct {
	Word       string
	WordIndex  int
	CharIndex  int
	CharLength int
}

// Tokenizer is the interface the raw indexer and automaton builder program
// against, so the default regex-based analyzer below can be swapped for a
// language-aware one without touching indexing/query code.
type Tokenizer interface {
	Tokenize(text string) []Token
}

var (
	acronymRegex   = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelCaseRegex = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Default is the teacher-derived word tokenizer: split camelCase/PascalCase
// boundaries, lowercase, then split on runs of non-alphanumeric runes.
type Default struct{}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (Default) Tokenize(text string) []Token {
	processed := acronymRegex.ReplaceAllString(text, "$1 $2")
	processed = camelCaseRegex.ReplaceAllString(processed, "$1 $2")

	runes := []rune(toLowerASCIIAware(processed))

	// srcIndex maps each rune position in runes back to the source text,
	// skipping the spaces inserted at case boundaries above.
	src := []rune(text)
	srcIndex := make([]int, len(runes))
	j := 0
	for k, r := range runes {
		srcIndex[k] = j
		if r == ' ' && (j >= len(src) || src[j] != ' ') {
			continue
		}
		j++
	}

	var tokens []Token
	wordIdx := 0
	i := 0
	for i < len(runes) {
		if !isAlnum(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isAlnum(runes[i]) {
			i++
		}
		word := string(runes[start:i])
		tokens = append(tokens, Token{
			Word:       word,
			WordIndex:  wordIdx,
			CharIndex:  srcIndex[start],
			CharLength: i - start,
		})
		wordIdx++
	}
	return tokens
}

// toLowerASCIIAware lowercases ASCII letters A-Z only; every other rune is
// left as is. It is kept as a named helper to mirror the teacher's explicit
// lowercasing step in its own Tokenize function.
func toLowerASCIIAware(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			runes[i] = r + ('a' - 'A')
		}
	}
	return string(runes)
}
