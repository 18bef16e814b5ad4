// Package normalizer turns free-text business descriptions into the cleaned
// stem sequences that the weighting and ranking stages compare.
package normalizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultNoiseWords are removed from lower-cased text before tokenization.
var DefaultNoiseWords = []string{"industry"}

// Options configures a Normalizer.
type Options struct {
	// NoiseWords are deleted as literal substrings, so "industry" also
	// disappears from "industrywide".
	NoiseWords []string
}

// Normalizer lower-cases, strips, tokenizes and stems text. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	noise []string
}

// New creates a Normalizer from explicit options.
func New(opts Options) *Normalizer {
	noise := make([]string, 0, len(opts.NoiseWords))
	for _, w := range opts.NoiseWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		noise = append(noise, w)
	}
	return &Normalizer{noise: noise}
}

// Default creates a Normalizer that removes DefaultNoiseWords.
func Default() *Normalizer {
	return New(Options{NoiseWords: DefaultNoiseWords})
}

// Normalize returns the stems of text joined by single spaces.
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens returns the stem sequence of text.
//
// Characters other than ASCII letters and whitespace are deleted rather than
// replaced, so "top-10-companies" collapses into a single token.
func (n *Normalizer) Tokens(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	for _, w := range n.noise {
		lower = strings.ReplaceAll(lower, w, "")
	}
	letters := strings.Map(func(r rune) rune {
		if isASCIILetter(r) || isSpace(r) {
			return r
		}
		return -1
	}, lower)
	words := strings.FieldsFunc(letters, isSpace)
	if len(words) == 0 {
		return nil
	}
	stems := make([]string, 0, len(words))
	for _, w := range words {
		parts, ok := fusedWords[w]
		if !ok {
			parts = []string{w}
		}
		for _, p := range parts {
			s := english.Stem(p, true)
			if s == "" {
				continue
			}
			stems = append(stems, s)
		}
	}
	return stems
}

// fusedWords are split into two tokens the way the Penn Treebank word
// tokenizer splits them.
var fusedWords = map[string][]string{
	"cannot": {"can", "not"},
	"gimme":  {"gim", "me"},
	"gonna":  {"gon", "na"},
	"gotta":  {"got", "ta"},
	"lemme":  {"lem", "me"},
	"wanna":  {"wan", "na"},
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isSpace matches the Unicode whitespace class, including the ASCII
// information separators that most regex engines treat as whitespace.
func isSpace(r rune) bool {
	switch {
	case r >= 0x1c && r <= 0x1f:
		return true
	case r == ' ', r == '\t', r == '\n', r == '\v', r == '\f', r == '\r':
		return true
	case r < 0x80:
		return false
	}
	return unicode.IsSpace(r)
}
