package services

import (
	"strings"
	"unicode"
)

// TextAnalyzer provides the text processing the detection strategies
// rely on. Tokenization is order-preserving so that "first word found"
// decisions stay deterministic across runs.
type TextAnalyzer interface {
	// Tokenize breaks text into unique lowercase words in order of
	// first occurrence.
	Tokenize(text string) []string

	// SignificantWords returns the unique lowercase words strictly
	// longer than minLength, in order of first occurrence.
	SignificantWords(text string, minLength int) []string
}

// DefaultTextAnalyzer is the plain implementation of TextAnalyzer.
type DefaultTextAnalyzer struct{}

// NewDefaultTextAnalyzer creates a new text analyzer.
func NewDefaultTextAnalyzer() *DefaultTextAnalyzer {
	return &DefaultTextAnalyzer{}
}

// Tokenize breaks text into unique lowercase words in order of first
// occurrence. Words are runs of letters and digits; everything else is
// a separator.
func (ta *DefaultTextAnalyzer) Tokenize(text string) []string {
	text = strings.ToLower(text)

	var words []string
	seen := make(map[string]bool)
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if !seen[word] {
			seen[word] = true
			words = append(words, word)
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return words
}

// SignificantWords returns the unique lowercase words strictly longer
// than minLength, in order of first occurrence.
func (ta *DefaultTextAnalyzer) SignificantWords(text string, minLength int) []string {
	var significant []string
	for _, word := range ta.Tokenize(text) {
		if len(word) > minLength {
			significant = append(significant, word)
		}
	}
	return significant
}
