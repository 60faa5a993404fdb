package pipeline

import (
	"regexp"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

var (
	nonLetterOrSpace = regexp.MustCompile(`[^a-zA-Z\s]`)
	nonLetter        = regexp.MustCompile(`[^a-zA-Z]`)
)

// Clean normalizes raw extracted text: drops everything that is not an
// ASCII letter or whitespace, lowercases, and collapses whitespace runs.
func Clean(text string) string {
	text = nonLetterOrSpace.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize splits text into word tokens using Unicode word segmentation.
// Degenerate input that the segmenter yields nothing for falls back to a
// plain whitespace split. An empty input yields an empty result.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var tokens []string
	seg := words.FromString(text)
	for seg.Next() {
		tok := strings.TrimSpace(seg.Value())
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		tokens = strings.Fields(text)
	}
	return tokens
}

func stripNonLetters(word string) string {
	return nonLetter.ReplaceAllString(word, "")
}
