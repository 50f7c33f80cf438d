// Package search provides text tokenisation and the Redis-set-backed
// inverted index that answers conjunctive keyword queries.
package search

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of alphanumeric/underscore characters.
var wordPattern = regexp.MustCompile(`\w+`)

// Tokenize splits text into lowercased word tokens. The exact same
// normalisation is applied when indexing and when querying; any drift between
// the two silently breaks the conjunctive match.
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}
