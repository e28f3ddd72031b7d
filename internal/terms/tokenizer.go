package terms

import (
	"strings"
	"unicode"
)

// minTermLength filters out single-character fragments left over from label
// splitting (e.g. the "t" in "t 1").
const minTermLength = 2

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"with": {}, "this": {}, "that": {}, "then": {}, "if": {},
	"else": {}, "do": {}, "not": {}, "no": {}, "has": {}, "have": {},
}

// Tokenize splits label text into normalized terms: lowercased, split on
// non-alphanumeric boundaries, stop-words and short fragments removed.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTermLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// TokenizeIntoBag tokenizes text and accumulates the resulting terms into bag.
func TokenizeIntoBag(text string, bag Bag) {
	for _, term := range Tokenize(text) {
		bag.Add(term, 1)
	}
}
