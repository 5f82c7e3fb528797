package ml

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeText builds the classifier input for a document:
// lowercase(title + " " + description). Missing fields are passed as "".
func NormalizeText(title, description string) string {
	// cases.Caser keeps state, so one per call.
	return cases.Lower(language.Und).String(title + " " + description)
}

// Tokenize splits text into maximal runs of letters, digits and underscores,
// keeping runs of at least two runes.
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	runes := 0
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
				runes = 0
			}
			runes++
			continue
		}
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, text[start:i])
		}
		start = -1
	}
	if start >= 0 && runes >= 2 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NGrams expands tokens into all n-grams with minN <= n <= maxN, joined by a
// single space, shorter n-grams first.
func NGrams(tokens []string, minN, maxN int) []string {
	if maxN < minN || minN < 1 {
		return nil
	}
	grams := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i]
			for _, tok := range tokens[i+1 : i+n] {
				gram += " " + tok
			}
			grams = append(grams, gram)
		}
	}
	return grams
}
