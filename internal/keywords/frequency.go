// Package keywords ranks the content words of a text by frequency.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Extractor ranks words by frequency with stopwords filtered.
type Extractor struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	minRunes     int
}

// NewExtractor creates a frequency-based keyword extractor for Romanian and English text.
func NewExtractor() *Extractor {
	return &Extractor{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
		minRunes:     4,
	}
}

// Top returns up to n keywords of text, most frequent first.
// Ties keep the order of first appearance.
func (e *Extractor) Top(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	freq := map[string]int{}
	var order []string
	for _, tok := range e.tokens(text) {
		if utf8.RuneCountInString(tok) < e.minRunes {
			continue
		}
		if _, ok := e.stopwords[fold(tok)]; ok {
			continue
		}
		if freq[tok] == 0 {
			order = append(order, tok)
		}
		freq[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if n > len(order) {
		n = len(order)
	}
	return order[:n]
}

func (e *Extractor) tokens(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

var diacritics = strings.NewReplacer("ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t")

func fold(s string) string { return diacritics.Replace(s) }

func defaultStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "but", "then", "else", "for", "from", "this", "that", "these", "those", "with", "into", "about", "between", "through", "during", "before", "after", "above", "below", "over", "under", "again", "further", "than", "such", "very", "will", "just", "should", "were", "been", "being",
		// romanian, folded
		"este", "sunt", "care", "pentru", "despre", "prin", "intr", "dintr", "dintre", "asupra", "acest", "aceasta", "aceste", "acestei", "acestui", "atunci", "cand", "unde", "fost", "fara", "catre", "dupa", "unei", "unui", "unor", "lui", "sale", "sau", "doar", "adevarat",
		"romanul", "romanului", "povestea", "poveste", "cartea", "carte", "personajul", "principal", "temele", "teme", "descrie", "exploreaza", "urmarim", "vedem",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
