// Package moderation screens user requests for profanity before they reach
// the recommendation pipeline.
package moderation

import (
	"regexp"
	"strings"

	"librarian/internal/domain"
)

// BlockedMessage is shown instead of a recommendation when a request is rejected.
const BlockedMessage = "Te rog pastreaza un limbaj respectuos. Iti pot recomanda carti pe orice tema."

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}@$*]+`)

// leet undoes the common character swaps used to dodge word lists.
var leet = strings.NewReplacer(
	"@", "a", "4", "a", "$", "s", "5", "s", "0", "o", "1", "i", "!", "i", "3", "e", "7", "t", "*", "",
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t",
)

// WordList rejects text containing any listed word as a whole token.
type WordList struct {
	words map[string]struct{}
}

// NewWordList builds a gate from the built-in list plus extra words.
func NewWordList(extra ...string) *WordList {
	w := &WordList{words: make(map[string]struct{}, len(builtin)+len(extra))}
	for _, s := range builtin {
		w.words[s] = struct{}{}
	}
	for _, s := range extra {
		if s = normalize(strings.TrimSpace(s)); s != "" {
			w.words[s] = struct{}{}
		}
	}
	return w
}

func normalize(s string) string { return leet.Replace(strings.ToLower(s)) }

// IsClean reports whether text contains no listed word.
func (w *WordList) IsClean(text string) bool {
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, bad := w.words[normalize(tok)]; bad {
			return false
		}
	}
	return true
}

// AllowAll is a gate that passes everything.
type AllowAll struct{}

func (AllowAll) IsClean(string) bool { return true }

var (
	_ domain.ProfanityGate = (*WordList)(nil)
	_ domain.ProfanityGate = AllowAll{}
)

// builtin entries are stored normalized.
var builtin = []string{
	"fuck", "fucking", "fucker", "motherfucker", "shit", "shitty", "bullshit", "bitch", "bitches",
	"asshole", "bastard", "dick", "dickhead", "cunt", "whore", "slut", "wanker", "prick", "twat",
	"pula", "pizda", "muie", "futu", "fut", "futut", "cacat", "curva", "curve", "dracu",
	"bulangiu", "poponar", "handicapat", "idiotule", "boule", "jegos",
}
