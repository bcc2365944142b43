// Package selector narrows retrieved candidates to a single title, or none,
// with one constrained model call.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"librarian/internal/llm"
)

// NoneSentinel is the answer the model gives when no candidate fits.
const NoneSentinel = "NONE"

// ErrSelection marks a failed selection call.
var ErrSelection = errors.New("title selection failed")

// Outcome is the result of a selection: a chosen title or none.
type Outcome struct {
	Title string
	ok    bool
}

// Chosen returns an outcome holding title.
func Chosen(title string) Outcome { return Outcome{Title: title, ok: true} }

// None returns the empty outcome.
func None() Outcome { return Outcome{} }

// IsNone reports whether no title was chosen.
func (o Outcome) IsNone() bool { return !o.ok }

// Selector asks a chat model to pick one title out of a fixed list.
type Selector struct {
	provider llm.Provider
	logger   *slog.Logger
}

func New(provider llm.Provider, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{provider: provider, logger: logger}
}

// Choose returns None without calling the model when candidates is empty.
// Any answer that is not literally one of the candidates becomes None.
func (s *Selector) Choose(ctx context.Context, model, query string, candidates []string) (Outcome, error) {
	if len(candidates) == 0 {
		return None(), nil
	}
	resp, err := s.provider.Complete(ctx, &llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt(candidates)},
			{Role: llm.RoleUser, Content: query},
		},
		Temperature: llm.Float64(0),
	})
	if err != nil {
		return None(), fmt.Errorf("%w: %w", ErrSelection, err)
	}
	answer := strings.TrimSpace(resp.Content)
	if answer == NoneSentinel {
		return None(), nil
	}
	if !slices.Contains(candidates, answer) {
		s.logger.Warn("selector answer outside candidate set", "answer", answer, "candidates", candidates)
		return None(), nil
	}
	return Chosen(answer), nil
}

func systemPrompt(candidates []string) string {
	var b strings.Builder
	b.WriteString("Esti un asistent care recomanda carti. Alege din lista de mai jos cartea care se potriveste cel mai bine cererii utilizatorului.\n")
	b.WriteString("Carti disponibile:\n")
	for _, c := range candidates {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("Raspunde DOAR cu titlul exact, asa cum apare in lista, fara alte cuvinte. ")
	b.WriteString("Daca nicio carte nu se potriveste, raspunde exact cu " + NoneSentinel + ".")
	return b.String()
}
