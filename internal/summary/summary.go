// Package summary maps book titles to their canonical summaries.
// Lookups are exact and case-sensitive.
package summary

import (
	"sort"

	"librarian/internal/domain"
	"librarian/internal/llm"
)

// Fallback is returned for titles with no summary.
const Fallback = "Nu am gasit un rezumat pentru aceasta carte."

// ToolName is the function name the model is forced to call.
const ToolName = "get_summary_by_title"

// Resolver is a read-only title to summary table.
type Resolver struct {
	summaries map[string]string
}

// New copies m into a resolver.
func New(m map[string]string) *Resolver {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return &Resolver{summaries: cp}
}

// Default returns the built-in ten-book table.
func Default() *Resolver { return New(builtin) }

// FromRecords builds a resolver from parsed corpus records.
// When titles repeat the later record wins.
func FromRecords(records []domain.BookRecord) *Resolver {
	m := make(map[string]string, len(records))
	for _, r := range records {
		m[r.Title] = r.Summary
	}
	return &Resolver{summaries: m}
}

// Resolve returns the summary for title, or Fallback.
func (r *Resolver) Resolve(title string) string {
	if s, ok := r.summaries[title]; ok {
		return s
	}
	return Fallback
}

// Has reports whether title has a summary.
func (r *Resolver) Has(title string) bool {
	_, ok := r.summaries[title]
	return ok
}

// Titles returns the known titles in sorted order.
func (r *Resolver) Titles() []string {
	out := make([]string, 0, len(r.summaries))
	for t := range r.summaries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Tool is the declaration of the summary lookup function.
func Tool() llm.Tool {
	return llm.Tool{
		Name:        ToolName,
		Description: "Returneaza rezumatul complet al unei carti, dat fiind titlul exact.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Titlul exact al cartii (ex: '1984')",
				},
			},
			"required":             []string{"title"},
			"additionalProperties": false,
		},
	}
}
