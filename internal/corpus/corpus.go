// Package corpus parses the plaintext book summary file.
//
// The file is a sequence of sections, each introduced by the "## Title:"
// delimiter. The rest of the delimiter line is the title; every following
// line up to the next delimiter belongs to the summary.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"librarian/internal/domain"
)

// Delimiter starts every section of the corpus file.
const Delimiter = "## Title:"

// ErrCorpusFormat is returned when a corpus yields no well-formed sections.
var ErrCorpusFormat = errors.New("corpus format error")

// FormatError describes a corpus that could not produce any record.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("corpus: %s", e.Reason)
	}
	return fmt.Sprintf("corpus %s: %s", e.Source, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrCorpusFormat }

// Parse splits corpus text into book records. Text before the first delimiter
// and empty sections are ignored.
func Parse(text string) ([]domain.BookRecord, error) {
	return parse(text, "")
}

// Load reads and parses the corpus file at path.
func Load(path string) ([]domain.BookRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return parse(string(data), path)
}

func parse(text, source string) ([]domain.BookRecord, error) {
	sections := strings.Split(text, Delimiter)
	var records []domain.BookRecord
	// sections[0] is whatever precedes the first delimiter
	for i := 1; i < len(sections); i++ {
		body := strings.TrimSpace(sections[i])
		if body == "" {
			continue
		}
		lines := strings.Split(body, "\n")
		title := strings.TrimSpace(lines[0])
		records = append(records, domain.BookRecord{
			ID:      "book_" + strconv.Itoa(i),
			Title:   title,
			Summary: joinLines(lines[1:]),
		})
	}
	if len(records) == 0 {
		return nil, &FormatError{Source: source, Reason: "no well-formed \"" + Delimiter + "\" sections"}
	}
	return records, nil
}

func joinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// Summaries returns the summary text of every record, in order.
func Summaries(records []domain.BookRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Summary
	}
	return out
}
