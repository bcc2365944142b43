package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"librarian/internal/domain"
	"librarian/internal/illustration"
	"librarian/internal/moderation"
	"librarian/internal/service"
)

// REPL is the plain line-mode chat used when stdin is not a terminal.
type REPL struct {
	librarian   LibrarianPort
	gate        domain.ProfanityGate
	illustrator IllustratorPort
	model       string
}

func NewREPL(librarian LibrarianPort, gate domain.ProfanityGate, illustrator IllustratorPort) *REPL {
	if gate == nil {
		gate = moderation.AllowAll{}
	}
	return &REPL{librarian: librarian, gate: gate, illustrator: illustrator, model: librarian.DefaultModel()}
}

// Run reads requests line by line until EOF or "exit".
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Bine ai venit la Smart Librarian!")
	fmt.Fprintln(out, "Pune o intrebare despre o carte sau scrie 'exit' pentru a iesi.")

	for {
		fmt.Fprint(out, "\nTu: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if isExit(q) {
			fmt.Fprintln(out, "La revedere!")
			return nil
		}
		if !r.gate.IsClean(q) {
			fmt.Fprintln(out, moderation.BlockedMessage)
			continue
		}

		res, err := r.librarian.Ask(ctx, q, r.model)
		if err != nil {
			fmt.Fprintf(out, "Eroare: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\nLibrarian:\n%s\n", res.Reply)

		if res.State != service.Completed || r.illustrator == nil {
			continue
		}
		title, ok := illustration.ExtractTitle(res.Reply)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "Generez o ilustratie pentru „%s”? (y/n): ", title)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			continue
		}
		path, err := r.illustrator.FromReply(ctx, res.Reply)
		if err != nil {
			fmt.Fprintf(out, "Eroare generare imagine: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Imagine generata: %s\n", path)
	}
}
