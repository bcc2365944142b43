package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"librarian/internal/domain"
	"librarian/internal/llm"
	"librarian/internal/selector"
	"librarian/internal/summary"
)

// Reply texts for turns that end without a recommendation.
const (
	NoCandidatesMessage = "Nu am gasit nicio carte relevanta pentru cererea ta."
	NoMatchMessage      = "Nu am gasit o potrivire suficient de buna printre cartile disponibile."
)

// ReplyPrefix starts every completed reply. Illustration parses it back out.
const ReplyPrefix = "Recomandare: "

var ErrModelNotAllowed = errors.New("model not allowed")

// TurnState is the terminal state of one turn.
type TurnState int

const (
	NoCandidates TurnState = iota
	NoMatch
	Completed
)

func (s TurnState) String() string {
	switch s {
	case NoCandidates:
		return "no_candidates"
	case NoMatch:
		return "no_match"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

// TurnResult is what a turn produced. Title is empty unless State is Completed.
type TurnResult struct {
	State      TurnState
	Reply      string
	Title      string
	Candidates domain.QueryResult
	Model      string
}

type Retriever interface {
	Query(ctx context.Context, text string, k int) (domain.QueryResult, error)
}

type TitleSelector interface {
	Choose(ctx context.Context, model, query string, candidates []string) (selector.Outcome, error)
}

type SummaryResolver interface {
	Resolve(title string) string
}

type Options struct {
	TopK          int
	DefaultModel  string
	AllowedModels []string
}

// Librarian runs the retrieve, select, forced fetch, resolve pipeline.
// One instance serves one caller at a time.
type Librarian struct {
	retriever Retriever
	selector  TitleSelector
	provider  llm.Provider
	resolver  SummaryResolver
	opts      Options
	logger    *slog.Logger
}

func NewLibrarian(retriever Retriever, sel TitleSelector, provider llm.Provider, resolver SummaryResolver, opts Options, logger *slog.Logger) *Librarian {
	if opts.TopK <= 0 {
		opts.TopK = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Librarian{retriever: retriever, selector: sel, provider: provider, resolver: resolver, opts: opts, logger: logger}
}

// Models returns the models a caller may pick from.
func (l *Librarian) Models() []string { return slices.Clone(l.opts.AllowedModels) }

// DefaultModel returns the model used when a caller passes none.
func (l *Librarian) DefaultModel() string { return l.opts.DefaultModel }

func (l *Librarian) checkModel(model string) (string, error) {
	if model == "" {
		model = l.opts.DefaultModel
	}
	if len(l.opts.AllowedModels) > 0 && !slices.Contains(l.opts.AllowedModels, model) {
		return "", fmt.Errorf("%w: %q", ErrModelNotAllowed, model)
	}
	return model, nil
}

// Ask runs one turn for query with the given model.
// Empty retrieval and no-match selection are states, not errors.
func (l *Librarian) Ask(ctx context.Context, query, model string) (*TurnResult, error) {
	model, err := l.checkModel(model)
	if err != nil {
		return nil, err
	}
	log := l.logger.With("model", model)

	candidates, err := l.retriever.Query(ctx, query, l.opts.TopK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Info("turn finished", "state", NoCandidates)
		return &TurnResult{State: NoCandidates, Reply: NoCandidatesMessage, Model: model}, nil
	}

	outcome, err := l.selector.Choose(ctx, model, query, candidates.Titles())
	if err != nil {
		return nil, err
	}
	if outcome.IsNone() {
		log.Info("turn finished", "state", NoMatch, "candidates", candidates.Titles())
		return &TurnResult{State: NoMatch, Reply: NoMatchMessage, Candidates: candidates, Model: model}, nil
	}
	chosen := outcome.Title

	lookup, err := l.forcedFetch(ctx, model, query, chosen)
	if err != nil {
		return nil, err
	}
	text := l.resolver.Resolve(lookup)

	log.Info("turn finished", "state", Completed, "title", chosen)
	return &TurnResult{
		State:      Completed,
		Reply:      ReplyPrefix + chosen + "\n\n" + text,
		Title:      chosen,
		Candidates: candidates,
		Model:      model,
	}, nil
}

// forcedFetch asks the model to call the summary tool for chosen and returns
// the title to resolve. The argument is only trusted when it names chosen
// exactly; a missing, unreadable or divergent call yields chosen.
func (l *Librarian) forcedFetch(ctx context.Context, model, query, chosen string) (string, error) {
	resp, err := l.provider.Complete(ctx, &llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Ai recomandat o carte. Apeleaza functia " + summary.ToolName + " cu titlul exact al cartii recomandate."},
			{Role: llm.RoleUser, Content: query},
			{Role: llm.RoleAssistant, Content: chosen},
		},
		Tools:       []llm.Tool{summary.Tool()},
		ToolChoice:  llm.Force(summary.ToolName),
		Temperature: llm.Float64(0),
	})
	if err != nil {
		return "", fmt.Errorf("forced summary call: %w", err)
	}
	call, ok := resp.FirstCall(summary.ToolName)
	if !ok {
		l.logger.Warn("forced tool call missing, resolving chosen title", "title", chosen)
		return chosen, nil
	}
	var args struct {
		Title string `json:"title"`
	}
	if err := call.DecodeArguments(&args); err != nil || strings.TrimSpace(args.Title) == "" {
		l.logger.Warn("unreadable tool arguments, resolving chosen title", "arguments", call.Arguments, "error", err)
		return chosen, nil
	}
	if args.Title != chosen {
		l.logger.Warn("tool argument differs from chosen title, resolving chosen title", "argument", args.Title, "title", chosen)
		return chosen, nil
	}
	return args.Title, nil
}
