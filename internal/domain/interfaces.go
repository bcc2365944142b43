package domain

import "context"

// BookRecord is a single title/summary section parsed from the corpus file.
// IDs are only meaningful within the parse pass that produced them.
type BookRecord struct {
	ID      string
	Title   string
	Summary string
}

// EntryMetadata is the metadata carried next to every stored embedding.
type EntryMetadata struct {
	Title string
}

// IndexEntry is an embedded corpus record as held by a vector store.
type IndexEntry struct {
	ID        string
	Embedding []float64
	Metadata  EntryMetadata
	// Document is the text that was embedded (the book summary).
	Document string
}

// Hit is a stored entry matched by a similarity search.
type Hit struct {
	Entry    IndexEntry
	Distance float64
}

// Candidate is one title returned by a top-k query.
type Candidate struct {
	Title    string
	Distance float64
}

// QueryResult holds candidates ordered by ascending distance.
type QueryResult []Candidate

// Titles returns the candidate titles in result order.
func (r QueryResult) Titles() []string {
	out := make([]string, 0, len(r))
	for _, c := range r {
		out = append(out, c.Title)
	}
	return out
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a chat line kept by the shell. The core never reads history.
type ConversationTurn struct {
	Role    Role
	Content string
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists embeddings keyed by entry ID and supports nearest-neighbour search.
// Upsert must be idempotent per ID. Search returns hits by ascending distance.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, entries []IndexEntry) error
	Search(ctx context.Context, vector []float64, topK int) ([]Hit, error)
	Clear(ctx context.Context) error
	Close() error
}

// ProfanityGate decides whether a user request may reach the core.
type ProfanityGate interface {
	IsClean(text string) bool
}
