// Package index embeds corpus records into a vector store and answers top-k
// title queries against it.
//
// Seeding happens at most once per store: SeedIfEmpty is a no-op when the
// store already holds entries, so corpus edits on disk are not picked up
// until Reseed is called.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"librarian/internal/corpus"
	"librarian/internal/domain"
)

// DefaultTopK is the number of candidates a turn retrieves.
const DefaultTopK = 2

// ErrEmbeddingProvider marks a failure of the embedding provider during seeding or querying.
var ErrEmbeddingProvider = errors.New("embedding provider failed")

// ProgressFunc is called after each record is embedded during seeding.
type ProgressFunc func(done, total int)

// Index binds one embedder to one vector store.
// The embedder is fixed at construction so seed and query share an embedding space.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	logger   *slog.Logger
	progress ProgressFunc

	mu    sync.RWMutex
	group singleflight.Group
}

type Option func(*Index)

func WithLogger(l *slog.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(ix *Index) { ix.progress = fn }
}

func New(embedder domain.Embedder, store domain.VectorStore, opts ...Option) *Index {
	ix := &Index{embedder: embedder, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Embedder returns the embedder bound to this index.
func (ix *Index) Embedder() domain.Embedder { return ix.embedder }

// Prepare lets corpus-derived embedders build their vocabulary.
// It must run before Query when the store was seeded by an earlier process.
func (ix *Index) Prepare(records []domain.BookRecord) error {
	if err := ix.embedder.Prepare(corpus.Summaries(records)); err != nil {
		return fmt.Errorf("%w: prepare %s: %w", ErrEmbeddingProvider, ix.embedder.Name(), err)
	}
	return nil
}

// Count returns the number of stored entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx)
}

// SeedIfEmpty embeds and stores every record unless the store already has entries.
// It returns the number of entries inserted. Concurrent callers share one seeding run.
func (ix *Index) SeedIfEmpty(ctx context.Context, records []domain.BookRecord) (int, error) {
	v, err, _ := ix.group.Do("seed", func() (any, error) {
		ix.mu.Lock()
		defer ix.mu.Unlock()

		n, err := ix.store.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count index entries: %w", err)
		}
		if n > 0 {
			ix.logger.Debug("index already seeded", "entries", n)
			return 0, nil
		}
		return ix.seed(ctx, records)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Reseed replaces the stored entries with records. Every record is embedded
// before the store is cleared, so a provider failure leaves the old entries.
func (ix *Index) Reseed(ctx context.Context, records []domain.BookRecord) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.Prepare(records); err != nil {
		return 0, err
	}
	entries, err := ix.embed(ctx, records)
	if err != nil {
		return 0, err
	}
	if err := ix.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	ix.logger.Info("index cleared for reseed")
	return ix.write(ctx, entries)
}

func (ix *Index) seed(ctx context.Context, records []domain.BookRecord) (int, error) {
	entries, err := ix.embed(ctx, records)
	if err != nil {
		return 0, err
	}
	return ix.write(ctx, entries)
}

func (ix *Index) embed(ctx context.Context, records []domain.BookRecord) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, 0, len(records))
	for i, r := range records {
		vec, err := ix.embedder.Embed(ctx, r.Summary)
		if err != nil {
			return nil, fmt.Errorf("%w: embed %s: %w", ErrEmbeddingProvider, r.ID, err)
		}
		entries = append(entries, domain.IndexEntry{
			ID:        r.ID,
			Embedding: vec,
			Metadata:  domain.EntryMetadata{Title: r.Title},
			Document:  r.Summary,
		})
		if ix.progress != nil {
			ix.progress(i+1, len(records))
		}
	}
	return entries, nil
}

func (ix *Index) write(ctx context.Context, entries []domain.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	// the store learns the dimension from the first real vector
	if err := ix.store.Init(ctx, len(entries[0].Embedding)); err != nil {
		return 0, fmt.Errorf("init vector store: %w", err)
	}
	if err := ix.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("upsert index entries: %w", err)
	}
	ix.logger.Info("index seeded", "entries", len(entries), "embedder", ix.embedder.Name())
	return len(entries), nil
}

// Query returns up to k titles nearest to text, by ascending distance.
// It waits for a running seed or reseed to finish.
func (ix *Index) Query(ctx context.Context, text string, k int) (domain.QueryResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrEmbeddingProvider, err)
	}
	hits, err := ix.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make(domain.QueryResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.Candidate{Title: h.Entry.Metadata.Title, Distance: h.Distance})
	}
	ix.logger.Debug("index query", "k", k, "candidates", out.Titles())
	return out, nil
}
