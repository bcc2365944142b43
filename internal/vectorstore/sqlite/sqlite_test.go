package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarian/internal/domain"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index", "books.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func books() []domain.IndexEntry {
	return []domain.IndexEntry{
		{ID: "book_1", Embedding: []float64{1, 0, 0}, Metadata: domain.EntryMetadata{Title: "1984"}, Document: "distopie"},
		{ID: "book_2", Embedding: []float64{0, 1, 0}, Metadata: domain.EntryMetadata{Title: "The Hobbit"}, Document: "aventura"},
		{ID: "book_3", Embedding: []float64{0, 0, 1}, Metadata: domain.EntryMetadata{Title: "Animal Farm"}, Document: "fabula"},
	}
}

func TestStorage_UpsertSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, books()))

	hits, err := s.Search(ctx, []float64{0.1, 0.9, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "The Hobbit", hits[0].Entry.Metadata.Title)
	assert.Equal(t, "aventura", hits[0].Entry.Document)
	assert.Equal(t, []float64{0, 1, 0}, hits[0].Entry.Embedding)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, books()))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Error(t, reopened.Init(ctx, 5), "dimension change must be rejected")
}

func TestStorage_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, books()))
	require.NoError(t, s.Upsert(ctx, books()[:1]))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, books()))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorage_RejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(ctx, 3))
	require.Error(t, s.Upsert(ctx, []domain.IndexEntry{{ID: "", Embedding: []float64{1, 2, 3}}}))
	require.Error(t, s.Upsert(ctx, []domain.IndexEntry{{ID: "x", Embedding: []float64{1}}}))
}

func TestVectorCodec(t *testing.T) {
	v := []float64{0.25, -1.5, 3e-9}
	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = decodeVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
