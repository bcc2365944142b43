// Package vectorstore holds helpers shared by the vector store backends.
package vectorstore

import (
	"math"
	"sort"

	"librarian/internal/domain"
)

// Storage persists vectors and supports similarity search.
type Storage = domain.VectorStore

// CosineDistance returns 1 - cos(a, b). Mismatched or zero vectors are maximally distant.
func CosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Nearest scores every entry against vector and returns the topK closest, ascending.
// Ties keep entry order.
func Nearest(entries []domain.IndexEntry, vector []float64, topK int) []domain.Hit {
	if topK <= 0 {
		topK = 5
	}
	hits := make([]domain.Hit, len(entries))
	for i, e := range entries {
		hits[i] = domain.Hit{Entry: e, Distance: CosineDistance(e.Embedding, vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}
