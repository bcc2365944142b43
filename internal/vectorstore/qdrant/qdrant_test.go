package qdrant

import (
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarian/internal/domain"
)

func TestPointID_StableAndDistinct(t *testing.T) {
	assert.Equal(t, pointID("book_1"), pointID("book_1"))
	assert.NotEqual(t, pointID("book_1"), pointID("book_2"))
}

func TestToPoint_CarriesPayload(t *testing.T) {
	p := toPoint(domain.IndexEntry{
		ID:        "book_3",
		Embedding: []float64{0.5, 0.25},
		Metadata:  domain.EntryMetadata{Title: "The Little Prince"},
		Document:  "Un pilot se prabuseste in desert.",
	})
	assert.Equal(t, pointID("book_3"), p.GetId().GetNum())
	assert.Equal(t, []float32{0.5, 0.25}, p.GetVectors().GetVector().GetData())
	assert.Equal(t, "The Little Prince", p.GetPayload()[payloadTitle].GetStringValue())
	assert.Equal(t, "book_3", p.GetPayload()[payloadID].GetStringValue())
}

func TestFromScored_ScoreToDistance(t *testing.T) {
	pt := &pb.ScoredPoint{
		Score: 0.75,
		Payload: map[string]*pb.Value{
			payloadID:       {Kind: &pb.Value_StringValue{StringValue: "book_1"}},
			payloadTitle:    {Kind: &pb.Value_StringValue{StringValue: "1984"}},
			payloadDocument: {Kind: &pb.Value_StringValue{StringValue: "Winston Smith"}},
		},
	}
	hit := fromScored(pt)
	assert.Equal(t, "1984", hit.Entry.Metadata.Title)
	assert.Equal(t, "book_1", hit.Entry.ID)
	assert.InDelta(t, 0.25, hit.Distance, 1e-6)
	assert.Nil(t, hit.Entry.Embedding)
}

func TestNewStorage_RequiresCollection(t *testing.T) {
	_, err := NewStorage(Config{})
	require.Error(t, err)
}

func TestNewStorage_DefaultsAreLazy(t *testing.T) {
	s, err := NewStorage(Config{Collection: "books", APIKey: "secret"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "books", s.collection)
}
