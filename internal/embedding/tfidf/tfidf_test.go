package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Harry descoperă că este vrăjitor și merge la Hogwarts. Magie, loialitate și curaj.",
	"Urmărim experiențele unui soldat german în Primul Război Mondial.",
	"Bilbo Baggins pornește într-o aventură cu dragonul Smaug.",
}

func TestEmbed_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "magie")
	require.Error(t, err)
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	require.Error(t, NewEmbedder().Prepare(nil))
	require.Error(t, NewEmbedder().Prepare([]string{"the and of"}))
}

func TestEmbed_NormalizedAndDeterministic(t *testing.T) {
	a, b := NewEmbedder(), NewEmbedder()
	require.NoError(t, a.Prepare(corpus))
	require.NoError(t, b.Prepare(corpus))
	assert.Equal(t, a.Dimension(), b.Dimension())

	va, err := a.Embed(context.Background(), "o poveste cu magie si vrajitori")
	require.NoError(t, err)
	vb, err := b.Embed(context.Background(), "o poveste cu magie si vrajitori")
	require.NoError(t, err)
	assert.Equal(t, va, vb)

	norm := 0.0
	for _, v := range va {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestEmbed_DiacriticsFolded(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	withMarks, err := e.Embed(context.Background(), "război")
	require.NoError(t, err)
	without, err := e.Embed(context.Background(), "razboi")
	require.NoError(t, err)
	assert.Equal(t, withMarks, without)
}

func TestEmbed_UnknownTermsZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	v, err := e.Embed(context.Background(), "xyzzy")
	require.NoError(t, err)
	require.Len(t, v, e.Dimension())
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbed_CancelledContext(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, "magie")
	require.ErrorIs(t, err, context.Canceled)
}

func TestName(t *testing.T) {
	assert.Equal(t, "tfidf", NewEmbedder().Name())
}
