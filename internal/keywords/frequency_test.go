package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTop_RanksByFrequency(t *testing.T) {
	text := "Magia este peste tot. Magia si curajul. Prietenii adevarati si curajul lor, magia."
	got := NewExtractor().Top(text, 2)
	assert.Equal(t, []string{"magia", "curajul"}, got)
}

func TestTop_FiltersStopwordsAndShortWords(t *testing.T) {
	got := NewExtractor().Top("Romanul descrie o lume și un război.", 5)
	assert.Equal(t, []string{"lume", "război"}, got)
}

func TestTop_StopwordsMatchWithoutDiacritics(t *testing.T) {
	got := NewExtractor().Top("Călătoria către comoară, după furtună.", 5)
	assert.Equal(t, []string{"călătoria", "comoară", "furtună"}, got)
}

func TestTop_Bounds(t *testing.T) {
	e := NewExtractor()
	assert.Nil(t, e.Top("orice text aici", 0))
	assert.Empty(t, e.Top("", 3))
	assert.Len(t, e.Top("alpha beta gamma", 10), 3)
}
