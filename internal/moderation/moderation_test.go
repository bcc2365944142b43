package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordList_IsClean(t *testing.T) {
	gate := NewWordList()
	tests := []struct {
		text  string
		clean bool
	}{
		{"Vreau o carte despre prietenie si magie", true},
		{"What should I read about war?", true},
		{"Shitake mushrooms cookbook", true},
		{"recomanda-mi ceva, fuck", false},
		{"this is SHIT", false},
		{"sh1t", false},
		{"f*ck off", true},
		{"f*uck off", false},
		{"o carte de căcat", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.clean, gate.IsClean(tt.text), tt.text)
	}
}

func TestWordList_ExtraWords(t *testing.T) {
	gate := NewWordList("  Plictisitor ", "")
	assert.False(t, gate.IsClean("un roman plictisitor"))
	assert.True(t, NewWordList().IsClean("un roman plictisitor"))
}

func TestAllowAll(t *testing.T) {
	assert.True(t, AllowAll{}.IsClean("fuck"))
}
