package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerptPicksOverlappingSentence(t *testing.T) {
	e := NewExcerpter(3)
	content := "Intro text here. Qdrant stores vectors. Embeddings come from the model. Unrelated footer."

	got := e.Excerpt(content, "Where are vectors stored in Qdrant?")

	assert.True(t, got.Matched)
	assert.Equal(t, "Intro text here.", got.Before)
	assert.Equal(t, "Qdrant stores vectors.", got.Best)
	assert.Equal(t, "Embeddings come from the model.", got.After)
}

func TestExcerptFallsBackToFrequency(t *testing.T) {
	e := NewExcerpter(1)
	content := "Hello there. Retrieval retrieval augments generation with retrieval. Bye."

	got := e.Excerpt(content, "what is it")

	assert.False(t, got.Matched)
	assert.Equal(t, "Retrieval retrieval augments generation with retrieval.", got.Best)
	assert.Empty(t, got.Before)
	assert.Empty(t, got.After)
}

func TestExcerptEmpty(t *testing.T) {
	assert.Equal(t, Excerpt{}, NewExcerpter(0).Excerpt("  ", "q"))
}

func TestExcerptSingleFragment(t *testing.T) {
	got := NewExcerpter(3).Excerpt("page 4 of the manual", "manual")
	assert.True(t, got.Matched)
	assert.Equal(t, "page 4 of the manual", got.Best)
}
