package chunker

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
)

func TestChunk_SplitsWithOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	doc := domain.Document{
		ID:      "doc1",
		Content: "First sentence. Second sentence. Third sentence. Fourth sentence.",
	}

	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "First sentence. Second sentence.", chunks[0].Text)
	assert.Equal(t, "Second sentence. Third sentence.", chunks[1].Text)
	assert.Equal(t, "Third sentence. Fourth sentence.", chunks[2].Text)
}

func TestChunk_AllChunksReferenceParentDocument(t *testing.T) {
	c := NewSentenceChunker(3, 1)
	doc := domain.Document{ID: "resume-1", Content: strings.Repeat("A sentence here. ", 20)}

	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, "resume-1", ch.DocumentID)
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, "resume-1:"+strconv.Itoa(i), ch.ChunkID)
	}
}

func TestChunk_NoSentencePunctuation(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	doc := domain.Document{ID: "d", Content: "just a fragment without terminal punctuation"}

	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a fragment without terminal punctuation", chunks[0].Text)
}

func TestChunk_EmptyDocument(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "   \n  "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
