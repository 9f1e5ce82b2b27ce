package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
	"candidate-search/internal/embedding/tfidf"
	"candidate-search/internal/vectorstore/memory"
)

func newCorpus(t *testing.T, texts []string, metas []domain.Metadata) *Service {
	t.Helper()
	embedder := tfidf.NewEmbedder()
	require.NoError(t, embedder.Prepare(texts))

	store := memory.NewStorage()
	require.NoError(t, store.Init(context.Background(), embedder.Dimension()))

	chunks := make([]domain.Chunk, len(texts))
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ChunkID: text, Text: text, Meta: metas[i]}
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		vectors[i] = vec
	}
	require.NoError(t, store.Upsert(context.Background(), chunks, vectors))
	return NewService(embedder, store)
}

func TestSearch_RanksRelevantChunkFirst(t *testing.T) {
	svc := newCorpus(t,
		[]string{
			"golang backend developer with kubernetes experience",
			"watercolor painter and gallery curator",
		},
		[]domain.Metadata{
			{CandidateID: 1101, CandidateName: "Ada Lovelace", SourceFile: "cv_a.txt"},
			{CandidateID: 2201, CandidateName: "Claude Monet", SourceFile: "cv_b.txt"},
		})

	results, err := svc.Search(context.Background(), "golang developer", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Ada Lovelace", results[0].Chunk.Meta.CandidateName)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_DefaultTopKAndFewerMatches(t *testing.T) {
	svc := newCorpus(t,
		[]string{"single document about gardening"},
		[]domain.Metadata{{CandidateID: 1101, CandidateName: "Ada Lovelace"}})

	results, err := svc.Search(context.Background(), "gardening", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFormatResults_RendersMetadataAndRule(t *testing.T) {
	out := FormatResults([]domain.SearchResult{
		{
			Chunk: domain.Chunk{
				Text: "Built billing pipelines.",
				Meta: domain.Metadata{CandidateID: 1101, CandidateName: "Ada Lovelace", SourceFile: "cv_a.txt"},
			},
			Score: 0.8234,
		},
	})

	assert.Contains(t, out, "Result 1:")
	assert.Contains(t, out, "Candidate: Ada Lovelace")
	assert.Contains(t, out, "ID: 1101")
	assert.Contains(t, out, "File: cv_a.txt")
	assert.Contains(t, out, "Relevance Score: 0.8234")
	assert.Contains(t, out, strings.Repeat("-", 60))
}

func TestFormatResults_EmptyAndMissingIdentity(t *testing.T) {
	assert.Equal(t, "No candidates found matching your query.", FormatResults(nil))

	out := FormatResults([]domain.SearchResult{
		{Chunk: domain.Chunk{Text: "orphan text"}},
	})
	assert.Contains(t, out, "Candidate: Unknown")
	assert.Contains(t, out, "ID: N/A")
	assert.Contains(t, out, "File: unknown")
}
