package candidates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
	"candidate-search/internal/vectorstore/memory"
)

func seedStore(t *testing.T, chunks []domain.Chunk) *memory.Storage {
	t.Helper()
	store := memory.NewStorage()
	require.NoError(t, store.Init(context.Background(), 2))
	vectors := make([][]float64, len(chunks))
	for i := range vectors {
		vectors[i] = []float64{1, 0}
	}
	require.NoError(t, store.Upsert(context.Background(), chunks, vectors))
	return store
}

func chunkFor(id int, name, file, text string) domain.Chunk {
	return domain.Chunk{
		ChunkID: text,
		Text:    text,
		Meta:    domain.Metadata{CandidateID: id, CandidateName: name, SourceFile: file},
	}
}

func TestList_OneEntryPerCandidateSortedByName(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(2201, "Nikola Tesla", "cv_b.txt", "t1"),
		chunkFor(1101, "Ada Lovelace", "cv_a.txt", "a1"),
		chunkFor(2201, "Nikola Tesla", "cv_b.txt", "t2"),
	})

	entries, err := NewAggregator(store).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada Lovelace", entries[0].Name)
	assert.Equal(t, "Nikola Tesla", entries[1].Name)
	assert.Equal(t, 1101, entries[0].ID)
}

func TestList_FirstSeenSourceFileWins(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(1101, "Ada Lovelace", "first.txt", "a1"),
		chunkFor(1101, "Ada Lovelace", "second.txt", "a2"),
	})

	entries, err := NewAggregator(store).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first.txt", entries[0].SourceFile)
}

func TestGet_JoinsChunksInScanOrder(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(1101, "Ada Lovelace", "cv.txt", "alpha"),
		chunkFor(2201, "Nikola Tesla", "cv_b.txt", "other"),
		chunkFor(1101, "Ada Lovelace", "cv.txt", "beta"),
		chunkFor(1101, "Ada Lovelace", "cv.txt", "gamma"),
	})

	record, err := NewAggregator(store).Get(context.Background(), 1101)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", record.Name)
	assert.Equal(t, 3, record.ChunkCount)
	assert.Equal(t, "alpha\n\nbeta\n\ngamma", record.FullText)
}

func TestGet_UnknownIDIsNotFound(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(1101, "Ada Lovelace", "cv.txt", "alpha"),
	})

	_, err := NewAggregator(store).Get(context.Background(), 4242)
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "4242", nferr.Name)
}

func TestGetByName_SharedNameIsAmbiguous(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(1101, "Ada Lovelace", "cv_a.txt", "alpha"),
		chunkFor(2201, "Ada Lovelace", "cv_b.txt", "beta"),
	})

	_, err := NewAggregator(store).GetByName(context.Background(), "Ada Lovelace")
	require.True(t, domain.IsAmbiguous(err))
	var amberr *domain.AmbiguousError
	require.ErrorAs(t, err, &amberr)
	assert.Equal(t, "Ada Lovelace", amberr.Topic)
	assert.Equal(t, []string{"1101 (cv_a.txt)", "2201 (cv_b.txt)"}, amberr.Options)
}

func TestGetByName_CaseInsensitiveExactMatch(t *testing.T) {
	store := seedStore(t, []domain.Chunk{
		chunkFor(1101, "Ada Lovelace", "cv.txt", "alpha"),
	})

	agg := NewAggregator(store)
	record, err := agg.GetByName(context.Background(), "ada lovelace")
	require.NoError(t, err)
	assert.Equal(t, 1101, record.ID)

	_, err = agg.GetByName(context.Background(), "Ada")
	assert.True(t, domain.IsNotFound(err))
}
