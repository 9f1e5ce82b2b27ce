package identity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
)

func docWithChunks(docID, path string, n int) (domain.Document, []domain.Chunk) {
	doc := domain.Document{ID: docID, Path: path, Content: "irrelevant"}
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{DocumentID: docID, ChunkID: fmt.Sprintf("%s:%d", docID, i), Index: i}
	}
	return doc, chunks
}

func TestAssign_SameIdentityAcrossAllChunksOfDocument(t *testing.T) {
	a := NewAssigner(Config{Seed: 42})
	doc1, chunks1 := docWithChunks("d1", "cv_one.txt", 4)
	doc2, chunks2 := docWithChunks("d2", "cv_two.txt", 3)
	all := append(chunks1, chunks2...)

	idents := a.Assign([]domain.Document{doc1, doc2}, all)
	require.Len(t, idents, 2)
	assert.NotEqual(t, idents["d1"].Name, idents["d2"].Name)

	for _, ch := range all[:4] {
		assert.Equal(t, idents["d1"].ID, ch.Meta.CandidateID)
		assert.Equal(t, idents["d1"].Name, ch.Meta.CandidateName)
		assert.Equal(t, "cv_one.txt", ch.Meta.SourceFile)
	}
	for _, ch := range all[4:] {
		assert.Equal(t, idents["d2"].ID, ch.Meta.CandidateID)
		assert.Equal(t, idents["d2"].Name, ch.Meta.CandidateName)
	}
}

func TestAssign_IDsWithinConfiguredRange(t *testing.T) {
	a := NewAssigner(Config{IDMin: 1000, IDMax: 9999, Seed: 7})
	var docs []domain.Document
	var chunks []domain.Chunk
	for i := 0; i < 50; i++ {
		d, c := docWithChunks(fmt.Sprintf("d%d", i), fmt.Sprintf("cv%d.txt", i), 1)
		docs = append(docs, d)
		chunks = append(chunks, c...)
	}
	idents := a.Assign(docs, chunks)
	for _, ident := range idents {
		assert.GreaterOrEqual(t, ident.ID, 1000)
		assert.Less(t, ident.ID, 9999)
	}
}

func TestAssign_SameFileSharesIdentity(t *testing.T) {
	a := NewAssigner(Config{Seed: 1})
	// two documents loaded from the same source file
	doc1, chunks1 := docWithChunks("d1", "shared.txt", 1)
	doc2, chunks2 := docWithChunks("d2", "shared.txt", 1)

	idents := a.Assign([]domain.Document{doc1, doc2}, append(chunks1, chunks2...))
	assert.Equal(t, idents["d1"], idents["d2"])
}

func TestAssign_OrphanChunkGetsSentinel(t *testing.T) {
	a := NewAssigner(Config{Seed: 3})
	doc, chunks := docWithChunks("d1", "cv.txt", 1)
	orphan := domain.Chunk{DocumentID: "missing", ChunkID: "missing:0"}
	all := append(chunks, orphan)

	a.Assign([]domain.Document{doc}, all)
	assert.Equal(t, domain.SentinelID, all[1].Meta.CandidateID)
	assert.Equal(t, domain.SentinelName, all[1].Meta.CandidateName)
}

func TestAssign_PoolExhaustionCyclesNames(t *testing.T) {
	a := NewAssigner(Config{Seed: 9})
	n := PoolSize() + 5
	var docs []domain.Document
	var chunks []domain.Chunk
	for i := 0; i < n; i++ {
		d, c := docWithChunks(fmt.Sprintf("d%d", i), fmt.Sprintf("cv%d.txt", i), 1)
		docs = append(docs, d)
		chunks = append(chunks, c...)
	}
	idents := a.Assign(docs, chunks)
	require.Len(t, idents, n)

	names := make(map[string]int)
	for _, ident := range idents {
		names[ident.Name]++
	}
	// the cycle reuses the first names of the shuffled pool
	assert.LessOrEqual(t, len(names), PoolSize())
	repeated := 0
	for _, count := range names {
		if count > 1 {
			repeated++
		}
	}
	assert.Equal(t, 5, repeated)
}
