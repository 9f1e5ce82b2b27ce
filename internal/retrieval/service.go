package retrieval

import (
	"context"
	"fmt"
	"strings"

	"candidate-search/internal/domain"
)

// DefaultTopK applies when a caller passes a non-positive k.
const DefaultTopK = 10

// Service runs semantic top-k retrieval over the chunk store.
type Service struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

func NewService(embedder domain.Embedder, store domain.VectorStore) *Service {
	return &Service{embedder: embedder, store: store}
}

// Search embeds the query and returns the top-k matching chunks. Fewer
// matches than k is not an error, and neither is an empty result.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.store.Search(ctx, vec, topK)
}

// FormatResults renders results for an LLM observation or terminal output.
func FormatResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No candidates found matching your query."
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf(
			"Result %d:\nCandidate: %s\nID: %s\nFile: %s\nRelevance Score: %.4f\nContent:\n%s\n%s",
			i+1,
			r.Chunk.Meta.DisplayName(),
			r.Chunk.Meta.DisplayID(),
			sourceFile(r.Chunk.Meta),
			r.Score,
			r.Chunk.Text,
			strings.Repeat("-", 60),
		))
	}
	return strings.Join(blocks, "\n\n")
}

func sourceFile(m domain.Metadata) string {
	if m.SourceFile == "" {
		return "unknown"
	}
	return m.SourceFile
}
