package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists chunks with their embeddings and supports
// similarity search plus exact-match metadata lookups. Metadata is
// preserved verbatim on chunks; scores are floats, higher = more similar.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	// Scan returns every stored chunk in the store's natural order.
	Scan(ctx context.Context) ([]Chunk, error)
	// FilterByName returns all chunks whose metadata matches the candidate
	// name, compared exactly but case-insensitively, in the store's
	// natural order.
	FilterByName(ctx context.Context, candidateName string) ([]Chunk, error)
	Clear(ctx context.Context) error
}

// Message is one turn of a generation conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenOptions bound a single generation call.
type GenOptions struct {
	MaxTokens   int
	Temperature float64
}

// Fragment is one unit of a streamed generation. A closed channel with no
// Err fragment means the stream finished normally.
type Fragment struct {
	Delta string
	Err   error
}

// Generator is the text-generation collaborator. Both operations must be
// time-boxed and honor ctx cancellation.
type Generator interface {
	Chat(ctx context.Context, messages []Message, opts GenOptions) (string, error)
	StreamChat(ctx context.Context, messages []Message, opts GenOptions) (<-chan Fragment, error)
}

// Summarizer produces a brief summary of the provided text without
// calling out to a generation backend.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
