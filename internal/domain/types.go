package domain

import "strconv"

// Document represents a single source file loaded at ingest time.
// Documents are not retained after chunking; only derived chunks persist.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Metadata is the typed chunk metadata carried through the vector store.
// Identity fields are assigned per document and copied to every chunk
// derived from it.
type Metadata struct {
	CandidateID   int    `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	SourceFile    string `json:"source_file"`
	Profession    string `json:"profession,omitempty"`
}

// Chunk is a contiguous text span derived from exactly one document.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Index      int
	Text       string
	Meta       Metadata
}

// Identity is the anonymized candidate identity attached to chunks.
type Identity struct {
	ID   int    `json:"candidate_id"`
	Name string `json:"candidate_name"`
}

// Sentinel identity for chunks whose parent document cannot be resolved.
const (
	SentinelID   = 0
	SentinelName = "Unknown"
)

// ProfessionUnknown marks documents where no profession was extracted.
const ProfessionUnknown = "Not Specified"

// DisplayID renders a candidate id, falling back to "N/A" for chunks that
// predate identity assignment.
func (m Metadata) DisplayID() string {
	if m.CandidateID == SentinelID && m.CandidateName == "" {
		return "N/A"
	}
	return strconv.Itoa(m.CandidateID)
}

// DisplayName renders a candidate name with an explicit fallback.
func (m Metadata) DisplayName() string {
	if m.CandidateName == "" {
		return SentinelName
	}
	return m.CandidateName
}

// SearchResult is a matching chunk with a relevance score. Lifetime is a
// single query.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// CandidateRecord is the aggregated view over all chunks sharing one
// candidate id. Computed on demand, never persisted.
type CandidateRecord struct {
	Identity
	SourceFile string   `json:"source_file"`
	Profession string   `json:"profession,omitempty"`
	ChunkCount int      `json:"chunk_count"`
	FullText   string   `json:"-"`
	Chunks     []string `json:"-"`
}

// RosterEntry is one row of the candidate roster.
type RosterEntry struct {
	Identity
	SourceFile string `json:"source_file"`
	Profession string `json:"profession,omitempty"`
}
