package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"candidate-search/internal/domain"
	"candidate-search/internal/identity"
	"candidate-search/internal/llm"
)

const professionExcerptLimit = 2000

const professionPrompt = `Extract the candidate's current profession or job title from this CV excerpt.
Return ONLY the job title/profession, nothing else. If unclear, return "Not Specified".

Examples of good responses:
- Software Engineer
- Senior Product Manager
- Data Scientist
- Full Stack Developer
- UX Designer

CV excerpt:
%s

Profession:`

// Pipeline turns raw CV files into an anonymized, embedded chunk
// collection. It is the write side of the system; the query binary never
// runs it.
type Pipeline struct {
	chunker            domain.Chunker
	embedder           domain.Embedder
	store              domain.VectorStore
	assigner           *identity.Assigner
	generator          domain.Generator
	extractProfessions bool
}

// Config configures the ingest pipeline.
type Config struct {
	// ExtractProfessions enables per-document LLM profession extraction.
	// Requires a Generator; extraction failures degrade to "Not Specified".
	ExtractProfessions bool
}

// Summary reports what an ingest run produced.
type Summary struct {
	Documents  int
	Chunks     int
	Candidates int
}

func NewPipeline(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, assigner *identity.Assigner, generator domain.Generator, cfg Config) *Pipeline {
	return &Pipeline{
		chunker:            chunker,
		embedder:           embedder,
		store:              store,
		assigner:           assigner,
		generator:          generator,
		extractProfessions: cfg.ExtractProfessions && generator != nil,
	}
}

// Run loads the given paths (files, globs, or directories), chunks and
// anonymizes them, then rebuilds the vector collection. The collection is
// cleared only after every chunk has been embedded, so a failed run never
// leaves a half-empty index behind.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Summary, error) {
	documents, err := loadDocuments(paths)
	if err != nil {
		return Summary{}, err
	}
	log.Info().Int("documents", len(documents)).Msg("loaded documents")

	var chunks []domain.Chunk
	var texts []string
	for _, doc := range documents {
		cs, err := p.chunker.Chunk(doc)
		if err != nil {
			return Summary{}, fmt.Errorf("chunk %s: %w", doc.Path, err)
		}
		chunks = append(chunks, cs...)
	}
	for _, ch := range chunks {
		texts = append(texts, ch.Text)
	}
	log.Info().Int("chunks", len(chunks)).Msg("created chunks")

	identities := p.assigner.Assign(documents, chunks)
	p.stampProfessions(ctx, documents, chunks)

	if err := p.embedder.Prepare(texts); err != nil {
		return Summary{}, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := p.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return Summary{}, fmt.Errorf("embed chunk %s: %w", chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}

	if err := p.store.Clear(ctx); err != nil {
		return Summary{}, fmt.Errorf("clear store: %w", err)
	}
	if err := p.store.Init(ctx, p.embedder.Dimension()); err != nil {
		return Summary{}, fmt.Errorf("init store: %w", err)
	}
	if err := p.store.Upsert(ctx, chunks, vectors); err != nil {
		return Summary{}, fmt.Errorf("upsert chunks: %w", err)
	}

	unique := make(map[int]struct{}, len(identities))
	for _, ident := range identities {
		unique[ident.ID] = struct{}{}
	}
	return Summary{Documents: len(documents), Chunks: len(chunks), Candidates: len(unique)}, nil
}

// stampProfessions fills Meta.Profession on every chunk. Extraction runs
// once per document and degrades to "Not Specified" rather than failing
// the ingest.
func (p *Pipeline) stampProfessions(ctx context.Context, documents []domain.Document, chunks []domain.Chunk) {
	professions := make(map[string]string, len(documents))
	for _, doc := range documents {
		professions[doc.ID] = p.extractProfession(ctx, doc)
	}
	for i := range chunks {
		prof, ok := professions[chunks[i].DocumentID]
		if !ok {
			prof = domain.ProfessionUnknown
		}
		chunks[i].Meta.Profession = prof
	}
}

func (p *Pipeline) extractProfession(ctx context.Context, doc domain.Document) string {
	if !p.extractProfessions {
		return domain.ProfessionUnknown
	}
	excerpt := doc.Content
	if len(excerpt) > professionExcerptLimit {
		excerpt = excerpt[:professionExcerptLimit]
	}
	answer, err := llm.Complete(ctx, p.generator, fmt.Sprintf(professionPrompt, excerpt), domain.GenOptions{MaxTokens: 50})
	if err != nil {
		log.Warn().Err(err).Str("file", filepath.Base(doc.Path)).Msg("profession extraction failed")
		return domain.ProfessionUnknown
	}
	answer = strings.TrimSpace(answer)
	if answer == "" || len(answer) > 100 {
		return domain.ProfessionUnknown
	}
	return answer
}

// loadDocuments expands each path as a directory, a glob, or a plain file
// and reads every .txt and .md document found. Each document gets a fresh
// uuid so re-ingesting a file never aliases a previous run.
func loadDocuments(paths []string) ([]domain.Document, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isDocument(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", p, err)
			}
			continue
		}
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if isDocument(m) {
				files = append(files, m)
			}
		}
	}

	documents := make([]domain.Document, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		documents = append(documents, domain.Document{
			ID:      uuid.NewString(),
			Path:    f,
			Content: string(data),
		})
	}
	if len(documents) == 0 {
		return nil, &domain.ValidationError{Msg: "no .txt or .md documents found"}
	}
	return documents, nil
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}
