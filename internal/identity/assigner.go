package identity

import (
	"math/rand"
	"path/filepath"

	"github.com/phuslu/log"

	"candidate-search/internal/domain"
)

// Assigner binds each source document to a stable anonymized identity and
// stamps that identity onto every chunk derived from the document.
//
// Identity is assigned once per unique source file, so re-chunking the
// same file within one run keeps one candidate. Numeric ids are random
// within [IDMin, IDMax) and deliberately not checked for collisions: at
// the corpus sizes this service targets the probability is negligible,
// and the original behavior is preserved as a documented weakness.
type Assigner struct {
	idMin int
	idMax int
	rng   *rand.Rand
	pool  []string
}

// Config configures identity assignment. Seed is for deterministic tests;
// zero seeds from the global source.
type Config struct {
	IDMin int
	IDMax int
	Seed  int64
}

func NewAssigner(cfg Config) *Assigner {
	if cfg.IDMin <= 0 {
		cfg.IDMin = 1000
	}
	if cfg.IDMax <= cfg.IDMin {
		cfg.IDMax = 9999
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	pool := make([]string, len(famousNames))
	copy(pool, famousNames)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return &Assigner{idMin: cfg.IDMin, idMax: cfg.IDMax, rng: rng, pool: pool}
}

// Assign maps every document to an identity, then mutates the chunks in
// place so each carries its parent document's identity and source file.
// Chunks whose parent document is unknown get the sentinel identity.
// Assignment covers all documents before returning, so callers can only
// persist fully identified chunk sets.
func (a *Assigner) Assign(documents []domain.Document, chunks []domain.Chunk) map[string]domain.Identity {
	byFile := make(map[string]domain.Identity)
	byDoc := make(map[string]domain.Identity, len(documents))
	sourceFiles := make(map[string]string, len(documents))

	for _, doc := range documents {
		file := doc.Path
		if file == "" {
			file = doc.ID
		}
		ident, ok := byFile[file]
		if !ok {
			ident = domain.Identity{
				ID:   a.idMin + a.rng.Intn(a.idMax-a.idMin),
				Name: a.nextName(len(byFile)),
			}
			byFile[file] = ident
			log.Info().
				Str("name", ident.Name).
				Int("candidate_id", ident.ID).
				Str("file", filepath.Base(file)).
				Msg("assigned candidate identity")
		}
		byDoc[doc.ID] = ident
		sourceFiles[doc.ID] = filepath.Base(file)
	}

	for i := range chunks {
		ident, ok := byDoc[chunks[i].DocumentID]
		if !ok {
			chunks[i].Meta.CandidateID = domain.SentinelID
			chunks[i].Meta.CandidateName = domain.SentinelName
			continue
		}
		chunks[i].Meta.CandidateID = ident.ID
		chunks[i].Meta.CandidateName = ident.Name
		chunks[i].Meta.SourceFile = sourceFiles[chunks[i].DocumentID]
	}
	return byDoc
}

// nextName draws from the shuffled pool without replacement, cycling when
// there are more documents than names. Repetition is legitimate and
// observable, not an error.
func (a *Assigner) nextName(assigned int) string {
	if assigned >= len(a.pool) && assigned%len(a.pool) == 0 {
		log.Warn().
			Int("documents", assigned+1).
			Int("pool", len(a.pool)).
			Msg("name pool exhausted, reusing names")
	}
	return a.pool[assigned%len(a.pool)]
}
