package candidates

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"candidate-search/internal/domain"
)

// Aggregator derives candidate-level views from chunk metadata. There is
// no candidate table; every call is a full scan over the store, grouped
// by candidate id.
type Aggregator struct {
	store domain.VectorStore
}

func NewAggregator(store domain.VectorStore) *Aggregator {
	return &Aggregator{store: store}
}

// List returns one roster entry per candidate id, sorted by name. When a
// candidate spans several source files the first file seen in scan order
// wins.
func (a *Aggregator) List(ctx context.Context) ([]domain.RosterEntry, error) {
	chunks, err := a.store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]domain.RosterEntry)
	for _, ch := range chunks {
		if _, ok := seen[ch.Meta.CandidateID]; ok {
			continue
		}
		seen[ch.Meta.CandidateID] = domain.RosterEntry{
			Identity:   domain.Identity{ID: ch.Meta.CandidateID, Name: ch.Meta.DisplayName()},
			SourceFile: ch.Meta.SourceFile,
			Profession: ch.Meta.Profession,
		}
	}
	entries := make([]domain.RosterEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Get assembles the full record for one candidate id. FullText joins the
// candidate's chunks in store scan order; overlapping chunk boundaries
// mean sentences can repeat in the joined text.
func (a *Aggregator) Get(ctx context.Context, candidateID int) (domain.CandidateRecord, error) {
	chunks, err := a.store.Scan(ctx)
	if err != nil {
		return domain.CandidateRecord{}, err
	}
	var record domain.CandidateRecord
	found := false
	for _, ch := range chunks {
		if ch.Meta.CandidateID != candidateID {
			continue
		}
		if !found {
			found = true
			record.Identity = domain.Identity{ID: ch.Meta.CandidateID, Name: ch.Meta.DisplayName()}
			record.SourceFile = ch.Meta.SourceFile
			record.Profession = ch.Meta.Profession
		}
		record.Chunks = append(record.Chunks, ch.Text)
	}
	if !found {
		return domain.CandidateRecord{}, &domain.NotFoundError{Kind: "candidate", Name: strconv.Itoa(candidateID)}
	}
	record.ChunkCount = len(record.Chunks)
	record.FullText = strings.Join(record.Chunks, "\n\n")
	return record, nil
}

// GetByName assembles the record for an exact (case-insensitive) candidate
// name match. Names repeat once the anonymization pool is exhausted, so a
// name shared by several candidate ids is reported as ambiguous rather
// than silently merged.
func (a *Aggregator) GetByName(ctx context.Context, name string) (domain.CandidateRecord, error) {
	chunks, err := a.store.FilterByName(ctx, name)
	if err != nil {
		return domain.CandidateRecord{}, err
	}
	if len(chunks) == 0 {
		return domain.CandidateRecord{}, &domain.NotFoundError{Kind: "candidate", Name: name}
	}
	ids := make(map[int]string)
	for _, ch := range chunks {
		ids[ch.Meta.CandidateID] = ch.Meta.SourceFile
	}
	if len(ids) > 1 {
		options := make([]string, 0, len(ids))
		for id, file := range ids {
			options = append(options, fmt.Sprintf("%d (%s)", id, file))
		}
		sort.Strings(options)
		return domain.CandidateRecord{}, &domain.AmbiguousError{Topic: name, Options: options}
	}
	record := domain.CandidateRecord{
		Identity:   domain.Identity{ID: chunks[0].Meta.CandidateID, Name: chunks[0].Meta.DisplayName()},
		SourceFile: chunks[0].Meta.SourceFile,
		Profession: chunks[0].Meta.Profession,
	}
	for _, ch := range chunks {
		record.Chunks = append(record.Chunks, ch.Text)
	}
	record.ChunkCount = len(record.Chunks)
	record.FullText = strings.Join(record.Chunks, "\n\n")
	return record, nil
}
