package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"candidate-search/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and recreates the collection on Init.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if the collection exists with the same schema
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		// Qdrant accepts only UUIDs or unsigned ints as point ids, so the
		// chunk id is mapped to a deterministic UUID.
		points[i] = map[string]any{
			"id":      uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunks[i].ChunkID)).String(),
			"vector":  vectors[i],
			"payload": chunkPayload(chunks[i]),
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: chunkFromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

// Scan pages through the whole collection with the scroll API, preserving
// Qdrant's natural point order.
func (s *Storage) Scan(ctx context.Context) ([]domain.Chunk, error) {
	return s.scroll(ctx)
}

// FilterByName returns all chunks for the candidate name, matched exactly
// but case-insensitively. Qdrant keyword filters are case-sensitive, so the
// match happens client-side over a full scroll instead of a server filter.
func (s *Storage) FilterByName(ctx context.Context, candidateName string) ([]domain.Chunk, error) {
	chunks, err := s.scroll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Chunk
	for _, ch := range chunks {
		if strings.EqualFold(ch.Meta.CandidateName, candidateName) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (s *Storage) scroll(ctx context.Context) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": true,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			chunks = append(chunks, chunkFromPayload(p.Payload))
		}
		if resp.Result.NextPageOffset == nil {
			return chunks, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func (s *Storage) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE collection failed: %s", resp.Status)
	}
	return nil
}

func chunkPayload(ch domain.Chunk) map[string]any {
	return map[string]any{
		"document_id":    ch.DocumentID,
		"chunk_id":       ch.ChunkID,
		"index":          ch.Index,
		"text":           ch.Text,
		"candidate_id":   ch.Meta.CandidateID,
		"candidate_name": ch.Meta.CandidateName,
		"source_file":    ch.Meta.SourceFile,
		"profession":     ch.Meta.Profession,
	}
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := payload["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := payload["chunk_id"].(string); ok {
		chunk.ChunkID = v
	}
	if v, ok := payload["index"].(float64); ok {
		chunk.Index = int(v)
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	if v, ok := payload["candidate_id"].(float64); ok {
		chunk.Meta.CandidateID = int(v)
	}
	if v, ok := payload["candidate_name"].(string); ok {
		chunk.Meta.CandidateName = v
	}
	if v, ok := payload["source_file"].(string); ok {
		chunk.Meta.SourceFile = v
	}
	if v, ok := payload["profession"].(string); ok {
		chunk.Meta.Profession = v
	}
	return chunk
}

func (s *Storage) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		dec := json.NewDecoder(resp.Body)
		return dec.Decode(out)
	}
	return nil
}
