package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"candidate-search/internal/agent"
	"candidate-search/internal/candidates"
	"candidate-search/internal/domain"
	"candidate-search/internal/llm"
)

const summaryPrompt = `Based on the following CV information, create a well-structured professional summary.

CV Content:
%s

Please provide a comprehensive summary with the following sections:
1. **Current Position**: Current or most recent job title and company
2. **Professional Summary**: A brief 2-3 sentence overview of their career
3. **Years of Experience**: Calculate total years of professional experience based on employment dates
4. **Key Skills**: List all technical skills, tools, frameworks, and technologies (organized by category if applicable)
5. **Work Experience**: Summarize each position with company name, role, dates, and key responsibilities/achievements
6. **Education**: Degrees, institutions, and graduation years
7. **Certifications**: Any professional certifications or additional training
8. **Notable Achievements**: Key accomplishments or projects worth highlighting

Format the response in a clear, professional manner using markdown. Be concise but thorough.
If any information is not available in the CV, indicate "Not specified" for that section.
`

// Service is the query-side API surface. Every response that involves
// generation is delivered as a finite event stream; the bundled TUI is
// one consumer.
type Service struct {
	candidates   *candidates.Aggregator
	generator    domain.Generator
	agent        *agent.Agent
	summarizer   domain.Summarizer
	summaryType  string
	maxSentences int
}

// Config selects how candidate summaries are produced. Type "llm" streams
// a generated summary; "frequency" falls back to the offline sentence
// ranker and needs no backend.
type Config struct {
	SummaryType  string
	MaxSentences int
}

func NewService(agg *candidates.Aggregator, generator domain.Generator, ag *agent.Agent, summarizer domain.Summarizer, cfg Config) *Service {
	if cfg.SummaryType == "" {
		cfg.SummaryType = "llm"
	}
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = 5
	}
	return &Service{
		candidates:   agg,
		generator:    generator,
		agent:        ag,
		summarizer:   summarizer,
		summaryType:  cfg.SummaryType,
		maxSentences: cfg.MaxSentences,
	}
}

// Roster is the candidate listing payload.
type Roster struct {
	Total      int                  `json:"total"`
	Candidates []domain.RosterEntry `json:"candidates"`
}

// ListCandidates returns the full roster, one entry per candidate id.
func (s *Service) ListCandidates(ctx context.Context) (Roster, error) {
	entries, err := s.candidates.List(ctx)
	if err != nil {
		return Roster{}, err
	}
	return Roster{Total: len(entries), Candidates: entries}, nil
}

// CandidateSummary streams a professional summary of one candidate:
// a metadata event with the candidate's identity, content fragments of
// the summary, then done. An unknown id produces a single error event.
func (s *Service) CandidateSummary(ctx context.Context, candidateID int) <-chan domain.Event {
	events := make(chan domain.Event)
	go func() {
		defer close(events)

		record, err := s.candidates.Get(ctx, candidateID)
		if err != nil {
			var nferr *domain.NotFoundError
			if errors.As(err, &nferr) {
				emit(ctx, events, domain.ErrorEvent("Candidate not found"))
			} else {
				emit(ctx, events, domain.ErrorEvent(err.Error()))
			}
			return
		}

		emit(ctx, events, domain.MetadataEvent(map[string]any{
			"candidate_id":   record.ID,
			"candidate_name": record.Name,
			"file_name":      record.SourceFile,
		}))

		if s.summaryType == "frequency" || s.generator == nil {
			summary, err := s.summarizer.Summarize(record.FullText, s.maxSentences)
			if err != nil {
				emit(ctx, events, domain.ErrorEvent(err.Error()))
				return
			}
			if emit(ctx, events, domain.ContentEvent(summary)) {
				emit(ctx, events, domain.DoneEvent())
			}
			return
		}

		fragments, err := llm.StreamComplete(ctx, s.generator,
			fmt.Sprintf(summaryPrompt, record.FullText),
			domain.GenOptions{Temperature: 0.2})
		if err != nil {
			emit(ctx, events, domain.ErrorEvent(err.Error()))
			return
		}
		for frag := range fragments {
			if frag.Err != nil {
				log.Warn().Err(frag.Err).Int("candidate_id", candidateID).Msg("summary stream failed")
				emit(ctx, events, domain.ErrorEvent(frag.Err.Error()))
				return
			}
			if !emit(ctx, events, domain.ContentEvent(frag.Delta)) {
				return
			}
		}
		emit(ctx, events, domain.DoneEvent())
	}()
	return events
}

// Ask routes a free-form query through the tool-augmented agent.
func (s *Service) Ask(ctx context.Context, query string) <-chan domain.Event {
	if s.agent == nil {
		events := make(chan domain.Event, 1)
		events <- domain.ErrorEvent("no generation backend configured")
		close(events)
		return events
	}
	return s.agent.Ask(ctx, query)
}

func emit(ctx context.Context, events chan<- domain.Event, ev domain.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
