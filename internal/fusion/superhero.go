package fusion

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"

	"candidate-search/internal/candidates"
	"candidate-search/internal/domain"
	"candidate-search/internal/llm"
)

// epithets is the fixed middle-name vocabulary for fused profiles.
var epithets = []string{
	"Dragon", "Beast", "Rock", "Thunder", "Storm", "Steel",
	"Phoenix", "Titan", "Viper", "Shadow", "Blaze", "Frost",
	"Venom", "Raven", "Wolf", "Hawk", "Cobra", "Tiger",
}

const (
	maxCharsPerCandidate = 3000
	maxResponseTokens    = 1000
	truncationMarker     = "... [truncated]"
)

const profilePrompt = `You are creating a "superhero" candidate by combining the best skills and qualifications from multiple candidates.

Here are the candidates:

%s

Task:
1. Extract the key skills, technologies, experiences, and qualifications from each candidate
2. Combine them into one comprehensive profile highlighting the BEST and most impressive aspects from each
3. Remove duplicates and organize by category (Technical Skills, Experience, Education, etc.)
4. Make it read like a powerful, combined resume profile
5. Keep the response concise and under 800 words

Superhero Name: %s

Create a compelling superhero candidate profile:`

// Engine fuses two or three candidates into a single synthetic profile.
type Engine struct {
	candidates *candidates.Aggregator
	generator  domain.Generator
	rng        *rand.Rand
}

// Config configures the fusion engine. Seed is for deterministic tests;
// zero seeds from the global source.
type Config struct {
	Seed int64
}

func NewEngine(agg *candidates.Aggregator, generator domain.Generator, cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Engine{candidates: agg, generator: generator, rng: rand.New(rand.NewSource(seed))}
}

// Result is a fused candidate profile and its provenance.
type Result struct {
	Name    string
	Sources []string
	Profile string
}

// Fuse validates the names, gathers each candidate's text, and generates
// the combined profile. Every candidate is resolved before any generation
// call, so a missing name fails fast with NotFoundError.
func (e *Engine) Fuse(ctx context.Context, names []string) (Result, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) < 2 || len(cleaned) > 3 {
		return Result{}, &domain.ValidationError{Msg: "provide 2 or 3 candidate names"}
	}

	contents := make([]string, 0, len(cleaned))
	for _, name := range cleaned {
		record, err := e.candidates.GetByName(ctx, name)
		if err != nil {
			return Result{}, err
		}
		contents = append(contents, truncate(strings.Join(record.Chunks, " ")))
	}

	heroName := e.heroName(cleaned)

	var info strings.Builder
	for i, name := range cleaned {
		if i > 0 {
			info.WriteString("\n\n")
		}
		fmt.Fprintf(&info, "Candidate %d (%s):\n%s", i+1, name, contents[i])
	}

	profile, err := llm.Complete(ctx, e.generator,
		fmt.Sprintf(profilePrompt, info.String(), heroName),
		domain.GenOptions{MaxTokens: maxResponseTokens, Temperature: 0.3})
	if err != nil {
		return Result{}, err
	}
	return Result{Name: heroName, Sources: cleaned, Profile: profile}, nil
}

// heroName combines the first token of the first candidate with the last
// token of the second, around a random epithet. Single-token names fall
// back to that token; empty ones to "Super" / "Hero".
func (e *Engine) heroName(names []string) string {
	firstTokens := strings.Fields(names[0])
	secondTokens := strings.Fields(names[1])

	first := "Super"
	if len(firstTokens) > 0 {
		first = firstTokens[0]
	}
	last := "Hero"
	if len(secondTokens) > 1 {
		last = secondTokens[len(secondTokens)-1]
	} else if len(secondTokens) == 1 {
		last = secondTokens[0]
	}
	return fmt.Sprintf("%s '%s' %s", first, epithets[e.rng.Intn(len(epithets))], last)
}

// truncate bounds a candidate's text to maxCharsPerCandidate characters.
// The budget counts runes, not bytes, so multi-byte text is never cut
// mid-rune.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxCharsPerCandidate {
		return s
	}
	return string([]rune(s)[:maxCharsPerCandidate]) + truncationMarker
}

// Format renders a fused profile the way the tool reports it.
func Format(r Result) string {
	rule := strings.Repeat("-", 80)
	return fmt.Sprintf(`
SUPERHERO CANDIDATE CREATED!

Name: %s
Combined from: %d candidates
- %s

%s

%s

%s

This superhero candidate combines the best qualities from all %d candidates!
`, r.Name, len(r.Sources), strings.Join(r.Sources, ", "), rule, r.Profile, rule, len(r.Sources))
}
