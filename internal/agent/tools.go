package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"candidate-search/internal/domain"
	"candidate-search/internal/fusion"
	"candidate-search/internal/retrieval"
	"candidate-search/internal/wikipedia"
)

// Tool is one agent-callable capability. Run never returns an error:
// failures are rendered as textual outcomes so the loop can keep
// reasoning about them.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input json.RawMessage) string
}

// Tools builds the standard tool set.
func Tools(search *retrieval.Service, wiki *wikipedia.Client, fuser *fusion.Engine, defaultTopK int) []Tool {
	if defaultTopK <= 0 {
		defaultTopK = retrieval.DefaultTopK
	}
	return []Tool{
		{
			Name: "search_candidates",
			Description: "Search for candidates using natural language queries. " +
				"Use this to find candidates with specific skills, experience, or qualifications. " +
				`Input: {"query": "...", "top_k": 10}`,
			Run: func(ctx context.Context, input json.RawMessage) string {
				var args struct {
					Query string `json:"query"`
					TopK  int    `json:"top_k"`
				}
				if err := json.Unmarshal(input, &args); err != nil || strings.TrimSpace(args.Query) == "" {
					return "Error: search_candidates requires a non-empty \"query\"."
				}
				if args.TopK <= 0 {
					args.TopK = defaultTopK
				}
				results, err := search.Search(ctx, args.Query, args.TopK)
				if err != nil {
					return fmt.Sprintf("Error searching candidates: %v", err)
				}
				return retrieval.FormatResults(results)
			},
		},
		{
			Name: "search_general_knowledge",
			Description: "Search Wikipedia for general knowledge, facts, and information about topics, " +
				"concepts, people, places, or events. Use this for questions unrelated to candidate resumes. " +
				`Input: {"query": "...", "sentences": 3}`,
			Run: func(ctx context.Context, input json.RawMessage) string {
				var args struct {
					Query     string `json:"query"`
					Sentences int    `json:"sentences"`
				}
				if err := json.Unmarshal(input, &args); err != nil || strings.TrimSpace(args.Query) == "" {
					return "Error: search_general_knowledge requires a non-empty \"query\"."
				}
				out, err := wiki.Lookup(ctx, args.Query, args.Sentences)
				if err != nil {
					return fmt.Sprintf("Error searching Wikipedia: %v", err)
				}
				switch out.Kind {
				case wikipedia.Match:
					return fmt.Sprintf("Wikipedia - %s:\n\n%s", out.Title, out.Summary)
				case wikipedia.Ambiguous:
					return fmt.Sprintf("Multiple topics found for '%s'. Please be more specific. Options include: %s",
						args.Query, strings.Join(out.Options, ", "))
				default:
					return fmt.Sprintf("No Wikipedia page found for '%s'. Please try a different search term.", args.Query)
				}
			},
		},
		{
			Name: "fuse_candidates",
			Description: "Create a superhero candidate by combining the best skills from 2-3 candidates. " +
				"The superhero's name will be the first name of the first candidate and last name of the second candidate. " +
				`Input: {"names": ["John Doe", "Jane Smith"]}`,
			Run: func(ctx context.Context, input json.RawMessage) string {
				names, err := parseNames(input)
				if err != nil {
					return "Error: Please provide 2 or 3 candidate names."
				}
				res, err := fuser.Fuse(ctx, names)
				if err != nil {
					var nferr *domain.NotFoundError
					if errors.As(err, &nferr) {
						return fmt.Sprintf("Error: Candidate with name '%s' not found.", nferr.Name)
					}
					var amberr *domain.AmbiguousError
					if errors.As(err, &amberr) {
						return fmt.Sprintf("Error: Multiple candidates share the name '%s': %s. Refer to them by id instead.",
							amberr.Topic, strings.Join(amberr.Options, ", "))
					}
					return fmt.Sprintf("Error creating superhero: %v", err)
				}
				return fusion.Format(res)
			},
		},
	}
}

// parseNames accepts either a JSON array of names or a single
// comma-separated string.
func parseNames(input json.RawMessage) ([]string, error) {
	var args struct {
		Names json.RawMessage `json:"names"`
	}
	if err := json.Unmarshal(input, &args); err != nil || len(args.Names) == 0 {
		return nil, fmt.Errorf("missing names")
	}
	var list []string
	if err := json.Unmarshal(args.Names, &list); err == nil {
		return list, nil
	}
	var csv string
	if err := json.Unmarshal(args.Names, &csv); err == nil {
		return strings.Split(csv, ","), nil
	}
	return nil, fmt.Errorf("names must be an array or comma-separated string")
}
