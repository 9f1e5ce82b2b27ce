package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"candidate-search/internal/domain"
)

// OutcomeKind discriminates the result of a lookup.
type OutcomeKind int

const (
	// Match means a single article was found and summarized.
	Match OutcomeKind = iota
	// Ambiguous means the topic resolved to a disambiguation page.
	Ambiguous
	// NotFound means no article matched the topic.
	NotFound
)

// Outcome is the result of a topic lookup. Exactly one variant applies:
// Match carries Title and Summary, Ambiguous carries up to five Options,
// NotFound carries nothing.
type Outcome struct {
	Kind    OutcomeKind
	Title   string
	Summary string
	Options []string
}

const maxAmbiguousOptions = 5

// Client talks to the MediaWiki action API.
type Client struct {
	baseURL          string
	defaultSentences int
	client           *http.Client
}

// Config configures the MediaWiki API client. DefaultSentences is the
// extract length used when a caller does not ask for one.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	DefaultSentences int
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.DefaultSentences <= 0 {
		cfg.DefaultSentences = 3
	}
	return &Client{
		baseURL:          cfg.BaseURL,
		defaultSentences: cfg.DefaultSentences,
		client:           &http.Client{Timeout: cfg.Timeout},
	}
}

// Search returns article titles matching the topic, best match first.
func (c *Client) Search(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = maxAmbiguousOptions
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {topic},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
	}
	var out struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

type extractPage struct {
	Title   string          `json:"title"`
	Extract string          `json:"extract"`
	Missing json.RawMessage `json:"missing,omitempty"`
	PageProps struct {
		Disambiguation *string `json:"disambiguation"`
	} `json:"pageprops"`
}

// Summarize fetches a plain-text extract of the article, limited to the
// given number of sentences. It reports whether the page is a
// disambiguation page, and whether the page exists at all.
func (c *Client) Summarize(ctx context.Context, title string, sentences int) (summary string, disambig bool, found bool, err error) {
	if sentences <= 0 {
		sentences = c.defaultSentences
	}
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|pageprops"},
		"ppprop":      {"disambiguation"},
		"exsentences": {strconv.Itoa(sentences)},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}
	var out struct {
		Query struct {
			Pages map[string]extractPage `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return "", false, false, err
	}
	for id, page := range out.Query.Pages {
		if id == "-1" || len(page.Missing) > 0 {
			return "", false, false, nil
		}
		return page.Extract, page.PageProps.Disambiguation != nil, true, nil
	}
	return "", false, false, nil
}

// Lookup resolves a topic to exactly one of three outcomes. A topic whose
// best match is a disambiguation page is reported as Ambiguous with up to
// five alternatives rather than silently picking one.
func (c *Client) Lookup(ctx context.Context, topic string, sentences int) (Outcome, error) {
	titles, err := c.Search(ctx, topic, maxAmbiguousOptions)
	if err != nil {
		return Outcome{}, err
	}
	if len(titles) == 0 {
		return Outcome{Kind: NotFound}, nil
	}

	summary, disambig, found, err := c.Summarize(ctx, titles[0], sentences)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{Kind: NotFound}, nil
	}
	if disambig {
		return Outcome{Kind: Ambiguous, Options: titles}, nil
	}
	return Outcome{Kind: Match, Title: titles[0], Summary: summary}, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "candidate-search/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: "wikipedia query", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &domain.UpstreamError{Op: "wikipedia query", Err: fmt.Errorf("status %s", resp.Status)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Op: "wikipedia query", Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
