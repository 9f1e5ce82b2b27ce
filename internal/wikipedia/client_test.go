package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeWiki(t *testing.T, searchTitles []string, page string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("list") {
		case "search":
			results := ""
			for i, title := range searchTitles {
				if i > 0 {
					results += ","
				}
				results += fmt.Sprintf(`{"title":%q}`, title)
			}
			fmt.Fprintf(w, `{"query":{"search":[%s]}}`, results)
		default:
			fmt.Fprint(w, page)
		}
	}))
}

func TestLookup_Match(t *testing.T) {
	srv := fakeWiki(t, []string{"Go (programming language)"},
		`{"query":{"pages":{"12":{"title":"Go (programming language)","extract":"Go is a statically typed language."}}}}`)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	out, err := c.Lookup(context.Background(), "golang", 3)
	require.NoError(t, err)
	assert.Equal(t, Match, out.Kind)
	assert.Equal(t, "Go (programming language)", out.Title)
	assert.Equal(t, "Go is a statically typed language.", out.Summary)
}

func TestLookup_AmbiguousListsOptions(t *testing.T) {
	srv := fakeWiki(t, []string{"Mercury", "Mercury (planet)", "Mercury (element)"},
		`{"query":{"pages":{"5":{"title":"Mercury","extract":"Mercury may refer to:","pageprops":{"disambiguation":""}}}}}`)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	out, err := c.Lookup(context.Background(), "Mercury", 3)
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, out.Kind)
	assert.Equal(t, []string{"Mercury", "Mercury (planet)", "Mercury (element)"}, out.Options)
	assert.LessOrEqual(t, len(out.Options), 5)
}

func TestLookup_UsesConfiguredDefaultSentences(t *testing.T) {
	var exsentences string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") == "search" {
			fmt.Fprint(w, `{"query":{"search":[{"title":"Go"}]}}`)
			return
		}
		exsentences = q.Get("exsentences")
		fmt.Fprint(w, `{"query":{"pages":{"12":{"title":"Go","extract":"Go."}}}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, DefaultSentences: 7})
	_, err := c.Lookup(context.Background(), "golang", 0)
	require.NoError(t, err)
	assert.Equal(t, "7", exsentences)

	_, err = c.Lookup(context.Background(), "golang", 2)
	require.NoError(t, err)
	assert.Equal(t, "2", exsentences)
}

func TestLookup_NoResultsIsNotFound(t *testing.T) {
	srv := fakeWiki(t, nil, `{}`)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	out, err := c.Lookup(context.Background(), "xyzzy-nothing", 3)
	require.NoError(t, err)
	assert.Equal(t, NotFound, out.Kind)
}

func TestLookup_MissingPageIsNotFound(t *testing.T) {
	srv := fakeWiki(t, []string{"Ghost Article"},
		`{"query":{"pages":{"-1":{"title":"Ghost Article","missing":""}}}}`)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	out, err := c.Lookup(context.Background(), "ghost", 3)
	require.NoError(t, err)
	assert.Equal(t, NotFound, out.Kind)
}
