package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_KeepsHighFrequencySentencesInOrder(t *testing.T) {
	text := "Go services run in production. The weather was mild. " +
		"Production Go experience includes Go tooling. Lunch was pasta."

	out, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)

	assert.Contains(t, out, "Go services run in production.")
	assert.Contains(t, out, "Production Go experience includes Go tooling.")
	assert.NotContains(t, out, "pasta")
	assert.Less(t, strings.Index(out, "Go services"), strings.Index(out, "Production Go experience"))
}

func TestSummarize_DefaultsAndShortText(t *testing.T) {
	s := NewFrequencySummarizer()

	out, err := s.Summarize("One sentence only.", 0)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only.", out)

	out, err = s.Summarize("  no terminal punctuation  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no terminal punctuation", out)
}
