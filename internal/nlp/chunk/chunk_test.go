package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words counts whitespace separated fields, a stand-in for a tokenizer.
func words(s string) int { return len(strings.Fields(s)) }

func TestByTokenBudget_SingleChunk(t *testing.T) {
	text := "Kısa bir haber metni. İkinci cümle."
	got := ByTokenBudget(text, nil, Options{Prefix: DefaultPrefix})
	assert.Equal(t, []string{"summarize: Kısa bir haber metni. İkinci cümle."}, got)
}

func TestByTokenBudget_Empty(t *testing.T) {
	assert.Empty(t, ByTokenBudget("  ", nil, Options{}))
}

func TestByTokenBudget_SplitsOnSentences(t *testing.T) {
	sentences := []string{
		"bir iki üç dört",
		"beş altı yedi",
		"sekiz dokuz",
		"on",
	}
	text := strings.Join(sentences, " ")

	// prefix counts as one word; budget 8 words
	got := ByTokenBudget(text, sentences, Options{Prefix: "özet: ", Budget: 8, TokenLen: words})
	require.Equal(t, []string{
		"özet: bir iki üç dört beş altı yedi",
		"özet: sekiz dokuz on",
	}, got)
	for _, c := range got {
		assert.LessOrEqual(t, words(c), 8)
		assert.True(t, strings.HasPrefix(c, "özet: "))
	}
}

func TestByTokenBudget_OversizedSentenceKeepsOwnChunk(t *testing.T) {
	sentences := []string{"a b", "c d e f g h i j k", "l"}
	got := ByTokenBudget(strings.Join(sentences, " "), sentences, Options{Budget: 4, TokenLen: words})
	assert.Equal(t, []string{"a b", "c d e f g h i j k", "l"}, got)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("çğış"))
	assert.Equal(t, 2, EstimateTokens("çğışö"))
}
