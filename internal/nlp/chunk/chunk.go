// Package chunk splits text into pieces that fit a generator's input window.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultBudget is the input window of the reference sequence-to-sequence model.
const DefaultBudget = 512

// DefaultPrefix is the task prefix prepended to every chunk.
const DefaultPrefix = "summarize: "

// TokenLen measures text in model tokens.
type TokenLen func(string) int

// EstimateTokens approximates a token count as one token per four runes.
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// Options configures ByTokenBudget. Zero fields take the defaults.
type Options struct {
	Prefix   string
	Budget   int
	TokenLen TokenLen
}

func (o Options) withDefaults() Options {
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.TokenLen == nil {
		o.TokenLen = EstimateTokens
	}
	return o
}

// ByTokenBudget returns prefixed chunks of text.
//
// When prefix+text fits the budget the whole text is one chunk. Otherwise
// sentences are appended, space separated, to the current chunk until the
// next one would overflow; then the chunk is closed and a new one starts with
// that sentence. A single sentence larger than the budget still forms its own
// chunk; the generator truncates it.
func ByTokenBudget(text string, sentences []string, opts Options) []string {
	opts = opts.withDefaults()

	if whole := opts.Prefix + text; opts.TokenLen(whole) <= opts.Budget {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{whole}
	}

	var chunks []string
	current := opts.Prefix
	for _, s := range sentences {
		candidate := opts.Prefix + s
		if current != opts.Prefix {
			candidate = current + " " + s
		}
		if opts.TokenLen(candidate) > opts.Budget && current != opts.Prefix {
			chunks = append(chunks, current)
			current = opts.Prefix + s
			continue
		}
		current = candidate
	}
	if current != opts.Prefix {
		chunks = append(chunks, current)
	}
	return chunks
}
