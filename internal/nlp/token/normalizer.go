// Package token turns raw sentences into the content-word tokens the rankers
// compare.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"haberozet/internal/domain/entity"
)

// Normalizer lowercases with Turkish rules, strips punctuation and digits and
// drops stop words. It is safe for concurrent use.
type Normalizer struct {
	stopwords Stopwords
}

// NewNormalizer returns a Normalizer filtering sw.
func NewNormalizer(sw Stopwords) *Normalizer {
	return &Normalizer{stopwords: sw}
}

// Default returns a Normalizer using DefaultStopwords.
func Default() *Normalizer {
	return NewNormalizer(DefaultStopwords())
}

// Tokens normalizes one sentence. Punctuation is removed rather than replaced,
// so "Türkiye'de" becomes "türkiyede".
func (n *Normalizer) Tokens(raw string) []string {
	// cases.Caser keeps state and must not be shared between goroutines.
	lower := norm.NFC.String(cases.Lower(language.Turkish).String(raw))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsDigit(r):
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if !n.stopwords.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Apply fills the tokens of each sentence, drops sentences left without
// tokens and re-indexes the rest densely. Input order is preserved.
func (n *Normalizer) Apply(sentences []entity.Sentence) ([]entity.Sentence, error) {
	kept := make([]entity.Sentence, 0, len(sentences))
	for _, s := range sentences {
		tokens := n.Tokens(s.Raw)
		if len(tokens) == 0 {
			continue
		}
		kept = append(kept, entity.Sentence{Index: len(kept), Raw: s.Raw, Tokens: tokens})
	}
	if len(kept) == 0 {
		return nil, entity.ErrInsufficientContent
	}
	return kept, nil
}
