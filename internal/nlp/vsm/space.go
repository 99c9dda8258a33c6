// Package vsm builds the TF-IDF vector space shared by both extractive rankers.
package vsm

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"haberozet/internal/domain/entity"
)

// minTermRunes drops single-rune tokens from the vocabulary.
const minTermRunes = 2

// Space holds one L2-normalized TF-IDF row per sentence.
// Columns follow Vocabulary, which is sorted.
type Space struct {
	Vocabulary []string
	IDF        []float64
	Rows       [][]float64
}

// Dim returns the vocabulary size.
func (s *Space) Dim() int { return len(s.Vocabulary) }

// Len returns the number of rows.
func (s *Space) Len() int { return len(s.Rows) }

// Build weights each document's term counts by smoothed inverse document
// frequency, idf(t) = ln((1+N)/(1+df(t))) + 1, and L2-normalizes the rows.
// Rows without any vocabulary term stay all-zero.
func Build(docs [][]string) (*Space, error) {
	index := make(map[string]int)
	for _, doc := range docs {
		for _, t := range doc {
			if utf8.RuneCountInString(t) < minTermRunes {
				continue
			}
			index[t] = 0
		}
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("build vector space: empty vocabulary: %w", entity.ErrRankingFailure)
	}

	vocab := make([]string, 0, len(index))
	for t := range index {
		vocab = append(vocab, t)
	}
	slices.Sort(vocab)
	for i, t := range vocab {
		index[t] = i
	}

	counts := make([]map[int]float64, len(docs))
	df := make([]float64, len(vocab))
	for d, doc := range docs {
		counts[d] = make(map[int]float64, len(doc))
		for _, t := range doc {
			col, ok := index[t]
			if !ok {
				continue
			}
			if counts[d][col] == 0 {
				df[col]++
			}
			counts[d][col]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for col := range vocab {
		idf[col] = math.Log((1+n)/(1+df[col])) + 1
	}

	rows := make([][]float64, len(docs))
	for d := range docs {
		row := make([]float64, len(vocab))
		norm := 0.0
		for col, tf := range counts[d] {
			w := tf * idf[col]
			row[col] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col := range row {
				row[col] /= norm
			}
		}
		rows[d] = row
	}

	return &Space{Vocabulary: vocab, IDF: idf, Rows: rows}, nil
}

// FromSentences builds the space over the tokens of sentences.
func FromSentences(sentences []entity.Sentence) (*Space, error) {
	docs := make([][]string, len(sentences))
	for i, s := range sentences {
		docs[i] = s.Tokens
	}
	return Build(docs)
}

// Dot returns the inner product of rows i and j.
func (s *Space) Dot(i, j int) float64 {
	a, b := s.Rows[i], s.Rows[j]
	sum := 0.0
	for k := range a {
		sum += a[k] * b[k]
	}
	return sum
}
