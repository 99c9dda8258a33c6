// Package rank scores sentences of a vector space and selects the summary.
package rank

import (
	"cmp"
	"slices"

	"haberozet/internal/domain/entity"
	"haberozet/internal/nlp/vsm"
)

// TFIDFScores returns the summed weight of each row.
func TFIDFScores(space *vsm.Space) []float64 {
	scores := make([]float64, space.Len())
	for i, row := range space.Rows {
		for _, w := range row {
			scores[i] += w
		}
	}
	return scores
}

// Rank orders sentence indices by descending score. Ties keep the lower index first.
func Rank(scores []float64) []entity.RankedSentence {
	ranked := make([]entity.RankedSentence, len(scores))
	for i, s := range scores {
		ranked[i] = entity.RankedSentence{Index: i, Score: s}
	}
	slices.SortStableFunc(ranked, func(a, b entity.RankedSentence) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked
}

// SelectTop returns the indices of the n best-scoring sentences in ascending
// order. n is clipped to len(scores).
func SelectTop(scores []float64, n int) []int {
	n = max(0, min(n, len(scores)))
	ranked := Rank(scores)[:n]
	selected := make([]int, n)
	for i, r := range ranked {
		selected[i] = r.Index
	}
	slices.Sort(selected)
	return selected
}
