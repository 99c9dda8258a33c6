package rank

import "haberozet/internal/nlp/vsm"

// Graph is a symmetric sentence similarity matrix.
// The diagonal is kept for inspection but never contributes to ranking.
type Graph struct {
	Weights [][]float64
}

// Len returns the number of nodes.
func (g Graph) Len() int { return len(g.Weights) }

// SimilarityGraph computes pairwise cosine similarity between rows of space.
// Rows are unit length, so cosine reduces to a dot product; zero rows are
// similar to nothing. Weights are clamped into [0, 1].
func SimilarityGraph(space *vsm.Space) Graph {
	n := space.Len()
	zero := make([]bool, n)
	for i, row := range space.Rows {
		zero[i] = isZero(row)
	}

	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
	}
	for i := range n {
		if zero[i] {
			continue
		}
		w[i][i] = 1
		for j := i + 1; j < n; j++ {
			if zero[j] {
				continue
			}
			sim := min(max(space.Dot(i, j), 0), 1)
			w[i][j] = sim
			w[j][i] = sim
		}
	}
	return Graph{Weights: w}
}

func isZero(row []float64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}
