package rank

import "math"

const (
	// DefaultDamping is the probability of following an edge instead of teleporting.
	DefaultDamping = 0.85
	// DefaultMaxIterations caps power iteration.
	DefaultMaxIterations = 200
	// DefaultTolerance is the per-node convergence threshold.
	DefaultTolerance = 1e-6
)

// TextRankOptions tunes the power iteration. Zero fields take the defaults.
type TextRankOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

func (o TextRankOptions) withDefaults() TextRankOptions {
	if o.Damping <= 0 || o.Damping >= 1 {
		o.Damping = DefaultDamping
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// edge is a neighbor index + weight pair used for deterministic iteration.
type edge struct {
	from   int
	weight float64
}

// TextRank runs weighted PageRank over g and returns one score per node.
// Scores start uniform and sum to 1. Nodes without edges spread their mass
// uniformly. Iteration stops when the L1 change drops below n*Tolerance or
// after MaxIterations, in which case the last iterate is returned.
func TextRank(g Graph, opts TextRankOptions) []float64 {
	scores, _ := textRank(g, opts.withDefaults())
	return scores
}

func textRank(g Graph, opts TextRankOptions) ([]float64, int) {
	n := g.Len()
	if n == 0 {
		return nil, 0
	}
	if n == 1 {
		return []float64{1}, 0
	}

	outWeight := make([]float64, n)
	incoming := make([][]edge, n)
	for i, row := range g.Weights {
		for j, w := range row {
			if i == j || w <= 0 {
				continue
			}
			outWeight[i] += w
			incoming[j] = append(incoming[j], edge{from: i, weight: w})
		}
	}

	nf := float64(n)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / nf
	}

	iterations := 0
	for range opts.MaxIterations {
		iterations++

		dangling := 0.0
		for i, ow := range outWeight {
			if ow == 0 {
				dangling += scores[i]
			}
		}
		base := (opts.Damping*dangling + 1 - opts.Damping) / nf

		next := make([]float64, n)
		delta := 0.0
		for j := range n {
			sum := 0.0
			for _, e := range incoming[j] {
				sum += e.weight / outWeight[e.from] * scores[e.from]
			}
			next[j] = opts.Damping*sum + base
			delta += math.Abs(next[j] - scores[j])
		}

		scores = next
		if delta < nf*opts.Tolerance {
			break
		}
	}

	return scores, iterations
}
