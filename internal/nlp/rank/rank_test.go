package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/nlp/vsm"
)

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestTFIDFScores(t *testing.T) {
	space := &vsm.Space{Rows: [][]float64{
		{0.6, 0.8, 0},
		{0, 0, 1},
		{0, 0, 0},
	}}
	assert.InDeltaSlice(t, []float64{1.4, 1, 0}, TFIDFScores(space), 1e-12)
}

func TestSelectTop(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		n      int
		want   []int
	}{
		{name: "top two in original order", scores: []float64{0.1, 0.9, 0.3, 0.8}, n: 2, want: []int{1, 3}},
		{name: "ties prefer lower index", scores: []float64{0.5, 0.5, 0.5, 0.1}, n: 2, want: []int{0, 1}},
		{name: "n clipped", scores: []float64{0.2, 0.1}, n: 5, want: []int{0, 1}},
		{name: "zero n", scores: []float64{0.2, 0.1}, n: 0, want: []int{}},
		{name: "negative n", scores: []float64{0.2}, n: -1, want: []int{}},
		{name: "no scores", scores: nil, n: 3, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectTop(tt.scores, tt.n))
		})
	}
}

func TestRank_Deterministic(t *testing.T) {
	ranked := Rank([]float64{0.2, 0.7, 0.2, 0.7})
	require.Len(t, ranked, 4)
	assert.Equal(t, []int{1, 3, 0, 2}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index, ranked[3].Index})
}

func TestSimilarityGraph(t *testing.T) {
	s2 := math.Sqrt2 / 2
	space := &vsm.Space{Rows: [][]float64{
		{1, 0, 0},
		{s2, s2, 0},
		{0, 0, 0},
		{0, 0, 1},
	}}

	g := SimilarityGraph(space)
	require.Equal(t, 4, g.Len())

	for i := range 4 {
		for j := range 4 {
			assert.Equal(t, g.Weights[i][j], g.Weights[j][i], "symmetric at %d,%d", i, j)
			assert.GreaterOrEqual(t, g.Weights[i][j], 0.0)
			assert.LessOrEqual(t, g.Weights[i][j], 1.0)
		}
	}
	assert.InDelta(t, s2, g.Weights[0][1], 1e-12)
	assert.Zero(t, g.Weights[0][3])
	assert.Equal(t, 1.0, g.Weights[0][0])
	assert.Equal(t, []float64{0, 0, 0, 0}, g.Weights[2], "zero row is similar to nothing")
}

func TestTextRank_SingleNode(t *testing.T) {
	scores := TextRank(Graph{Weights: [][]float64{{1}}}, TextRankOptions{})
	assert.Equal(t, []float64{1}, scores)
}

func TestTextRank_Empty(t *testing.T) {
	assert.Empty(t, TextRank(Graph{}, TextRankOptions{}))
}

func TestTextRank_NoEdgesIsUniform(t *testing.T) {
	g := Graph{Weights: [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
	scores := TextRank(g, TextRankOptions{})
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, scores, 1e-9)
}

func TestTextRank_DiagonalIgnored(t *testing.T) {
	with := Graph{Weights: [][]float64{
		{1, 0.4, 0},
		{0.4, 1, 0.2},
		{0, 0.2, 1},
	}}
	without := Graph{Weights: [][]float64{
		{0, 0.4, 0},
		{0.4, 0, 0.2},
		{0, 0.2, 0},
	}}
	assert.Equal(t, TextRank(without, TextRankOptions{}), TextRank(with, TextRankOptions{}))
}

func TestTextRank_HubScoresHighest(t *testing.T) {
	// node 0 is similar to every other node, the rest only to node 0
	g := Graph{Weights: [][]float64{
		{1, 0.5, 0.5, 0.5, 0.5},
		{0.5, 1, 0, 0, 0},
		{0.5, 0, 1, 0, 0},
		{0.5, 0, 0, 1, 0},
		{0.5, 0, 0, 0, 1},
	}}
	scores := TextRank(g, TextRankOptions{})

	assert.InDelta(t, 1.0, sum(scores), 1e-9)
	for i := 1; i < 5; i++ {
		assert.Greater(t, scores[0], scores[i])
		assert.InDelta(t, scores[1], scores[i], 1e-12)
	}
	assert.Equal(t, []int{0}, SelectTop(scores, 1))
}

func TestTextRank_ConnectedBeatIsolated(t *testing.T) {
	n := 10
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
		w[i][i] = 1
	}
	w[3][7], w[7][3] = 0.8, 0.8

	scores := TextRank(Graph{Weights: w}, TextRankOptions{})
	assert.InDelta(t, 1.0, sum(scores), 1e-9)
	for i := range n {
		if i == 3 || i == 7 {
			continue
		}
		assert.Greater(t, scores[3], scores[i])
		assert.Greater(t, scores[7], scores[i])
	}
	assert.Equal(t, []int{3, 7}, SelectTop(scores, 2))
}

func TestTextRank_IterationCap(t *testing.T) {
	g := Graph{Weights: [][]float64{
		{0, 1, 0.1},
		{1, 0, 0.9},
		{0.1, 0.9, 0},
	}}

	capped, iterations := textRank(g, TextRankOptions{Damping: DefaultDamping, MaxIterations: 3, Tolerance: 1e-300})
	assert.Equal(t, 3, iterations)
	assert.Len(t, capped, 3)
	assert.InDelta(t, 1.0, sum(capped), 1e-9)

	converged, iterations := textRank(g, TextRankOptions{}.withDefaults())
	assert.Less(t, iterations, DefaultMaxIterations)
	assert.InDelta(t, 1.0, sum(converged), 1e-9)
}

func TestTextRankOptions_Defaults(t *testing.T) {
	o := TextRankOptions{Damping: 1.5, MaxIterations: -1}.withDefaults()
	assert.Equal(t, DefaultDamping, o.Damping)
	assert.Equal(t, DefaultMaxIterations, o.MaxIterations)
	assert.Equal(t, DefaultTolerance, o.Tolerance)

	custom := TextRankOptions{Damping: 0.5, MaxIterations: 10, Tolerance: 1e-3}.withDefaults()
	assert.Equal(t, 0.5, custom.Damping)
	assert.Equal(t, 10, custom.MaxIterations)
}
