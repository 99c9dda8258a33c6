package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
)

func result(summary string) entity.SummaryResult {
	return entity.SummaryResult{
		Summary:          summary,
		Sentences:        []string{summary},
		SentenceCount:    4,
		CompressionRatio: 25,
		Method:           entity.MethodTextRank,
	}
}

func TestSummaryLRU_GetAdd(t *testing.T) {
	c := NewSummaryLRU(4, time.Minute)

	_, ok := c.Get("yok")
	assert.False(t, ok)

	c.Add("k1", result("Birinci özet cümlesi."))
	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, result("Birinci özet cümlesi."), got)
	assert.Equal(t, 1, c.Len())
}

func TestSummaryLRU_IgnoresFailures(t *testing.T) {
	c := NewSummaryLRU(4, time.Minute)
	c.Add("k", entity.FailedResult(entity.ErrEmptyInput))

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestSummaryLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSummaryLRU(2, time.Minute)
	c.Add("a", result("a"))
	c.Add("b", result("b"))

	// touch a so that b is the eviction candidate
	_, _ = c.Get("a")
	c.Add("c", result("c"))

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestSummaryLRU_Expires(t *testing.T) {
	c := NewSummaryLRU(4, 20*time.Millisecond)
	c.Add("k", result("k"))

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestSummaryLRU_Defaults(t *testing.T) {
	c := NewSummaryLRU(0, 0)
	for i := range DefaultSize + 10 {
		c.Add(fmt.Sprintf("k%d", i), result("x"))
	}
	assert.Equal(t, DefaultSize, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}
