package summarizer

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGenerationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGenerationMetrics(reg)

	m.RecordGeneration(Generation{Provider: "claude", Length: 120, WithinLimit: true, Duration: time.Second})
	m.RecordGeneration(Generation{Provider: "claude", Length: 900, WithinLimit: false, Duration: 2 * time.Second})
	m.RecordGeneration(Generation{Provider: "openai", Length: 80, WithinLimit: true, Duration: time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exceeded.WithLabelValues("claude")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.exceeded.WithLabelValues("openai")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.compliance.WithLabelValues("claude")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compliance.WithLabelValues("openai")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.length))
}
