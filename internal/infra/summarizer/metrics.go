package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation describes one completed provider call.
type Generation struct {
	Provider    string
	Length      int // runes in the returned summary
	WithinLimit bool
	Duration    time.Duration
}

// GenerationRecorder receives every completed generation. Tests inject a
// recording fake instead of the Prometheus implementation.
type GenerationRecorder interface {
	RecordGeneration(g Generation)
}

// GenerationMetrics exports generation calls per provider.
type GenerationMetrics struct {
	length     *prometheus.HistogramVec
	exceeded   *prometheus.CounterVec
	compliance *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	f := promauto.With(reg)
	return &GenerationMetrics{
		length: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "abstractive_summary_length_characters",
			Help:    "Length of generated chunk summaries in characters",
			Buckets: []float64{100, 200, 400, 600, 800, 1000, 1500, 2500},
		}, []string{"provider"}),
		exceeded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "abstractive_summary_limit_exceeded_total",
			Help: "Generated summaries longer than the requested character limit",
		}, []string{"provider"}),
		compliance: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "abstractive_summary_limit_compliance",
			Help: "1 when the last generated summary was within the character limit, 0 otherwise",
		}, []string{"provider"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "abstractive_generation_duration_seconds",
			Help:    "Duration of one generation call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"provider"}),
	}
}

func (m *GenerationMetrics) RecordGeneration(g Generation) {
	m.length.WithLabelValues(g.Provider).Observe(float64(g.Length))
	m.duration.WithLabelValues(g.Provider).Observe(g.Duration.Seconds())
	if g.WithinLimit {
		m.compliance.WithLabelValues(g.Provider).Set(1)
		return
	}
	m.compliance.WithLabelValues(g.Provider).Set(0)
	m.exceeded.WithLabelValues(g.Provider).Inc()
}

var defaultMetrics = sync.OnceValue(func() *GenerationMetrics {
	return NewGenerationMetrics(prometheus.DefaultRegisterer)
})
