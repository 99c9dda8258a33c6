package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"haberozet/internal/domain/entity"
	"haberozet/internal/nlp/rank"
	"haberozet/internal/nlp/sentence"
	"haberozet/internal/nlp/token"
	"haberozet/internal/nlp/vsm"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/observability/tracing"
)

// Request is a single summarization call.
type Request struct {
	Text           string
	SentenceTarget int
	// Method is parsed leniently: empty selects Config.DefaultMethod and an
	// unknown name falls back to TextRank.
	Method string
}

// Config holds the tunables of the Service.
type Config struct {
	DefaultMethod entity.Method
	TextRank      rank.TextRankOptions
}

// DefaultConfig returns TextRank with damping 0.85 and at most 200 iterations.
func DefaultConfig() Config {
	return Config{
		DefaultMethod: entity.MethodTextRank,
		TextRank: rank.TextRankOptions{
			Damping:       rank.DefaultDamping,
			MaxIterations: rank.DefaultMaxIterations,
			Tolerance:     rank.DefaultTolerance,
		},
	}
}

// Cache stores successful results by request fingerprint.
type Cache interface {
	Get(key string) (entity.SummaryResult, bool)
	Add(key string, result entity.SummaryResult)
}

// Service runs the summarization pipeline. It is safe for concurrent use.
type Service struct {
	Normalizer *token.Normalizer
	Backend    *Backend // nil disables the abstractive method
	Cache      Cache    // nil disables caching
	config     Config
}

// NewService creates a summarization Service.
// A nil normalizer selects token.Default().
func NewService(normalizer *token.Normalizer, backend *Backend, cache Cache, config Config) *Service {
	if normalizer == nil {
		normalizer = token.Default()
	}
	if _, ok := entity.LookupMethod(string(config.DefaultMethod)); !ok {
		config.DefaultMethod = entity.DefaultMethod
	}
	return &Service{
		Normalizer: normalizer,
		Backend:    backend,
		Cache:      cache,
		config:     config,
	}
}

// Summarize never returns an error value: failures are reported through
// SummaryResult.Error with every other field zeroed.
func (s *Service) Summarize(ctx context.Context, req Request) (res entity.SummaryResult) {
	start := time.Now()
	method := s.resolveMethod(ctx, req.Method)

	ctx, span := tracing.GetTracer().Start(ctx, "summarize.Summarize",
		trace.WithAttributes(
			attribute.String("summary.method", string(method)),
			attribute.Int("summary.sentence_target", req.SentenceTarget),
			attribute.Int("summary.input_runes", len([]rune(req.Text))),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "summarization panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res = entity.FailedResult(errUnexpected)
		}

		status := "success"
		if res.Failed() {
			status = "failure"
			span.SetStatus(codes.Error, res.Error)
		} else {
			span.SetAttributes(
				attribute.Int("summary.sentence_count", res.SentenceCount),
				attribute.Float64("summary.compression_ratio", res.CompressionRatio),
			)
			metrics.RecordSummaryShape(res.SentenceCount, res.CompressionRatio)
		}
		metrics.RecordSummary(string(method), status, time.Since(start))
	}()

	if err := entity.ValidateSentenceTarget(req.SentenceTarget); err != nil {
		return s.fail(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, err)
	}

	key := cacheKey(req.Text, req.SentenceTarget, method)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(key); ok {
			metrics.RecordSummaryCache(true)
			cached.Sentences = slices.Clone(cached.Sentences)
			return cached
		}
		metrics.RecordSummaryCache(false)
	}

	res, err := s.run(ctx, req.Text, req.SentenceTarget, method)
	if err != nil {
		return s.fail(ctx, err)
	}

	if s.Cache != nil {
		s.Cache.Add(key, entity.SummaryResult{
			Summary:          res.Summary,
			Sentences:        slices.Clone(res.Sentences),
			SentenceCount:    res.SentenceCount,
			CompressionRatio: res.CompressionRatio,
			Method:           res.Method,
		})
	}

	slog.DebugContext(ctx, "summarization completed",
		slog.String("method", string(method)),
		slog.Int("sentence_count", res.SentenceCount),
		slog.Int("selected", len(res.Sentences)),
		slog.Duration("duration", time.Since(start)))

	return res
}

func (s *Service) resolveMethod(ctx context.Context, name string) entity.Method {
	if strings.TrimSpace(name) == "" {
		return s.config.DefaultMethod
	}
	if m, ok := entity.LookupMethod(name); ok {
		return m
	}
	slog.WarnContext(ctx, "unknown summarization method, falling back to textrank",
		slog.String("method", name))
	metrics.RecordMethodFallback()
	return entity.MethodTextRank
}

func (s *Service) fail(ctx context.Context, err error) entity.SummaryResult {
	slog.WarnContext(ctx, "summarization failed", slog.Any("error", err))
	res := entity.FailedResult(err)
	res.Error = userMessage(err)
	return res
}

func (s *Service) run(ctx context.Context, text string, n int, method entity.Method) (entity.SummaryResult, error) {
	segmented, err := s.segment(ctx, text)
	if err != nil {
		return entity.SummaryResult{}, err
	}

	kept, err := s.Normalizer.Apply(segmented)
	if err != nil {
		return entity.SummaryResult{}, err
	}

	var selected []string
	if method == entity.MethodAbstractive {
		if s.Backend == nil {
			return entity.SummaryResult{}, ErrBackendUnavailable
		}
		raws := make([]string, len(segmented))
		for i, seg := range segmented {
			raws[i] = seg.Raw
		}
		selected, err = s.Backend.Summarize(ctx, text, raws)
	} else {
		selected, err = s.extract(ctx, kept, n, method)
	}
	if err != nil {
		return entity.SummaryResult{}, err
	}

	return assemble(selected, len(segmented), method), nil
}

func (s *Service) segment(ctx context.Context, text string) ([]entity.Sentence, error) {
	_, span := tracing.GetTracer().Start(ctx, "summarize.segment")
	defer span.End()

	segmented, err := sentence.Segment(text)
	span.SetAttributes(attribute.Int("summary.sentences", len(segmented)))
	return segmented, err
}

// extract ranks kept sentences and returns the selected raw sentences in
// document order.
func (s *Service) extract(ctx context.Context, kept []entity.Sentence, n int, method entity.Method) ([]string, error) {
	_, span := tracing.GetTracer().Start(ctx, "summarize.rank",
		trace.WithAttributes(attribute.String("summary.method", string(method))))
	defer span.End()

	space, err := vsm.FromSentences(kept)
	if err != nil {
		return nil, err
	}

	var scores []float64
	switch method {
	case entity.MethodTFIDF:
		scores = rank.TFIDFScores(space)
	default:
		scores = rank.TextRank(rank.SimilarityGraph(space), s.config.TextRank)
	}

	indices := rank.SelectTop(scores, n)
	selected := make([]string, len(indices))
	for i, idx := range indices {
		selected[i] = kept[idx].Raw
	}
	return selected, nil
}

func assemble(selected []string, total int, method entity.Method) entity.SummaryResult {
	return entity.SummaryResult{
		Summary:          strings.Join(selected, " "),
		Sentences:        selected,
		SentenceCount:    total,
		CompressionRatio: compressionRatio(len(selected), total),
		Method:           method,
	}
}

// compressionRatio returns selected/total as a percentage with one decimal,
// rounding halves to even.
func compressionRatio(selected, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.RoundToEven(float64(selected)/float64(total)*1000) / 10
}

func cacheKey(text string, n int, method entity.Method) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(n)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
