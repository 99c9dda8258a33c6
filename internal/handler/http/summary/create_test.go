package summary_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
	"haberozet/internal/handler/http/summary"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/summarize"
)

type stubSummarizer struct {
	got    summarize.Request
	result entity.SummaryResult
}

func (s *stubSummarizer) Summarize(_ context.Context, req summarize.Request) entity.SummaryResult {
	s.got = req
	return s.result
}

type stubFetcher struct {
	doc *entity.Document
	err error
}

func (s stubFetcher) Fetch(_ context.Context, _ string) (*entity.Document, error) {
	return s.doc, s.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/summaries", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func okResult() entity.SummaryResult {
	return entity.SummaryResult{
		Summary:          "Birinci cümle burada yer alıyor.",
		Sentences:        []string{"Birinci cümle burada yer alıyor."},
		SentenceCount:    3,
		CompressionRatio: 33.3,
		Method:           entity.MethodTextRank,
	}
}

func TestCreateHandler_Text(t *testing.T) {
	svc := &stubSummarizer{result: okResult()}
	h := summary.CreateHandler{Svc: svc, DefaultSentences: 3}

	rec := post(t, h, `{"text":"bir metin","sentences":1,"method":"tfidf"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, summarize.Request{Text: "bir metin", SentenceTarget: 1, Method: "tfidf"}, svc.got)
	out := decode(t, rec)
	assert.Equal(t, "Birinci cümle burada yer alıyor.", out["summary"])
	assert.Equal(t, 33.3, out["compression_ratio"])
	assert.NotContains(t, out, "error")
	assert.NotContains(t, out, "url")
}

func TestCreateHandler_DefaultSentences(t *testing.T) {
	svc := &stubSummarizer{result: okResult()}
	h := summary.CreateHandler{Svc: svc, DefaultSentences: 4}

	rec := post(t, h, `{"text":"bir metin"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, svc.got.SentenceTarget)
}

func TestCreateHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"text":`, "invalid request body"},
		{"no input", `{"sentences":2}`, "text or url is required"},
		{"blank text", `{"text":"   "}`, "text or url is required"},
		{"too many sentences", `{"text":"x","sentences":99}`, "must not exceed"},
		{"just above api cap", `{"text":"x","sentences":11}`, "must not exceed 10"},
		{"negative sentences", `{"text":"x","sentences":-1}`, "must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubSummarizer{result: okResult()}
			rec := post(t, summary.CreateHandler{Svc: svc, DefaultSentences: 3}, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], tt.want)
			assert.Empty(t, svc.got.Text)
		})
	}
}

func TestCreateHandler_URL(t *testing.T) {
	svc := &stubSummarizer{result: okResult()}
	h := summary.CreateHandler{
		Svc: svc,
		Fetcher: stubFetcher{doc: &entity.Document{
			Title: "Deprem sonrası son durum",
			Text:  "çekilen haber metni",
			URL:   "https://haber.example.com/a",
		}},
		DefaultSentences: 3,
	}

	rec := post(t, h, `{"url":"https://haber.example.com/a","text":"yok sayılır"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "çekilen haber metni", svc.got.Text)
	out := decode(t, rec)
	assert.Equal(t, "Deprem sonrası son durum", out["title"])
	assert.Equal(t, "https://haber.example.com/a", out["url"])
}

func TestCreateHandler_URLKeepsRequestTitle(t *testing.T) {
	h := summary.CreateHandler{
		Svc:              &stubSummarizer{result: okResult()},
		Fetcher:          stubFetcher{doc: &entity.Document{Title: "Sayfa başlığı", Text: "metin"}},
		DefaultSentences: 3,
	}

	rec := post(t, h, `{"url":"https://haber.example.com/b","title":"Kendi başlığım"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "Kendi başlığım", out["title"])
	assert.Equal(t, "https://haber.example.com/b", out["url"])
}

func TestCreateHandler_FetchError(t *testing.T) {
	svc := &stubSummarizer{result: okResult()}
	h := summary.CreateHandler{
		Svc:              svc,
		Fetcher:          stubFetcher{err: fetch.ErrNotEnoughContent},
		DefaultSentences: 3,
	}

	rec := post(t, h, `{"url":"https://haber.example.com/a"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Yeterli içerik bulunamadı", decode(t, rec)["error"])
	assert.Empty(t, svc.got.Text)
}

func TestCreateHandler_URLWithoutFetcher(t *testing.T) {
	rec := post(t, summary.CreateHandler{Svc: &stubSummarizer{}, DefaultSentences: 3},
		`{"url":"https://haber.example.com/a"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHandler_SummarizationFailure(t *testing.T) {
	svc := &stubSummarizer{result: entity.FailedResult(entity.ErrEmptyInput)}
	h := summary.CreateHandler{Svc: svc, DefaultSentences: 3}

	rec := post(t, h, `{"text":"kısa"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, entity.ErrEmptyInput.Error(), out["error"])
	assert.Equal(t, "", out["summary"])
	assert.Equal(t, []any{}, out["sentences"])
	assert.Equal(t, 0.0, out["sentence_count"])
}

func TestCreateHandler_WithPipeline(t *testing.T) {
	svc := summarize.NewService(nil, nil, nil, summarize.DefaultConfig())
	mux := http.NewServeMux()
	summary.Register(mux, svc, nil, 3, nil)

	text := "Ankara'da bugün önemli bir toplantı gerçekleştirildi. " +
		"Toplantıya birçok bakan ve milletvekili katıldı. " +
		"Hava durumu yarın için yağmurlu olarak tahmin ediliyor."
	body, err := json.Marshal(summary.Request{Text: text, Sentences: 1, Method: "tfidf"})
	require.NoError(t, err)

	rec := post(t, mux, string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, 3.0, out["sentence_count"])
	assert.Equal(t, 33.3, out["compression_ratio"])
	assert.Equal(t, "tfidf", out["method"])
	assert.Len(t, out["sentences"], 1)
}
