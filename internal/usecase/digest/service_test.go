package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
	"haberozet/internal/repository"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/notify"
	"haberozet/internal/usecase/summarize"
)

/* ──────────────────────────────── fakes ──────────────────────────────── */

type stubFeeds struct {
	items map[string][]fetch.FeedItem
	errs  map[string]error
}

func (f *stubFeeds) Read(_ context.Context, feedURL string) ([]fetch.FeedItem, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.items[feedURL], nil
}

type stubArticles struct {
	mu    sync.Mutex
	docs  map[string]*entity.Document
	calls []string
}

func (a *stubArticles) Fetch(_ context.Context, url string) (*entity.Document, error) {
	a.mu.Lock()
	a.calls = append(a.calls, url)
	a.mu.Unlock()
	if doc, ok := a.docs[url]; ok {
		return doc, nil
	}
	return nil, fetch.ErrNotEnoughContent
}

type stubSummarizer struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]bool
}

func (s *stubSummarizer) Summarize(_ context.Context, req summarize.Request) entity.SummaryResult {
	s.mu.Lock()
	s.texts = append(s.texts, req.Text)
	s.mu.Unlock()
	if s.fail[req.Text] {
		return entity.FailedResult(entity.ErrEmptyInput)
	}
	return entity.SummaryResult{
		Summary:          "özet: " + req.Text,
		Sentences:        []string{req.Text},
		SentenceCount:    1,
		CompressionRatio: 100,
		Method:           entity.Method(req.Method),
	}
}

type memRepo struct {
	mu        sync.Mutex
	byURL     map[string]*entity.Digest
	createErr error
	nextID    int64
}

func newMemRepo(existing ...string) *memRepo {
	r := &memRepo{byURL: make(map[string]*entity.Digest)}
	for _, u := range existing {
		r.byURL[u] = &entity.Digest{URL: u}
	}
	return r
}

func (r *memRepo) Create(_ context.Context, d *entity.Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byURL[d.URL]; ok {
		return repository.ErrDuplicate
	}
	r.nextID++
	d.ID = r.nextID
	r.byURL[d.URL] = d
	return nil
}

func (r *memRepo) Get(context.Context, int64) (*entity.Digest, error) {
	return nil, entity.ErrNotFound
}

func (r *memRepo) List(context.Context, repository.DigestFilter) ([]*entity.Digest, error) {
	return nil, nil
}

func (r *memRepo) ExistsByURLBatch(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, u := range urls {
		if _, ok := r.byURL[u]; ok {
			out[u] = true
		}
	}
	return out, nil
}

func (r *memRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byURL)), nil
}

type recordingNotify struct {
	mu  sync.Mutex
	got []string
}

func (n *recordingNotify) NotifyNewDigest(_ context.Context, d *entity.Digest) {
	n.mu.Lock()
	n.got = append(n.got, d.URL)
	n.mu.Unlock()
}

func (n *recordingNotify) ChannelHealth() []notify.ChannelHealthStatus { return nil }

func (n *recordingNotify) Shutdown(context.Context) error { return nil }

/* ──────────────────────────────── tests ──────────────────────────────── */

const feedA = "https://haber.example/rss"

func item(n string, content string) fetch.FeedItem {
	return fetch.FeedItem{
		Title:       "Haber " + n,
		URL:         "https://haber.example/" + n,
		Content:     content,
		PublishedAt: time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC),
	}
}

func TestRun_StoresNewItemsAndSkipsKnownOnes(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{
		feedA: {item("1", "birinci metin"), item("2", "ikinci metin"), item("3", "üçüncü metin")},
	}}
	repo := newMemRepo("https://haber.example/2")
	notifier := &recordingNotify{}
	svc := NewService(feeds, nil, &stubSummarizer{}, repo, notifier, DefaultConfig())

	stats, err := svc.Run(context.Background(), []string{feedA})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Items)
	assert.Equal(t, int64(2), stats.Stored)
	assert.Equal(t, int64(1), stats.Duplicates)
	assert.Equal(t, int64(0), stats.Failed)
	assert.NotEmpty(t, stats.RunID)

	stored := repo.byURL["https://haber.example/1"]
	require.NotNil(t, stored)
	assert.Equal(t, feedA, stored.FeedURL)
	assert.Equal(t, "Haber 1", stored.Title)
	assert.Equal(t, "özet: birinci metin", stored.Summary)
	assert.Equal(t, entity.MethodTextRank, stored.Method)
	assert.ElementsMatch(t, []string{"https://haber.example/1", "https://haber.example/3"}, notifier.got)
}

func TestRun_FetchesShortItemsAndPrefersLongerText(t *testing.T) {
	long := strings.Repeat("Tam metin cümlesi burada yer alıyor. ", 10)
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{
		feedA: {item("1", "kısa özet"), item("2", "kısa içerik")},
	}}
	articles := &stubArticles{docs: map[string]*entity.Document{
		"https://haber.example/1": {Title: "Sayfa başlığı", Text: long},
	}}
	sum := &stubSummarizer{}
	svc := NewService(feeds, articles, sum, newMemRepo(), nil, DefaultConfig())

	stats, err := svc.Run(context.Background(), []string{feedA})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Stored)
	assert.ElementsMatch(t, []string{"https://haber.example/1", "https://haber.example/2"}, articles.calls)
	assert.ElementsMatch(t, []string{long, "kısa içerik"}, sum.texts)
}

func TestRun_SkipsFetchWhenFeedContentIsLongEnough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FetchThreshold = 5
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{feedA: {item("1", "yeterince uzun")}}}
	articles := &stubArticles{}
	svc := NewService(feeds, articles, &stubSummarizer{}, newMemRepo(), nil, cfg)

	_, err := svc.Run(context.Background(), []string{feedA})
	require.NoError(t, err)
	assert.Empty(t, articles.calls)
}

func TestRun_CountsSummarizationFailures(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{
		feedA: {item("1", "iyi"), item("2", "kötü")},
	}}
	sum := &stubSummarizer{fail: map[string]bool{"kötü": true}}
	svc := NewService(feeds, nil, sum, newMemRepo(), nil, DefaultConfig())

	stats, err := svc.Run(context.Background(), []string{feedA})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Stored)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestRun_FeedErrorsDoNotAbort(t *testing.T) {
	const feedB = "https://diger.example/atom"
	feeds := &stubFeeds{
		items: map[string][]fetch.FeedItem{feedB: {item("9", "metin")}},
		errs:  map[string]error{feedA: fetch.ErrFeedFetchFailed},
	}
	svc := NewService(feeds, nil, &stubSummarizer{}, newMemRepo(), nil, DefaultConfig())

	stats, err := svc.Run(context.Background(), []string{feedA, feedB})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Feeds)
	assert.Equal(t, int64(1), stats.FeedErrors)
	assert.Equal(t, int64(1), stats.Stored)
}

func TestRun_StorageErrorAborts(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{feedA: {item("1", "metin")}}}
	repo := newMemRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewService(feeds, nil, &stubSummarizer{}, repo, nil, DefaultConfig())

	_, err := svc.Run(context.Background(), []string{feedA})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store digest")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(&stubFeeds{}, nil, &stubSummarizer{}, newMemRepo(), nil, DefaultConfig())

	_, err := svc.Run(ctx, []string{feedA})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WithPipeline(t *testing.T) {
	text := strings.Join([]string{
		"Merkez Bankası politika faizini yüzde elli seviyesinde sabit tuttu.",
		"Kurul enflasyon beklentilerindeki iyileşmeyi yakından izlediğini açıkladı.",
		"Piyasalar faiz kararını beklendiği şekilde sakin karşıladı.",
		"Ekonomistler faiz indiriminin yaz aylarında başlayabileceğini düşünüyor.",
	}, " ")
	feeds := &stubFeeds{items: map[string][]fetch.FeedItem{feedA: {item("1", text)}}}
	repo := newMemRepo()
	pipeline := summarize.NewService(nil, nil, nil, summarize.DefaultConfig())
	cfg := DefaultConfig()
	cfg.Sentences = 2
	svc := NewService(feeds, nil, pipeline, repo, nil, cfg)

	stats, err := svc.Run(context.Background(), []string{feedA})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Stored)

	stored := repo.byURL["https://haber.example/1"]
	assert.Equal(t, 4, stored.SentenceCount)
	assert.Equal(t, 50.0, stored.CompressionRatio)
	assert.Equal(t, entity.MethodTextRank, stored.Method)
}

func TestNewService_NormalizesConfig(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, Config{Method: "bilinmeyen"})
	assert.Equal(t, 1, svc.config.Parallelism)
	assert.Equal(t, 3, svc.config.Sentences)
	assert.Equal(t, entity.DefaultMethod, svc.config.Method)
}
