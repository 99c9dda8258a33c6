package digest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
	"haberozet/internal/handler/http/digest"
	"haberozet/internal/repository"
)

type stubRepo struct {
	repository.DigestRepository
	digests   []*entity.Digest
	gotFilter repository.DigestFilter
	listErr   error
}

func (s *stubRepo) List(_ context.Context, f repository.DigestFilter) ([]*entity.Digest, error) {
	s.gotFilter = f
	return s.digests, s.listErr
}

func (s *stubRepo) Get(_ context.Context, id int64) (*entity.Digest, error) {
	for _, d := range s.digests {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, entity.ErrNotFound
}

var published = time.Date(2026, 2, 25, 9, 30, 0, 0, time.UTC)

func sample() []*entity.Digest {
	return []*entity.Digest{
		{
			ID:               7,
			FeedURL:          "https://haber.example.com/rss",
			URL:              "https://haber.example.com/7",
			Title:            "Merkez Bankası faiz kararını açıkladı",
			Summary:          "Merkez Bankası politika faizini sabit tuttu.",
			Method:           entity.MethodTextRank,
			SentenceCount:    12,
			CompressionRatio: 25,
			PublishedAt:      published,
			CreatedAt:        published.Add(time.Hour),
		},
		{
			ID:        3,
			URL:       "https://haber.example.com/3",
			Summary:   "Yarın İstanbul'da yağmur bekleniyor.",
			Method:    entity.MethodTFIDF,
			CreatedAt: published,
		},
	}
}

func serve(repo *stubRepo, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	digest.Register(mux, repo, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestList(t *testing.T) {
	repo := &stubRepo{digests: sample()}

	rec := serve(repo, "/digests?limit=5&feed=https://haber.example.com/rss")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.DigestFilter{FeedURL: "https://haber.example.com/rss", Limit: 5}, repo.gotFilter)

	var got []digest.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	p := published
	want := []digest.DTO{
		{
			ID:               7,
			FeedURL:          "https://haber.example.com/rss",
			URL:              "https://haber.example.com/7",
			Title:            "Merkez Bankası faiz kararını açıkladı",
			Summary:          "Merkez Bankası politika faizini sabit tuttu.",
			Method:           "textrank",
			SentenceCount:    12,
			CompressionRatio: 25,
			PublishedAt:      &p,
			CreatedAt:        published.Add(time.Hour),
		},
		{
			ID:        3,
			URL:       "https://haber.example.com/3",
			Summary:   "Yarın İstanbul'da yağmur bekleniyor.",
			Method:    "tfidf",
			CreatedAt: published,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("digests mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := serve(&stubRepo{}, "/digests")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-3"} {
		rec := serve(&stubRepo{}, "/digests?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestList_RepoErrorHidden(t *testing.T) {
	rec := serve(&stubRepo{listErr: errors.New("pq: connection refused at 10.0.0.3")}, "/digests")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestGet(t *testing.T) {
	rec := serve(&stubRepo{digests: sample()}, "/digests/3")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3.0, got["id"])
	assert.NotContains(t, got, "published_at")
	assert.NotContains(t, got, "feed_url")
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		path string
		code int
	}{
		{"/digests/99", http.StatusNotFound},
		{"/digests/abc", http.StatusBadRequest},
		{"/digests/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve(&stubRepo{digests: sample()}, tt.path)
		assert.Equal(t, tt.code, rec.Code, tt.path)
	}
}
