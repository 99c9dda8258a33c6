package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
	"haberozet/internal/usecase/notify"
	"haberozet/internal/usecase/summarize"
)

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, input string) (string, error) { return input, nil }

type stubNotify struct{ health []notify.ChannelHealthStatus }

func (s stubNotify) NotifyNewDigest(context.Context, *entity.Digest) {}
func (s stubNotify) ChannelHealth() []notify.ChannelHealthStatus { return s.health }
func (s stubNotify) Shutdown(context.Context) error { return nil }

func getHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	return rec.Code, body
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestHealthHandler_Database(t *testing.T) {
	tests := []struct {
		name       string
		maxOpen    int
		pingErr    error
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{"healthy", 10, nil, http.StatusOK, "healthy", "healthy"},
		{"pool not configured", 0, nil, http.StatusOK, "healthy", "degraded"},
		{"ping fails", 10, sql.ErrConnDone, http.StatusServiceUnavailable, "unhealthy", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			db.SetMaxOpenConns(tt.maxOpen)
			mock.ExpectPing().WillReturnError(tt.pingErr)

			code, body := getHealth(t, &HealthHandler{DB: db, Version: "1.2.3"})

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDB, body.Checks["database"].Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, body := getHealth(t, &HealthHandler{})

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body.Checks, "database")
	assert.Equal(t, "not configured", body.Checks["abstractive"].Message)
}

func TestHealthHandler_Backend(t *testing.T) {
	cfg := summarize.BackendConfig{TokenBudget: 512}

	_, body := getHealth(t, &HealthHandler{
		Backend: summarize.NewBackend(func(context.Context) (summarize.Generator, error) {
			return nil, errors.New("not loaded")
		}, cfg),
	})
	assert.Equal(t, "degraded", body.Checks["abstractive"].Status)

	code, body := getHealth(t, &HealthHandler{Backend: summarize.NewReadyBackend(stubGenerator{}, cfg)})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Checks["abstractive"].Status)
	assert.Equal(t, summarize.StateReady.String(), body.Checks["abstractive"].Details["state"])
}

func TestHealthHandler_Notifications(t *testing.T) {
	svc := stubNotify{health: []notify.ChannelHealthStatus{
		{Name: "discord", Enabled: true, CircuitBreakerOpen: true},
		{Name: "slack", Enabled: false},
	}}

	code, body := getHealth(t, &HealthHandler{Notify: svc})

	assert.Equal(t, http.StatusOK, code)
	check := body.Checks["notifications"]
	assert.Equal(t, "degraded", check.Status)
	assert.Contains(t, check.Details, "discord")
	assert.Contains(t, check.Details, "slack")
}

func TestHealthHandler_RateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.allow("192.0.2.1")
	rl.allow("192.0.2.2")

	_, body := getHealth(t, &HealthHandler{Limiter: rl})

	assert.Equal(t, 2.0, body.Checks["rate_limiter"].Details["active_clients"])
}

func TestReadyHandler(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	for _, want := range []int{http.StatusOK, http.StatusServiceUnavailable} {
		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, want, rec.Code)
	}

	rec := httptest.NewRecorder()
	(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
