// Package http serves the summarization API: POST /summaries, the stored
// digest listing, health probes and Prometheus metrics.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"haberozet/internal/handler/http/respond"
	"haberozet/internal/usecase/notify"
	"haberozet/internal/usecase/summarize"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the outcome of a single health check.
// Status is "healthy", "degraded" or "unhealthy".
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports the database, the abstractive backend and the
// notification channels. Only an unreachable database is unhealthy; the
// database is optional since summarization works without it.
type HealthHandler struct {
	DB      *sql.DB
	Backend *summarize.Backend
	Notify  notify.Service
	Limiter *RateLimiter
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	healthy := true

	if h.DB != nil {
		db := h.checkDatabase(ctx)
		checks["database"] = db
		healthy = db.Status != "unhealthy"
	}

	checks["abstractive"] = h.checkBackend()

	if h.Notify != nil {
		checks["notifications"] = checkNotify(h.Notify)
	}

	if h.Limiter != nil {
		checks["rate_limiter"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"active_clients": h.Limiter.Clients()},
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func (h *HealthHandler) checkBackend() CheckStatus {
	if h.Backend == nil {
		return CheckStatus{Status: "healthy", Message: "not configured"}
	}
	state := h.Backend.State()
	if state != summarize.StateReady {
		return CheckStatus{Status: "degraded", Details: map[string]any{"state": state.String()}}
	}
	return CheckStatus{Status: "healthy", Details: map[string]any{"state": state.String()}}
}

func checkNotify(svc notify.Service) CheckStatus {
	check := CheckStatus{Status: "healthy", Details: map[string]any{}}
	for _, ch := range svc.ChannelHealth() {
		check.Details[ch.Name] = ch
		if ch.Enabled && ch.CircuitBreakerOpen {
			check.Status = "degraded"
		}
	}
	return check
}

// ReadyHandler answers readiness probes: ready when the database, if any, answers a ping.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
