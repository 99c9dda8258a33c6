package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"haberozet/internal/handler/http/respond"
	"haberozet/internal/usecase/digest"
	"haberozet/internal/usecase/notify"
)

// HealthServer serves the worker probes:
//   - GET /health: liveness, always 200
//   - GET /health/ready: 200 once the scheduler runs, 503 before
//   - GET /health/last-run: outcome of the most recent digest, 404 before the first
//   - GET /health/channels: notification channel breakers, 503 if an enabled one is open
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	notify  notify.Service
	isReady atomic.Bool
	server  *http.Server

	mu      sync.RWMutex
	lastRun *LastRun
}

// LastRun is the JSON body of /health/last-run.
type LastRun struct {
	FinishedAt time.Time `json:"finished_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	Stored     int64     `json:"stored"`
	Duplicates int64     `json:"duplicates"`
	Failed     int64     `json:"failed"`
	FeedErrors int64     `json:"feed_errors"`
	DurationMS int64     `json:"duration_ms"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type channelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// NewHealthServer creates a server that is not ready and not started.
// notifyService may be nil.
func NewHealthServer(addr string, notifyService notify.Service, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, notify: notifyService, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/last-run", h.handleLastRun)
	mux.HandleFunc("GET /health/channels", h.handleChannels)
	return mux
}

// Start serves until ctx is canceled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the outcome of a digest run. stats may be nil on error.
func (h *HealthServer) RecordRun(stats *digest.RunStats, err error) {
	run := &LastRun{FinishedAt: time.Now().UTC(), Success: err == nil}
	if err != nil {
		run.Error = respond.SanitizeError(err)
	}
	if stats != nil {
		run.RunID = stats.RunID
		run.Stored = stats.Stored
		run.Duplicates = stats.Duplicates
		run.Failed = stats.Failed
		run.FeedErrors = stats.FeedErrors
		run.DurationMS = stats.Duration.Milliseconds()
	}

	h.mu.Lock()
	h.lastRun = run
	h.mu.Unlock()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

func (h *HealthServer) handleLastRun(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	run := h.lastRun
	h.mu.RUnlock()

	if run == nil {
		h.writeJSON(w, http.StatusNotFound, healthResponse{Status: "no run yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

func (h *HealthServer) handleChannels(w http.ResponseWriter, _ *http.Request) {
	if h.notify == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "notification service not initialized",
		})
		return
	}

	resp := channelHealthResponse{Healthy: true, Channels: h.notify.ChannelHealth()}
	for _, ch := range resp.Channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			resp.Healthy = false
		}
	}
	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
