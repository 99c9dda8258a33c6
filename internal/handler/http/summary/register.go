package summary

import (
	"log/slog"
	"net/http"

	"haberozet/internal/usecase/fetch"
)

// Register mounts POST /summaries on mux.
func Register(mux *http.ServeMux, svc Summarizer, fetcher fetch.ArticleFetcher, defaultSentences int, logger *slog.Logger) {
	mux.Handle("POST /summaries", CreateHandler{
		Svc:              svc,
		Fetcher:          fetcher,
		DefaultSentences: defaultSentences,
		Logger:           logger,
	})
}
