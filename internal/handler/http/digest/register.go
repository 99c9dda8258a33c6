// Package digest serves the stored feed digests.
package digest

import (
	"log/slog"
	"net/http"

	"haberozet/internal/repository"
)

// Register mounts the read-only digest routes on mux.
func Register(mux *http.ServeMux, repo repository.DigestRepository, logger *slog.Logger) {
	mux.Handle("GET /digests", ListHandler{Repo: repo, Logger: logger})
	mux.Handle("GET /digests/{id}", GetHandler{Repo: repo})
}
