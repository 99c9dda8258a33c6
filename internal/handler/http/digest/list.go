package digest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"haberozet/internal/handler/http/respond"
	"haberozet/internal/repository"
)

type ListHandler struct {
	Repo   repository.DigestRepository
	Logger *slog.Logger
}

// ServeHTTP handles GET /digests?limit=N&feed=URL.
// The repository clamps the limit; anything that is not a positive integer is rejected.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DigestFilter{FeedURL: q.Get("feed")}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respond.SafeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	digests, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "failed to list digests", slog.Any("error", err))
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(digests))
	for _, d := range digests {
		out = append(out, toDTO(d))
	}
	respond.JSON(w, http.StatusOK, out)
}
