package summary

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"haberozet/internal/domain/entity"
	"haberozet/internal/handler/http/respond"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/summarize"
)

// Summarizer is the part of summarize.Service the handler needs.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) entity.SummaryResult
}

type CreateHandler struct {
	Svc     Summarizer
	Fetcher fetch.ArticleFetcher // nil disables url input
	// DefaultSentences applies when the request omits sentences.
	DefaultSentences int
	Logger           *slog.Logger
}

// ServeHTTP handles POST /summaries.
//
// 400 for malformed requests, 422 when the article cannot be fetched or
// the text cannot be summarized. A 422 summarization failure still carries
// the full result body with its error field set.
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if strings.TrimSpace(req.Text) == "" && req.URL == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("text or url is required"))
		return
	}
	if req.Sentences == 0 {
		req.Sentences = h.DefaultSentences
	}
	if err := entity.ValidateRequestedSentences(req.Sentences); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	out := Response{Title: req.Title}
	text := req.Text

	if req.URL != "" {
		if h.Fetcher == nil {
			respond.SafeError(w, http.StatusBadRequest, errors.New("url input cannot be used on this server"))
			return
		}
		doc, err := h.Fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			h.logger().WarnContext(r.Context(), "article fetch failed",
				slog.String("url", req.URL),
				slog.Any("error", err))
			respond.SafeError(w, http.StatusUnprocessableEntity,
				respond.NewAppError(http.StatusUnprocessableEntity, fetch.UserMessage(err), err))
			return
		}
		text = doc.Text
		out.URL = doc.URL
		if out.URL == "" {
			out.URL = req.URL
		}
		if out.Title == "" {
			out.Title = doc.Title
		}
	}

	out.SummaryResult = h.Svc.Summarize(r.Context(), summarize.Request{
		Text:           text,
		SentenceTarget: req.Sentences,
		Method:         req.Method,
	})
	if out.Failed() {
		respond.JSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h CreateHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
