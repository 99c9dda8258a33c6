package digest

import (
	"errors"
	"net/http"

	"haberozet/internal/domain/entity"
	"haberozet/internal/handler/http/pathutil"
	"haberozet/internal/handler/http/respond"
	"haberozet/internal/repository"
)

type GetHandler struct{ Repo repository.DigestRepository }

// ServeHTTP handles GET /digests/{id}.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	d, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
			err = errors.New("digest not found")
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(d))
}
