package api

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/artifact"
)

// ArtifactsHandler serves downloads of produced audio and text.
type ArtifactsHandler struct {
	store artifact.Store
	log   zerolog.Logger
}

func NewArtifactsHandler(store artifact.Store, log zerolog.Logger) *ArtifactsHandler {
	return &ArtifactsHandler{
		store: store,
		log:   log.With().Str("handler", "artifacts").Logger(),
	}
}

// Routes registers the download endpoint.
func (h *ArtifactsHandler) Routes(r chi.Router) {
	r.Get("/artifacts/{id}/{filename}", h.Download)
}

// Download handles GET /api/v1/artifacts/{id}/{filename}. Object-store
// backends redirect to a presigned URL; the local backend streams the file.
func (h *ArtifactsHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	key, err := artifact.Key(chi.URLParam(r, "id"), filename)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrBadRequest, "invalid artifact id or filename")
		return
	}

	url, err := h.store.URL(r.Context(), key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("failed to presign artifact")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "failed to resolve artifact")
		return
	}
	if url != "" {
		// Presigning does not check the object, so look before redirecting.
		if !h.store.Exists(r.Context(), key) {
			WriteErrorWithCode(w, http.StatusNotFound, ErrNotFound, "artifact not found or expired")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	rc, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			WriteErrorWithCode(w, http.StatusNotFound, ErrNotFound, "artifact not found or expired")
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("failed to open artifact")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "failed to open artifact")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", artifact.ContentType(filename))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Debug().Err(err).Str("key", key).Msg("artifact download interrupted")
	}
}
