package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/validate"
)

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videos.List(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load videos")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, videos)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.videos.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, err, "failed to load video")
		return
	}
	if video == nil {
		httputil.WriteError(w, http.StatusNotFound, "video not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, video)
}

func (s *Server) handleVideosByGenre(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videos.ByGenre(r.Context(), chi.URLParam(r, "genre"))
	if err != nil {
		writeAPIError(w, err, "failed to load videos")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, videos)
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeVideoInput(w, r)
	if !ok {
		return
	}

	video, err := s.videos.Create(r.Context(), in)
	if err != nil {
		writeAPIError(w, err, "failed to create video")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, video)
}

func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeVideoInput(w, r)
	if !ok {
		return
	}

	video, err := s.videos.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeAPIError(w, err, "failed to update video")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, video)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.videos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAPIError(w, err, "failed to delete video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeVideoInput parses and validates the upload/edit payload. The
// thumbnail must already be a URL reference here; file staging happens on
// the dedicated thumbnail route first.
func (s *Server) decodeVideoInput(w http.ResponseWriter, r *http.Request) (api.VideoInput, bool) {
	var in validate.VideoUploadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return api.VideoInput{}, false
	}

	in, fields := validate.VideoUpload(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return api.VideoInput{}, false
	}
	if in.Thumbnail.URL == "" {
		httputil.WriteFieldErrors(w, validate.Fields{"thumbnail": "thumbnail must be staged before submitting"})
		return api.VideoInput{}, false
	}

	return api.VideoInput{
		Title:        in.Title,
		Genre:        in.Genre,
		VideoURL:     in.VideoURL,
		TrailerURL:   in.TrailerURL,
		PrerollURL:   in.PrerollURL,
		ThumbnailURL: in.Thumbnail.URL,
		Duration:     in.Duration,
		Description:  in.Description,
		About:        in.About,
		IsSlideshow:  in.IsSlideshow,
		Tags:         in.Tags,
	}, true
}

const maxThumbnailBytes = 5 << 20

// handleUploadThumbnail stages an image in object storage and returns the
// URL reference the upload form then submits as its thumbnail.
func (s *Server) handleUploadThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "thumbnail staging is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxThumbnailBytes); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "thumbnail file is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		httputil.WriteError(w, http.StatusBadRequest, "thumbnail must be a JPEG, PNG, or WebP image")
		return
	}

	key := fmt.Sprintf("thumbnails/%s/%s%s", chi.URLParam(r, "id"), uuid.NewString(), path.Ext(header.Filename))
	if err := s.storage.UploadThumbnail(r.Context(), key, file, contentType, header.Size); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to stage thumbnail")
		return
	}

	url, err := s.storage.ThumbnailURL(r.Context(), key, 7*24*time.Hour)
	if err != nil {
		// The staged object is unreachable without a URL; drop it.
		if delErr := s.storage.DeleteThumbnail(r.Context(), key); delErr != nil {
			slog.Warn("staged thumbnail not cleaned up", "key", key, "error", delErr)
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to stage thumbnail")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"url": url, "key": key})
}
