package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/content"
	"github.com/reelhouse/reelhouse/internal/httputil"
)

type startWatchRequest struct {
	VideoID string `json:"videoId"`
}

func (s *Server) handleStartWatchSession(w http.ResponseWriter, r *http.Request) {
	var req startWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	userID := ""
	if claims := s.tokens.Identify(r); claims != nil {
		userID = claims.UserID
	}

	watchSession, err := s.watch.Start(r.Context(), req.VideoID, userID, r)
	if err != nil {
		writeAPIError(w, err, "failed to start watch session")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, watchSession)
}

type watchProgressRequest struct {
	PercentWatched float64          `json:"percentWatched"`
	Events         []api.WatchEvent `json:"events,omitempty"`
}

// Watch telemetry is fire and forget: a lost update is logged, never
// surfaced to the player.
func (s *Server) handleWatchProgress(w http.ResponseWriter, r *http.Request) {
	var req watchProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.watch.Progress(r.Context(), id, req.PercentWatched, req.Events); err != nil {
		content.LogUpdateFailure(id, err)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEndWatchSession(w http.ResponseWriter, r *http.Request) {
	var req watchProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.watch.End(r.Context(), id, req.PercentWatched); err != nil {
		content.LogUpdateFailure(id, err)
	}
	w.WriteHeader(http.StatusAccepted)
}

type createShareLinkRequest struct {
	VideoID    string `json:"videoId"`
	ExpiryDays int    `json:"expiryDays,omitempty"`
}

func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request) {
	var req createShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	link, err := s.shares.Create(r.Context(), req.VideoID, req.ExpiryDays)
	if err != nil {
		writeAPIError(w, err, "failed to create share link")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, link)
}

var watchPageTemplate = template.Must(template.New("watch").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Reelhouse</title>
<style nonce="{{.Nonce}}">
body { margin: 0; background: #0c0c0f; color: #eee; font-family: system-ui, sans-serif; }
main { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
video { width: 100%; border-radius: 8px; background: #000; }
h1 { font-size: 1.4rem; }
p.description { color: #aaa; line-height: 1.5; }
</style>
</head>
<body>
<main>
<video controls preload="metadata" poster="{{.ThumbnailURL}}" src="{{.VideoURL}}"></video>
<h1>{{.Title}}</h1>
<p class="description">{{.Description}}</p>
</main>
</body>
</html>
`))

type watchPageData struct {
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Nonce        string
}

// handleShareWatchPage serves the public player page behind a share token
// and records the view.
func (s *Server) handleShareWatchPage(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := s.shares.Get(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, http.StatusBadGateway, "failed to load share link")
		return
	}
	if link == nil {
		http.NotFound(w, r)
		return
	}
	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		http.Error(w, "This share link has expired.", http.StatusGone)
		return
	}

	video, err := s.videos.Get(r.Context(), link.VideoID)
	if err != nil || video == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.shares.RecordView(r.Context(), token, r); err != nil {
		slog.Warn("share view not recorded", "token", token, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := watchPageData{
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Nonce:        httputil.NonceFromContext(r.Context()),
	}
	if err := watchPageTemplate.Execute(w, data); err != nil {
		slog.Error("watch page render failed", "token", token, "error", err)
	}
}
