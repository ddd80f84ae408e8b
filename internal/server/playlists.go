package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/validate"
)

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.List(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load playlists")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, err, "failed to load playlist")
		return
	}
	if playlist == nil {
		httputil.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, playlist)
}

func (s *Server) handlePlaylistsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if !validate.IsPlaylistTag(tag) {
		httputil.WriteError(w, http.StatusBadRequest, "unknown playlist tag")
		return
	}
	playlists, err := s.playlists.ByTag(r.Context(), tag)
	if err != nil {
		writeAPIError(w, err, "failed to load playlists")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlaylistInput(w, r)
	if !ok {
		return
	}

	playlist, err := s.playlists.Create(r.Context(), in)
	if err != nil {
		writeAPIError(w, err, "failed to create playlist")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlaylistInput(w, r)
	if !ok {
		return
	}

	playlist, err := s.playlists.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeAPIError(w, err, "failed to update playlist")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.playlists.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAPIError(w, err, "failed to delete playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePlaylistInput(w http.ResponseWriter, r *http.Request) (api.PlaylistInput, bool) {
	var in validate.PlaylistInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return api.PlaylistInput{}, false
	}

	in, fields := validate.Playlist(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return api.PlaylistInput{}, false
	}

	return api.PlaylistInput{
		Title:       in.Title,
		Description: in.Description,
		Tag:         in.Tag,
		VideoIDs:    in.VideoIDs,
	}, true
}
