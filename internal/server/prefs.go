package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/validate"
)

const visitorCookie = "visitor_id"

// visitorID returns the anonymous visitor identifier, minting the cookie on
// first contact. Local state keys off this id, not the account.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour) / time.Second),
	})
	return id
}

type themeResponse struct {
	DarkMode bool `json:"darkMode"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	dark := s.store.DarkMode(r.Context(), visitorID(w, r))
	httputil.WriteJSON(w, http.StatusOK, themeResponse{DarkMode: dark})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetDarkMode(r.Context(), visitorID(w, r), req.DarkMode); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save theme")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (s *Server) handleGetSignupDraft(w http.ResponseWriter, r *http.Request) {
	draft := s.store.SignupDraft(r.Context(), visitorID(w, r))
	if draft == nil {
		// Absent and unreadable drafts look the same to the form.
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"draft": nil})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleSaveSignupDraft(w http.ResponseWriter, r *http.Request) {
	var draft validate.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Drafts are saved as typed, not validated; a half-filled form is fine.
	if err := s.store.SaveSignupDraft(r.Context(), visitorID(w, r), draft); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSignupDraft(w http.ResponseWriter, r *http.Request) {
	s.store.ClearSignupDraft(r.Context(), visitorID(w, r))
	w.WriteHeader(http.StatusNoContent)
}
