package server

import (
	"encoding/json"
	"net/http"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/languages"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/validate"
)

// handleLanguages feeds the profile form's language picker.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, languages.All())
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := session.FromContext(r.Context())
	user, err := s.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeAPIError(w, err, "failed to load profile")
		return
	}
	if user == nil {
		httputil.WriteError(w, http.StatusNotFound, "profile not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in validate.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, fields := validate.Profile(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	claims := session.FromContext(r.Context())
	user, err := s.users.UpdateProfile(r.Context(), claims.UserID, api.ProfileUpdate{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		Language:  in.Language,
		Location:  in.Location,
		Bio:       in.Bio,
	})
	if err != nil {
		writeAPIError(w, err, "failed to update profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in validate.ResetPasswordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, fields := validate.ResetPassword(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	claims := session.FromContext(r.Context())
	if err := s.users.ChangePassword(r.Context(), claims.UserID, in.Password); err != nil {
		writeAPIError(w, err, "failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAccount removes the account remotely, then tears down the
// local session.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := session.FromContext(r.Context())
	if err := s.users.Delete(r.Context(), claims.UserID); err != nil {
		writeAPIError(w, err, "failed to delete account")
		return
	}

	s.tokens.Clear(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
