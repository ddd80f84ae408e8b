package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/validate"
)

type signInResponse struct {
	User     *api.User `json:"user"`
	Redirect string    `json:"redirect"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in validate.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Weak or incomplete payloads never reach the platform API.
	in, fields := validate.Signup(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	user, err := s.auth.SignUp(r.Context(), api.SignupRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Profile: api.SignupProfile{
			StateRegion:        in.Profile.StateRegion,
			Country:            in.Profile.Country,
			UtilizationPurpose: in.Profile.UtilizationPurpose,
		},
	})
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			httputil.WriteError(w, http.StatusBadRequest, authErr.Message)
			return
		}
		httputil.WriteError(w, http.StatusBadGateway, "signup failed")
		return
	}

	if err := s.tokens.Issue(r.Context(), w, user); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}
	s.store.ClearSignupDraft(r.Context(), visitorID(w, r))

	httputil.WriteJSON(w, http.StatusCreated, signInResponse{
		User:     user,
		Redirect: session.ConsumeIntendedPath(w, r),
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in validate.SignInInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, fields := validate.SignIn(in)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}
	from := r.URL.Query().Get("from")

	user, err := s.auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		// Keep this visitor's destination for the retry.
		session.RecordIntendedPath(w, from)
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			httputil.WriteError(w, http.StatusUnauthorized, authErr.Message)
			return
		}
		httputil.WriteError(w, http.StatusBadGateway, "sign-in failed")
		return
	}

	if err := s.tokens.Issue(r.Context(), w, user); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	redirect := session.ConsumeIntendedPath(w, r)
	if session.AllowedIntendedPath(from) {
		redirect = from
	}
	httputil.WriteJSON(w, http.StatusOK, signInResponse{
		User:     user,
		Redirect: redirect,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.tokens.Clear(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.tokens.Refresh(r.Context(), w, r); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Token string `json:"token"`
	validate.ResetPasswordInput
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		httputil.WriteError(w, http.StatusBadRequest, "reset token is required")
		return
	}

	in, fields := validate.ResetPassword(req.ResetPasswordInput)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.Token, in.Password); err != nil {
		writeAPIError(w, err, "password reset failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.WriteError(w, http.StatusBadRequest, "verification token is required")
		return
	}

	if err := s.accounts.VerifyEmail(r.Context(), token); err != nil {
		writeAPIError(w, err, "email verification failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// writeAPIError maps a platform API failure onto our response: the remote
// status and message pass through, anything else is a 502.
func writeAPIError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		httputil.WriteError(w, apiErr.Status, apiErr.Message)
		return
	}
	httputil.WriteError(w, http.StatusBadGateway, fallback)
}
