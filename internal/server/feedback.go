package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelhouse/reelhouse/internal/export"
	"github.com/reelhouse/reelhouse/internal/form"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/validate"
)

func (s *Server) handleFilmFeedback(w http.ResponseWriter, r *http.Request) {
	var in validate.FilmFeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.VideoID = chi.URLParam(r, "id")

	claims := session.FromContext(r.Context())
	var fields validate.Fields
	ctrl := s.forms.Get("feedback:film:" + claims.UserID)
	err := ctrl.Submit(r.Context(),
		func() map[string]string {
			in, fields = validate.FilmFeedback(in)
			return fields
		},
		func(ctx context.Context) error {
			return s.feedback.SubmitFilm(ctx, claims.UserID, in)
		})
	s.writeFeedbackResult(w, err, fields)
}

func (s *Server) handleGeneralFeedback(w http.ResponseWriter, r *http.Request) {
	var in validate.GeneralFeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := session.FromContext(r.Context())
	var fields validate.Fields
	ctrl := s.forms.Get("feedback:general:" + claims.UserID)
	err := ctrl.Submit(r.Context(),
		func() map[string]string {
			in, fields = validate.GeneralFeedback(in)
			return fields
		},
		func(ctx context.Context) error {
			return s.feedback.SubmitGeneral(ctx, claims.UserID, in)
		})
	s.writeFeedbackResult(w, err, fields)
}

func (s *Server) writeFeedbackResult(w http.ResponseWriter, err error, fields validate.Fields) {
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Thank you for your feedback."})
	case errors.Is(err, form.ErrSubmitInFlight):
		httputil.WriteError(w, http.StatusConflict, "a submission is already in progress")
	case errors.Is(err, form.ErrInvalid):
		httputil.WriteFieldErrors(w, fields)
	default:
		writeAPIError(w, err, "failed to submit feedback")
	}
}

func (s *Server) handleExportFeedback(w http.ResponseWriter, r *http.Request) {
	subs, err := s.feedback.All(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load feedback")
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.Feedback(w, subs); err != nil {
		slog.Error("feedback export failed mid-stream", "error", err)
	}
}
