package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/content"
	"github.com/reelhouse/reelhouse/internal/export"
	"github.com/reelhouse/reelhouse/internal/httputil"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/validate"
)

// handleListComments returns a video's comments. Pending comments are
// visible only to their author; everyone else sees approved ones.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.ForVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, err, "failed to load comments")
		return
	}

	viewerID := ""
	if claims := s.tokens.Identify(r); claims != nil {
		viewerID = claims.UserID
	}

	visible := make([]api.Comment, 0, len(comments))
	for _, c := range comments {
		switch c.Status {
		case api.CommentApproved:
			visible = append(visible, c)
		case api.CommentPending:
			if viewerID != "" && c.UserID == viewerID {
				visible = append(visible, c)
			}
		}
	}
	httputil.WriteJSON(w, http.StatusOK, visible)
}

type createCommentRequest struct {
	Text string `json:"text"`
}

type createCommentResponse struct {
	Comment *api.Comment `json:"comment"`
	Notice  string       `json:"notice"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, fields := validate.Comment(req.Text)
	if !fields.OK() {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	claims := session.FromContext(r.Context())
	comment, err := s.comments.Create(r.Context(), chi.URLParam(r, "id"), claims.UserID, text)
	if err != nil {
		writeAPIError(w, err, "failed to post comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createCommentResponse{
		Comment: comment,
		Notice:  "Your comment is awaiting moderation.",
	})
}

func (s *Server) handleOwnComments(w http.ResponseWriter, r *http.Request) {
	claims := session.FromContext(r.Context())
	comments, err := s.comments.ForUser(r.Context(), claims.UserID)
	if err != nil {
		writeAPIError(w, err, "failed to load comments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.All(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load comments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

type moderateCommentRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleModerateComment(w http.ResponseWriter, r *http.Request) {
	var req moderateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	comments, err := s.comments.All(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load comments")
		return
	}

	var target *api.Comment
	for i := range comments {
		if comments[i].ID == id {
			target = &comments[i]
			break
		}
	}
	if target == nil {
		httputil.WriteError(w, http.StatusNotFound, "comment not found")
		return
	}

	if err := s.comments.Moderate(r.Context(), *target, req.Status); err != nil {
		if errors.Is(err, content.ErrAlreadyModerated) {
			httputil.WriteError(w, http.StatusConflict, "comment has already been moderated")
			return
		}
		if errors.Is(err, content.ErrInvalidStatus) {
			httputil.WriteError(w, http.StatusBadRequest, "status must be approved or rejected")
			return
		}
		writeAPIError(w, err, "failed to moderate comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.All(r.Context())
	if err != nil {
		writeAPIError(w, err, "failed to load comments")
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.Comments(w, comments); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("comment export failed mid-stream", "error", err)
	}
}
