package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
)

// ErrAlreadyModerated is returned when a moderation call targets a comment
// that has already left the pending state; moderation never reverses.
var ErrAlreadyModerated = errors.New("comment has already been moderated")

// ErrInvalidStatus is returned when a moderation call names a status other
// than approved or rejected.
var ErrInvalidStatus = errors.New("invalid moderation status")

type commentAPI interface {
	ListVideoComments(ctx context.Context, videoID string) ([]api.Comment, error)
	ListUserComments(ctx context.Context, userID string) ([]api.Comment, error)
	ListAllComments(ctx context.Context) ([]api.Comment, error)
	CreateComment(ctx context.Context, in api.CommentInput) (*api.Comment, error)
	UpdateCommentStatus(ctx context.Context, id, status string) error
}

type Comments struct {
	api   commentAPI
	cache *cache.Store
}

func NewComments(a commentAPI, c *cache.Store) *Comments {
	return &Comments{api: a, cache: c}
}

// ForVideo performs no fetch and returns nil, nil when videoID is empty.
func (s *Comments) ForVideo(ctx context.Context, videoID string) ([]api.Comment, error) {
	if videoID == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceComments, ScopeVideo, videoID),
		func(ctx context.Context) ([]api.Comment, error) {
			return s.api.ListVideoComments(ctx, videoID)
		})
}

// ForUser performs no fetch and returns nil, nil when userID is empty.
func (s *Comments) ForUser(ctx context.Context, userID string) ([]api.Comment, error) {
	if userID == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceComments, ScopeUser, userID),
		func(ctx context.Context) ([]api.Comment, error) {
			return s.api.ListUserComments(ctx, userID)
		})
}

// All is the admin management view and includes pending comments.
func (s *Comments) All(ctx context.Context) ([]api.Comment, error) {
	return cache.Fetched(ctx, s.cache, key(ResourceComments, ScopeAll, ""),
		func(ctx context.Context) ([]api.Comment, error) {
			return s.api.ListAllComments(ctx)
		})
}

// Create submits a new comment. The platform assigns pending status; there is
// deliberately no way to pass a status here.
func (s *Comments) Create(ctx context.Context, videoID, userID, text string) (*api.Comment, error) {
	c, err := s.api.CreateComment(ctx, api.CommentInput{VideoID: videoID, UserID: userID, Text: text})
	if err != nil {
		return nil, err
	}
	s.invalidateComments(videoID)
	return c, nil
}

// Moderate advances a pending comment to approved or rejected. The snapshot's
// status guards against re-moderation; the transition is never reversed.
func (s *Comments) Moderate(ctx context.Context, comment api.Comment, status string) error {
	if status != api.CommentApproved && status != api.CommentRejected {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if comment.Status != api.CommentPending {
		return ErrAlreadyModerated
	}
	if err := s.api.UpdateCommentStatus(ctx, comment.ID, status); err != nil {
		return err
	}
	s.invalidateComments(comment.VideoID)
	return nil
}

// invalidateComments drops the all-comments and per-user comment caches, plus
// the one video-scoped cache when a videoID is present. Other videos' comment
// caches are untouched.
func (s *Comments) invalidateComments(videoID string) {
	s.cache.Invalidate(func(k cache.Key) bool {
		if k.Resource != ResourceComments {
			return false
		}
		if k.Scope == ScopeVideo {
			return videoID != "" && k.ID == videoID
		}
		return true
	})
}
