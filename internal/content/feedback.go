package content

import (
	"context"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/validate"
)

type feedbackAPI interface {
	SubmitFeedback(ctx context.Context, in api.FeedbackSubmission) error
	ListFeedback(ctx context.Context) ([]api.FeedbackSubmission, error)
}

// Feedback submits survey results. Submissions are write-once; nothing is
// cached and nothing is invalidated.
type Feedback struct {
	api feedbackAPI
}

func NewFeedback(a feedbackAPI) *Feedback {
	return &Feedback{api: a}
}

func (s *Feedback) SubmitFilm(ctx context.Context, userID string, in validate.FilmFeedbackInput) error {
	return s.api.SubmitFeedback(ctx, api.FeedbackSubmission{
		VideoID: in.VideoID,
		UserID:  userID,
		Ratings: map[string]int{
			"story":   in.Ratings.Story,
			"visuals": in.Ratings.Visuals,
			"audio":   in.Ratings.Audio,
			"pacing":  in.Ratings.Pacing,
			"overall": in.Ratings.Overall,
		},
		Text: in.Text,
	})
}

// All lists every submission for the admin export. Always fetched fresh:
// the export is an audit artifact, not a browsing surface.
func (s *Feedback) All(ctx context.Context) ([]api.FeedbackSubmission, error) {
	return s.api.ListFeedback(ctx)
}

func (s *Feedback) SubmitGeneral(ctx context.Context, userID string, in validate.GeneralFeedbackInput) error {
	return s.api.SubmitFeedback(ctx, api.FeedbackSubmission{
		UserID: userID,
		Ratings: map[string]int{
			"content":     in.Ratings.Content,
			"design":      in.Ratings.Design,
			"performance": in.Ratings.Performance,
			"support":     in.Ratings.Support,
			"overall":     in.Ratings.Overall,
		},
		Text: in.Text,
	})
}
