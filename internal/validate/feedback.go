package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FilmRatings are the five 1-5 scores collected on the per-film survey.
type FilmRatings struct {
	Story   int `json:"story"`
	Visuals int `json:"visuals"`
	Audio   int `json:"audio"`
	Pacing  int `json:"pacing"`
	Overall int `json:"overall"`
}

// SiteRatings are the five 1-5 scores collected on the general survey.
type SiteRatings struct {
	Content     int `json:"content"`
	Design      int `json:"design"`
	Performance int `json:"performance"`
	Support     int `json:"support"`
	Overall     int `json:"overall"`
}

type FilmFeedbackInput struct {
	VideoID string      `json:"videoId"`
	Ratings FilmRatings `json:"ratings"`
	Text    string      `json:"text"`
}

type GeneralFeedbackInput struct {
	Ratings SiteRatings `json:"ratings"`
	Text    string      `json:"text"`
}

func feedbackText(s string) string {
	if utf8.RuneCountInString(s) < MinFeedbackTextLength {
		return fmt.Sprintf("feedback must be at least %d characters", MinFeedbackTextLength)
	}
	return ""
}

func FilmFeedback(in FilmFeedbackInput) (FilmFeedbackInput, Fields) {
	in.Text = strings.TrimSpace(in.Text)

	fields := Fields{}
	if in.VideoID == "" {
		fields.add("videoId", "video is required")
	}
	fields.add("ratings.story", rating(in.Ratings.Story, "story"))
	fields.add("ratings.visuals", rating(in.Ratings.Visuals, "visuals"))
	fields.add("ratings.audio", rating(in.Ratings.Audio, "audio"))
	fields.add("ratings.pacing", rating(in.Ratings.Pacing, "pacing"))
	fields.add("ratings.overall", rating(in.Ratings.Overall, "overall"))
	fields.add("text", feedbackText(in.Text))
	return in, fields
}

func GeneralFeedback(in GeneralFeedbackInput) (GeneralFeedbackInput, Fields) {
	in.Text = strings.TrimSpace(in.Text)

	fields := Fields{}
	fields.add("ratings.content", rating(in.Ratings.Content, "content"))
	fields.add("ratings.design", rating(in.Ratings.Design, "design"))
	fields.add("ratings.performance", rating(in.Ratings.Performance, "performance"))
	fields.add("ratings.support", rating(in.Ratings.Support, "support"))
	fields.add("ratings.overall", rating(in.Ratings.Overall, "overall"))
	fields.add("text", feedbackText(in.Text))
	return in, fields
}
