package api

import "time"

// Records exchanged with the platform API. They carry no behavior; shapes are
// owned by the remote service.

type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	BirthDate     string `json:"birthDate,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Language      string `json:"language,omitempty"`
	Location      string `json:"location,omitempty"`
	Bio           string `json:"bio,omitempty"`
	IsAdmin       bool   `json:"isAdmin"`
	EmailVerified bool   `json:"emailVerified"`
}

type ProfileUpdate struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Language  string `json:"language,omitempty"`
	Location  string `json:"location,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type SignupProfile struct {
	StateRegion        string `json:"stateRegion"`
	Country            string `json:"country"`
	UtilizationPurpose string `json:"utilizationPurpose"`
}

type SignupRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Profile   SignupProfile `json:"profile"`
}

// Session is what the platform returns on successful sign-in/up.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Genre        string    `json:"genre"`
	VideoURL     string    `json:"videoUrl"`
	TrailerURL   string    `json:"trailerUrl"`
	PrerollURL   string    `json:"prerollUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     string    `json:"duration"`
	Description  string    `json:"description"`
	About        string    `json:"about,omitempty"`
	IsSlideshow  bool      `json:"isSlideshow"`
	Tags         []string  `json:"tags,omitempty"`
	IsDeleted    bool      `json:"isDeleted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type VideoInput struct {
	Title        string   `json:"title"`
	Genre        string   `json:"genre"`
	VideoURL     string   `json:"videoUrl"`
	TrailerURL   string   `json:"trailerUrl"`
	PrerollURL   string   `json:"prerollUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	About        string   `json:"about,omitempty"`
	IsSlideshow  bool     `json:"isSlideshow"`
	Tags         []string `json:"tags,omitempty"`
}

type Playlist struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tag         string   `json:"tag"`
	VideoIDs    []string `json:"videoIds"`
	Videos      []Video  `json:"videos,omitempty"`
}

type PlaylistInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tag         string   `json:"tag"`
	VideoIDs    []string `json:"videoIds"`
}

// Moderation lifecycle of a comment. Status only ever advances from pending.
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

type Comment struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	UserID     string    `json:"userId"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserName   string    `json:"userName,omitempty"`
	VideoTitle string    `json:"videoTitle,omitempty"`
}

type CommentInput struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId"`
	Text    string `json:"text"`
}

// FeedbackSubmission covers both the general survey (no video id) and the
// per-film survey.
type FeedbackSubmission struct {
	VideoID     string         `json:"videoId,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	Ratings     map[string]int `json:"ratings"`
	Text        string         `json:"text"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
}

type WatchEvent struct {
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
	VideoTime float64   `json:"videoTime"`
}

type ClientInfo struct {
	UserAgent string `json:"userAgent"`
	Device    string `json:"device"`
	Browser   string `json:"browser"`
	OS        string `json:"os"`
	IP        string `json:"ip"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

type WatchSession struct {
	ID             string       `json:"id"`
	VideoID        string       `json:"videoId"`
	UserID         string       `json:"userId,omitempty"`
	StartedAt      time.Time    `json:"startedAt"`
	EndedAt        *time.Time   `json:"endedAt,omitempty"`
	PercentWatched float64      `json:"percentWatched"`
	Events         []WatchEvent `json:"events,omitempty"`
	Client         ClientInfo   `json:"client"`
}

type WatchSessionUpdate struct {
	EndedAt        *time.Time   `json:"endedAt,omitempty"`
	PercentWatched float64      `json:"percentWatched"`
	Events         []WatchEvent `json:"events,omitempty"`
}

type ShareLink struct {
	Token     string      `json:"token"`
	VideoID   string      `json:"videoId"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	ViewCount int64       `json:"viewCount"`
	Views     []ShareView `json:"views,omitempty"`
}

type ShareLinkInput struct {
	VideoID    string `json:"videoId"`
	ExpiryDays int    `json:"expiryDays,omitempty"`
}

type ShareView struct {
	At         time.Time `json:"at"`
	IP         string    `json:"ip"`
	ViewerHash string    `json:"viewerHash"`
	Unique     bool      `json:"unique"`
	Referrer   string    `json:"referrer,omitempty"`
}
