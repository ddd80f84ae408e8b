package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the platform API, one method per remote operation. It does
// no caching and no retries; both are the caller's concern.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Error is a non-2xx platform response. Status is the HTTP status code,
// Message the platform's error string.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("platform API: %d %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &Error{Status: resp.StatusCode, Message: message}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// --- Users & auth ---

func (c *Client) SignUp(ctx context.Context, req SignupRequest) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signin", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/verify-email?token="+url.QueryEscape(token), nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	in := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, "/v1/auth/reset-password", in, nil)
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in ProfileUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, id, password string) error {
	in := map[string]string{"password": password}
	return c.do(ctx, http.MethodPost, "/v1/users/"+url.PathEscape(id)+"/password", in, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil, nil)
}

// --- Videos ---

func (c *Client) ListVideos(ctx context.Context) ([]Video, error) {
	var v []Video
	if err := c.do(ctx, http.MethodGet, "/v1/videos", nil, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) GetVideo(ctx context.Context, id string) (*Video, error) {
	var v Video
	if err := c.do(ctx, http.MethodGet, "/v1/videos/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ListVideosByGenre(ctx context.Context, genre string) ([]Video, error) {
	var v []Video
	if err := c.do(ctx, http.MethodGet, "/v1/videos?genre="+url.QueryEscape(genre), nil, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) CreateVideo(ctx context.Context, in VideoInput) (*Video, error) {
	var v Video
	if err := c.do(ctx, http.MethodPost, "/v1/videos", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateVideo(ctx context.Context, id string, in VideoInput) (*Video, error) {
	var v Video
	if err := c.do(ctx, http.MethodPatch, "/v1/videos/"+url.PathEscape(id), in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVideo soft-deletes; the platform flags the record rather than purging.
func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/videos/"+url.PathEscape(id), nil, nil)
}

// --- Playlists ---

func (c *Client) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	var p []Playlist
	if err := c.do(ctx, http.MethodGet, "/v1/playlists", nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodGet, "/v1/playlists/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListPlaylistsByTag(ctx context.Context, tag string) ([]Playlist, error) {
	var p []Playlist
	if err := c.do(ctx, http.MethodGet, "/v1/playlists?tag="+url.QueryEscape(tag), nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, in PlaylistInput) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodPost, "/v1/playlists", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePlaylist(ctx context.Context, id string, in PlaylistInput) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodPatch, "/v1/playlists/"+url.PathEscape(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/playlists/"+url.PathEscape(id), nil, nil)
}

// --- Comments ---

func (c *Client) ListVideoComments(ctx context.Context, videoID string) ([]Comment, error) {
	var cs []Comment
	if err := c.do(ctx, http.MethodGet, "/v1/videos/"+url.PathEscape(videoID)+"/comments", nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *Client) ListUserComments(ctx context.Context, userID string) ([]Comment, error) {
	var cs []Comment
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/comments", nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *Client) ListAllComments(ctx context.Context) ([]Comment, error) {
	var cs []Comment
	if err := c.do(ctx, http.MethodGet, "/v1/comments", nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// CreateComment has no status parameter; new comments always enter pending.
func (c *Client) CreateComment(ctx context.Context, in CommentInput) (*Comment, error) {
	var cm Comment
	if err := c.do(ctx, http.MethodPost, "/v1/comments", in, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) UpdateCommentStatus(ctx context.Context, id, status string) error {
	in := map[string]string{"status": status}
	return c.do(ctx, http.MethodPost, "/v1/comments/"+url.PathEscape(id)+"/status", in, nil)
}

// --- Feedback ---

func (c *Client) SubmitFeedback(ctx context.Context, in FeedbackSubmission) error {
	return c.do(ctx, http.MethodPost, "/v1/feedback", in, nil)
}

func (c *Client) ListFeedback(ctx context.Context) ([]FeedbackSubmission, error) {
	var subs []FeedbackSubmission
	if err := c.do(ctx, http.MethodGet, "/v1/feedback", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// --- Watch sessions ---

func (c *Client) CreateWatchSession(ctx context.Context, in WatchSession) (*WatchSession, error) {
	var ws WatchSession
	if err := c.do(ctx, http.MethodPost, "/v1/watch-sessions", in, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (c *Client) UpdateWatchSession(ctx context.Context, id string, in WatchSessionUpdate) error {
	return c.do(ctx, http.MethodPatch, "/v1/watch-sessions/"+url.PathEscape(id), in, nil)
}

// --- Share links ---

func (c *Client) CreateShareLink(ctx context.Context, in ShareLinkInput) (*ShareLink, error) {
	var sl ShareLink
	if err := c.do(ctx, http.MethodPost, "/v1/share-links", in, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

func (c *Client) GetShareLink(ctx context.Context, token string) (*ShareLink, error) {
	var sl ShareLink
	if err := c.do(ctx, http.MethodGet, "/v1/share-links/"+url.PathEscape(token), nil, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

func (c *Client) RecordShareView(ctx context.Context, token string, view ShareView) error {
	return c.do(ctx, http.MethodPost, "/v1/share-links/"+url.PathEscape(token)+"/views", view, nil)
}
