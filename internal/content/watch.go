package content

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/geoip"
)

type watchAPI interface {
	CreateWatchSession(ctx context.Context, in api.WatchSession) (*api.WatchSession, error)
	UpdateWatchSession(ctx context.Context, id string, in api.WatchSessionUpdate) error
}

// Watch captures playback telemetry: one session per viewing, updated as
// playback progresses, never deleted from this side.
type Watch struct {
	api watchAPI
	geo *geoip.Resolver
}

func NewWatch(a watchAPI, geo *geoip.Resolver) *Watch {
	return &Watch{api: a, geo: geo}
}

// Start opens a session at playback start, filling in client metadata from
// the request.
func (s *Watch) Start(ctx context.Context, videoID, userID string, r *http.Request) (*api.WatchSession, error) {
	session := api.WatchSession{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    userID,
		StartedAt: time.Now().UTC(),
		Client:    s.clientInfo(r),
	}
	created, err := s.api.CreateWatchSession(ctx, session)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Progress pushes the watched percentage and any new player events. Telemetry
// loss is acceptable: callers on the player surface log and move on.
func (s *Watch) Progress(ctx context.Context, sessionID string, percent float64, events []api.WatchEvent) error {
	return s.api.UpdateWatchSession(ctx, sessionID, api.WatchSessionUpdate{
		PercentWatched: percent,
		Events:         events,
	})
}

// End closes the session with a final percentage.
func (s *Watch) End(ctx context.Context, sessionID string, percent float64) error {
	now := time.Now().UTC()
	return s.api.UpdateWatchSession(ctx, sessionID, api.WatchSessionUpdate{
		EndedAt:        &now,
		PercentWatched: percent,
	})
}

func (s *Watch) clientInfo(r *http.Request) api.ClientInfo {
	info := api.ClientInfo{
		UserAgent: r.UserAgent(),
		IP:        ClientIP(r),
		Device:    "desktop",
	}
	ua := useragent.New(r.UserAgent())
	if ua.Mobile() {
		info.Device = "mobile"
	}
	if ua.Bot() {
		info.Device = "bot"
	}
	browser, version := ua.Browser()
	if browser != "" {
		info.Browser = browser
		if version != "" {
			info.Browser = browser + " " + version
		}
	}
	info.OS = ua.OS()
	if s.geo != nil {
		info.Country, info.City = s.geo.Lookup(info.IP)
	}
	return info
}

// LogUpdateFailure records a lost telemetry write without surfacing it.
func LogUpdateFailure(sessionID string, err error) {
	slog.Warn("watch: telemetry update lost", "session_id", sessionID, "error", err)
}

// ClientIP prefers the first X-Forwarded-For hop over the socket address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}

// ViewerHash is a short stable fingerprint of one viewer for uniqueness
// tracking; it never stores the raw IP.
func ViewerHash(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "|" + userAgent))
	return fmt.Sprintf("%x", h[:8])
}
