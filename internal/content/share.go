package content

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
)

type shareAPI interface {
	CreateShareLink(ctx context.Context, in api.ShareLinkInput) (*api.ShareLink, error)
	GetShareLink(ctx context.Context, token string) (*api.ShareLink, error)
	RecordShareView(ctx context.Context, token string, view api.ShareView) error
}

// Shares creates share links and records per-view engagement detail.
type Shares struct {
	api   shareAPI
	cache *cache.Store

	mu   sync.Mutex
	seen map[string]map[string]bool // token -> viewer hash
}

func NewShares(a shareAPI, c *cache.Store) *Shares {
	return &Shares{api: a, cache: c, seen: make(map[string]map[string]bool)}
}

// Create generates a link for a video; expiryDays of zero means no expiry.
func (s *Shares) Create(ctx context.Context, videoID string, expiryDays int) (*api.ShareLink, error) {
	return s.api.CreateShareLink(ctx, api.ShareLinkInput{VideoID: videoID, ExpiryDays: expiryDays})
}

// Get performs no fetch and returns nil, nil when token is empty.
func (s *Shares) Get(ctx context.Context, token string) (*api.ShareLink, error) {
	if token == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceShares, ScopeToken, token),
		func(ctx context.Context) (*api.ShareLink, error) {
			return s.api.GetShareLink(ctx, token)
		})
}

// RecordView reports one view with timestamp, IP, uniqueness and referrer.
// Uniqueness is judged per viewer fingerprint within this process lifetime.
func (s *Shares) RecordView(ctx context.Context, token string, r *http.Request) error {
	ip := ClientIP(r)
	hash := ViewerHash(ip, r.UserAgent())

	s.mu.Lock()
	viewers := s.seen[token]
	if viewers == nil {
		viewers = make(map[string]bool)
		s.seen[token] = viewers
	}
	unique := !viewers[hash]
	viewers[hash] = true
	s.mu.Unlock()

	view := api.ShareView{
		At:         time.Now().UTC(),
		IP:         ip,
		ViewerHash: hash,
		Unique:     unique,
		Referrer:   r.Referer(),
	}
	if err := s.api.RecordShareView(ctx, token, view); err != nil {
		return err
	}
	s.cache.InvalidateKey(key(ResourceShares, ScopeToken, token))
	return nil
}
