// Package content bridges the presentation layer to the platform API through
// the keyed read cache. Each service exposes parameterized queries (skipped
// entirely when the scoping id is absent) and mutations that invalidate
// exactly the cache keys they touch. Mutation failures propagate to the
// caller; nothing here retries.
package content

import "github.com/reelhouse/reelhouse/internal/cache"

// Cache key resource names.
const (
	ResourceVideos    = "videos"
	ResourcePlaylists = "playlists"
	ResourceComments  = "comments"
	ResourceUsers     = "users"
	ResourceShares    = "shares"
)

// Scope discriminators inside a resource.
const (
	ScopeAll   = "all"
	ScopeID    = "id"
	ScopeGenre = "genre"
	ScopeTag   = "tag"
	ScopeVideo = "video"
	ScopeUser  = "user"
	ScopeToken = "token"
)

func key(resource, scope, id string) cache.Key {
	return cache.Key{Resource: resource, Scope: scope, ID: id}
}
