package content

import (
	"context"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
)

type playlistAPI interface {
	ListPlaylists(ctx context.Context) ([]api.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (*api.Playlist, error)
	ListPlaylistsByTag(ctx context.Context, tag string) ([]api.Playlist, error)
	CreatePlaylist(ctx context.Context, in api.PlaylistInput) (*api.Playlist, error)
	UpdatePlaylist(ctx context.Context, id string, in api.PlaylistInput) (*api.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
}

type Playlists struct {
	api   playlistAPI
	cache *cache.Store
}

func NewPlaylists(a playlistAPI, c *cache.Store) *Playlists {
	return &Playlists{api: a, cache: c}
}

func (s *Playlists) List(ctx context.Context) ([]api.Playlist, error) {
	return cache.Fetched(ctx, s.cache, key(ResourcePlaylists, ScopeAll, ""),
		func(ctx context.Context) ([]api.Playlist, error) {
			return s.api.ListPlaylists(ctx)
		})
}

// Get performs no fetch and returns nil, nil when id is empty.
func (s *Playlists) Get(ctx context.Context, id string) (*api.Playlist, error) {
	if id == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourcePlaylists, ScopeID, id),
		func(ctx context.Context) (*api.Playlist, error) {
			return s.api.GetPlaylist(ctx, id)
		})
}

// ByTag selects the curated home-page sections. Performs no fetch and returns
// nil, nil when tag is empty.
func (s *Playlists) ByTag(ctx context.Context, tag string) ([]api.Playlist, error) {
	if tag == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourcePlaylists, ScopeTag, tag),
		func(ctx context.Context) ([]api.Playlist, error) {
			return s.api.ListPlaylistsByTag(ctx, tag)
		})
}

func (s *Playlists) Create(ctx context.Context, in api.PlaylistInput) (*api.Playlist, error) {
	p, err := s.api.CreatePlaylist(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(func(k cache.Key) bool {
		return k.Resource == ResourcePlaylists && k.Scope != ScopeID
	})
	return p, nil
}

func (s *Playlists) Update(ctx context.Context, id string, in api.PlaylistInput) (*api.Playlist, error) {
	p, err := s.api.UpdatePlaylist(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidatePlaylist(id)
	return p, nil
}

func (s *Playlists) Delete(ctx context.Context, id string) error {
	if err := s.api.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	s.invalidatePlaylist(id)
	return nil
}

func (s *Playlists) invalidatePlaylist(id string) {
	s.cache.Invalidate(func(k cache.Key) bool {
		if k.Resource != ResourcePlaylists {
			return false
		}
		return k.Scope != ScopeID || k.ID == id
	})
}
