package content

import (
	"context"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
)

type videoAPI interface {
	ListVideos(ctx context.Context) ([]api.Video, error)
	GetVideo(ctx context.Context, id string) (*api.Video, error)
	ListVideosByGenre(ctx context.Context, genre string) ([]api.Video, error)
	CreateVideo(ctx context.Context, in api.VideoInput) (*api.Video, error)
	UpdateVideo(ctx context.Context, id string, in api.VideoInput) (*api.Video, error)
	DeleteVideo(ctx context.Context, id string) error
}

type Videos struct {
	api   videoAPI
	cache *cache.Store
}

func NewVideos(a videoAPI, c *cache.Store) *Videos {
	return &Videos{api: a, cache: c}
}

func (s *Videos) List(ctx context.Context) ([]api.Video, error) {
	return cache.Fetched(ctx, s.cache, key(ResourceVideos, ScopeAll, ""),
		func(ctx context.Context) ([]api.Video, error) {
			return s.api.ListVideos(ctx)
		})
}

// Get performs no fetch and returns nil, nil when id is empty.
func (s *Videos) Get(ctx context.Context, id string) (*api.Video, error) {
	if id == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceVideos, ScopeID, id),
		func(ctx context.Context) (*api.Video, error) {
			return s.api.GetVideo(ctx, id)
		})
}

// ByGenre performs no fetch and returns nil, nil when genre is empty.
func (s *Videos) ByGenre(ctx context.Context, genre string) ([]api.Video, error) {
	if genre == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceVideos, ScopeGenre, genre),
		func(ctx context.Context) ([]api.Video, error) {
			return s.api.ListVideosByGenre(ctx, genre)
		})
}

func (s *Videos) Create(ctx context.Context, in api.VideoInput) (*api.Video, error) {
	v, err := s.api.CreateVideo(ctx, in)
	if err != nil {
		return nil, err
	}
	// Lists only; no id-scoped entry can exist for a brand-new video.
	s.cache.Invalidate(func(k cache.Key) bool {
		return k.Resource == ResourceVideos && k.Scope != ScopeID
	})
	return v, nil
}

func (s *Videos) Update(ctx context.Context, id string, in api.VideoInput) (*api.Video, error) {
	v, err := s.api.UpdateVideo(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateVideo(id)
	return v, nil
}

// Delete soft-deletes the video on the platform.
func (s *Videos) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteVideo(ctx, id); err != nil {
		return err
	}
	s.invalidateVideo(id)
	return nil
}

func (s *Videos) invalidateVideo(id string) {
	s.cache.Invalidate(func(k cache.Key) bool {
		if k.Resource != ResourceVideos {
			return false
		}
		return k.Scope != ScopeID || k.ID == id
	})
}
