package content

import (
	"context"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
)

type userAPI interface {
	GetUser(ctx context.Context, id string) (*api.User, error)
	UpdateUser(ctx context.Context, id string, in api.ProfileUpdate) (*api.User, error)
	ChangePassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
}

type Users struct {
	api   userAPI
	cache *cache.Store
}

func NewUsers(a userAPI, c *cache.Store) *Users {
	return &Users{api: a, cache: c}
}

// Profile performs no fetch and returns nil, nil when id is empty. Profiles
// ride the cache's staleness window; there is no longer-lived local copy.
func (s *Users) Profile(ctx context.Context, id string) (*api.User, error) {
	if id == "" {
		return nil, nil
	}
	return cache.Fetched(ctx, s.cache, key(ResourceUsers, ScopeID, id),
		func(ctx context.Context) (*api.User, error) {
			return s.api.GetUser(ctx, id)
		})
}

func (s *Users) UpdateProfile(ctx context.Context, id string, in api.ProfileUpdate) (*api.User, error) {
	u, err := s.api.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateKey(key(ResourceUsers, ScopeID, id))
	return u, nil
}

// ChangePassword touches no cached state; profiles never carry credentials.
func (s *Users) ChangePassword(ctx context.Context, id, password string) error {
	return s.api.ChangePassword(ctx, id, password)
}

func (s *Users) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateKey(key(ResourceUsers, ScopeID, id))
	return nil
}
