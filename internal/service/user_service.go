package service

import (
	"context"
	"log/slog"
	"time"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/session"
	"gtrac-gateway/internal/usercache"
)

// UserService resolves the dashboard user for display. RefreshUser is the
// only writer of the cache; Invalidate is called on logout and refresh.
type UserService struct {
	backend *backend.Client
	cache   usercache.Cache
	ttl     time.Duration
	now     func() time.Time
}

func NewUserService(client *backend.Client, cache usercache.Cache, ttl time.Duration) *UserService {
	if cache == nil {
		cache = usercache.NewMemory()
	}
	return &UserService{backend: client, cache: cache, ttl: ttl, now: time.Now}
}

// Current is a read-through lookup. Cache failures degrade to a backend call.
func (s *UserService) Current(ctx context.Context, accessToken string) (model.DashboardUser, error) {
	key := session.Fingerprint(accessToken)

	user, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("user cache read failed", "error", err)
	}
	if ok {
		return user, nil
	}

	return s.RefreshUser(ctx, accessToken)
}

// RefreshUser fetches the current user from the backend, validates it and
// stores it for at most the remaining lifetime of the access token.
func (s *UserService) RefreshUser(ctx context.Context, accessToken string) (model.DashboardUser, error) {
	var payload model.BackendUser
	if err := s.backend.GetJSON(ctx, backend.CurrentUserPath, nil, accessToken, &payload); err != nil {
		return model.DashboardUser{}, err
	}

	user, err := payload.ToDashboardUser()
	if err != nil {
		return model.DashboardUser{}, err
	}

	if err := s.cache.Set(ctx, session.Fingerprint(accessToken), user, s.entryTTL(accessToken)); err != nil {
		slog.Warn("user cache write failed", "error", err)
	}

	return user, nil
}

func (s *UserService) Invalidate(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.cache.Delete(ctx, session.Fingerprint(accessToken)); err != nil {
		slog.Warn("user cache invalidation failed", "error", err)
	}
}

func (s *UserService) entryTTL(accessToken string) time.Duration {
	ttl := s.ttl
	if exp, ok := session.DecodeExpiry(accessToken); ok {
		if remaining := exp.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}
