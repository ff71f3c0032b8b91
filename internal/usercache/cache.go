// Package usercache holds the display-only dashboard user between page
// loads. Entries are keyed by access-token fingerprint and are never an
// authorization source.
package usercache

import (
	"context"
	"time"

	"gtrac-gateway/internal/model"
)

type Cache interface {
	Get(ctx context.Context, key string) (model.DashboardUser, bool, error)
	Set(ctx context.Context, key string, user model.DashboardUser, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
