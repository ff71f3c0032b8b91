package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gtrac-gateway/internal/model"
)

type AuthEventRepository struct {
	pool *pgxpool.Pool
}

func NewAuthEventRepository(pool *pgxpool.Pool) *AuthEventRepository {
	return &AuthEventRepository{pool: pool}
}

func (r *AuthEventRepository) Insert(ctx context.Context, event model.AuthEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_events
		 (id, action, outcome, email, token_fingerprint, client_ip, http_status, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, string(event.Action), event.Outcome, event.Email,
		event.TokenFingerprint, event.ClientIP, event.HTTPStatus, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// DeleteBefore prunes rows older than cutoff and reports how many went.
func (r *AuthEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune auth events: %w", err)
	}
	return tag.RowsAffected(), nil
}
