package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gtrac-gateway/internal/model"
)

type authEventStore interface {
	Insert(ctx context.Context, event model.AuthEvent) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditService writes the authentication audit trail. A nil store turns it
// into a no-op. Inserts run in the background and failures are only logged.
type AuditService struct {
	store     authEventStore
	retention time.Duration
	timeout   time.Duration
	pending   sync.WaitGroup
}

func NewAuditService(store authEventStore, retention time.Duration) *AuditService {
	return &AuditService{store: store, retention: retention, timeout: 5 * time.Second}
}

func (s *AuditService) Enabled() bool {
	return s != nil && s.store != nil
}

func (s *AuditService) Record(ctx context.Context, event model.AuthEvent) {
	if !s.Enabled() {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	// The client may already be gone; the audit row is still wanted.
	writeCtx := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		insertCtx, cancel := context.WithTimeout(writeCtx, s.timeout)
		defer cancel()

		if err := s.store.Insert(insertCtx, event); err != nil {
			slog.Error("failed to record auth event", "action", event.Action, "outcome", event.Outcome, "error", err)
		}
	}()
}

// Wait blocks until every queued insert has finished.
func (s *AuditService) Wait() {
	if !s.Enabled() {
		return
	}
	s.pending.Wait()
}

// Prune removes rows older than the retention window.
func (s *AuditService) Prune(ctx context.Context) (int64, error) {
	if !s.Enabled() || s.retention <= 0 {
		return 0, nil
	}
	return s.store.DeleteBefore(ctx, time.Now().UTC().Add(-s.retention))
}

// StartPruneTicker prunes once per interval until ctx is cancelled.
func (s *AuditService) StartPruneTicker(ctx context.Context, interval time.Duration) {
	if !s.Enabled() || s.retention <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Prune(ctx)
			if err != nil {
				slog.Error("auth event pruning failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("pruned auth events", "removed", removed)
			}
		}
	}
}
