package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/slogx"
)

// DefaultActivityLimit caps activity feed reads.
const DefaultActivityLimit = 50

// ActivityService appends and reads the per-client activity log.
type ActivityService struct {
	Store store.Store
}

// Record appends an activity entry, best effort. A failed log write never
// fails the operation that produced it, so errors are only logged.
func (s *ActivityService) Record(ctx context.Context, a domain.Activity) {
	if s == nil {
		return
	}
	log := slogx.FromContext(ctx)

	a.ID = idx.New().String()
	a.CreatedAt = time.Now().UTC()

	if err := a.Validate(); err != nil {
		log.Error("dropping malformed activity", slog.Any("error", err))
		return
	}
	if err := s.Store.Activities().CreateActivity(ctx, a); err != nil {
		log.Error("failed to record activity",
			slog.String("client_id", a.ClientID),
			slog.String("kind", string(a.Kind)),
			slog.Any("error", err),
		)
	}
}

// List returns the newest entries for a client.
func (s *ActivityService) List(ctx context.Context, clientID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > DefaultActivityLimit {
		limit = DefaultActivityLimit
	}
	return s.Store.Activities().ListActivitiesByClient(ctx, clientID, limit)
}
