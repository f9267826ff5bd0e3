package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/notify"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/slogx"
)

// TopQueriesLimit is how many entries the dashboard ranking shows.
const TopQueriesLimit = 5

// StatsService ingests widget interactions and computes dashboard metrics.
type StatsService struct {
	Store    store.Store
	Notifier notify.Notifier
}

// Ingest records one widget exchange, keyed by the public agent slug so the
// widget needs no credentials beyond knowing its own embed attributes.
func (s *StatsService) Ingest(ctx context.Context, agentSlug, query string, responseTimeMS int64) error {
	log := slogx.FromContext(ctx)

	query = strings.TrimSpace(query)
	if agentSlug == "" || query == "" {
		return ErrInvalidRequest
	}
	if responseTimeMS < 0 {
		responseTimeMS = 0
	}

	client, err := s.Store.Clients().GetClientByAgentSlug(ctx, agentSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		log.Error("failed to resolve agent slug", slog.Any("error", err))
		return err
	}
	if client.Deleted() {
		return ErrClientDeleted
	}

	err = s.Store.Interactions().CreateInteraction(ctx, domain.Interaction{
		ID:             idx.New().String(),
		ClientID:       client.ID,
		Query:          query,
		ResponseTimeMS: responseTimeMS,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to record interaction",
			slog.String("client_id", client.ID),
			slog.Any("error", err),
		)
		return err
	}

	if s.Notifier != nil {
		if err := s.Notifier.TableChanged(ctx, "interactions", client.ID); err != nil {
			log.Debug("change hint dropped", slog.Any("error", err))
		}
	}
	return nil
}

// Stats assembles the dashboard metrics for one client.
func (s *StatsService) Stats(ctx context.Context, clientID string) (domain.InteractionStats, error) {
	log := slogx.FromContext(ctx)

	repo := s.Store.Interactions()

	total, err := repo.CountByClient(ctx, clientID)
	if err != nil {
		log.Error("failed to count interactions", slog.Any("error", err))
		return domain.InteractionStats{}, err
	}
	days, err := repo.ActiveDays(ctx, clientID)
	if err != nil {
		log.Error("failed to count active days", slog.Any("error", err))
		return domain.InteractionStats{}, err
	}
	avgMS, err := repo.AvgResponseMS(ctx, clientID)
	if err != nil {
		log.Error("failed to average response time", slog.Any("error", err))
		return domain.InteractionStats{}, err
	}
	top, err := repo.TopQueries(ctx, clientID, TopQueriesLimit)
	if err != nil {
		log.Error("failed to rank queries", slog.Any("error", err))
		return domain.InteractionStats{}, err
	}

	return domain.InteractionStats{
		TotalInteractions:  total,
		ActiveDays:         days,
		AvgResponseSeconds: avgMS / 1000,
		TopQueries:         top,
	}, nil
}
