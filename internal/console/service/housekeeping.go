package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatforge/console/internal/console/store"
)

// HousekeepingService periodically removes expired invitations and recovery
// tokens and purges client accounts past their recovery window.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the worker, blocking until any in-progress
// cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletions. Each step is independent, so a
// failure in one does not stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Logger.Info("starting housekeeping cleanup")

	if err := s.Store.Invitations().DeleteExpiredInvitations(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
	} else {
		s.Logger.Debug("deleted expired invitations")
	}

	if err := s.Store.RecoveryTokens().DeleteExpiredRecoveryTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired recovery tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired recovery tokens")
	}

	purged, err := s.Store.Clients().DeleteClientsPastPurge(ctx, now)
	if err != nil {
		s.Logger.Error("failed to purge deleted clients", "error", err)
	} else if purged > 0 {
		s.Logger.Info("purged clients past recovery window", "count", purged)
	}

	s.Logger.Info("housekeeping cleanup completed")
}
