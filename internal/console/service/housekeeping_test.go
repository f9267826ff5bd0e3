package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC()

	keep := seedClient(t, st, "Keep Me", "keep@example.com")
	grace := seedClient(t, st, "In Grace", "grace@example.com")
	purge := seedClient(t, st, "Purge Me", "purge@example.com")

	// One account still inside its recovery window, one past it.
	require.NoError(t, st.Clients().ScheduleDeletion(ctx, grace.ID, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, st.Clients().ScheduleDeletion(ctx, purge.ID, now.Add(-48*time.Hour), now.Add(-time.Hour)))

	expiredInv := domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("expired-token"),
		ClientID:  keep.ID,
		Email:     "keep@example.com",
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}
	liveInv := domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("live-token"),
		ClientID:  keep.ID,
		Email:     "keep2@example.com",
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Invitations().CreateInvitation(ctx, expiredInv))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, liveInv))

	expiredRec := domain.RecoveryToken{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("expired-recovery"),
		ClientID:  grace.ID,
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
	}
	require.NoError(t, st.RecoveryTokens().CreateRecoveryToken(ctx, expiredRec))

	svc := NewHousekeepingService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	svc.cleanup()

	t.Run("expired invitations are removed", func(t *testing.T) {
		_, err := st.Invitations().GetInvitationByID(ctx, expiredInv.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Invitations().GetInvitationByID(ctx, liveInv.ID)
		require.NoError(t, err)
	})

	t.Run("expired recovery tokens are removed", func(t *testing.T) {
		_, err := st.RecoveryTokens().GetRecoveryTokenByHash(ctx, expiredRec.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("accounts past the recovery window are purged", func(t *testing.T) {
		_, err := st.Clients().GetClientByID(ctx, purge.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("accounts inside the window survive", func(t *testing.T) {
		got, err := st.Clients().GetClientByID(ctx, grace.ID)
		require.NoError(t, err)
		require.True(t, got.Deleted())

		_, err = st.Clients().GetClientByID(ctx, keep.ID)
		require.NoError(t, err)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)
	svc := NewHousekeepingService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), 50*time.Millisecond)

	svc.Start()
	time.Sleep(120 * time.Millisecond)
	svc.Stop()
}
