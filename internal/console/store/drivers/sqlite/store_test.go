package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newClient(t *testing.T, st *Store, name, slug string) domain.ClientAccount {
	t.Helper()

	now := time.Now().UTC()
	c := domain.ClientAccount{
		ID:           idx.New().String(),
		Name:         name,
		ContactEmail: slug + "@example.com",
		AgentSlug:    slug,
		Widget:       domain.DefaultWidgetConfig(),
		Status:       domain.ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), c))
	return c
}

func TestClaimInvitationIsConditional(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")
	now := time.Now().UTC()

	hash := cryptox.FingerprintToken("setup-token")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: hash,
		ClientID:  client.ID,
		Email:     "owner@acme.example",
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}))

	claimed, err := st.Invitations().ClaimInvitation(ctx, hash, now)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusAccepted, claimed.Status)
	require.NotNil(t, claimed.AcceptedAt)

	t.Run("a second claim loses", func(t *testing.T) {
		_, err := st.Invitations().ClaimInvitation(ctx, hash, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown fingerprints lose", func(t *testing.T) {
		_, err := st.Invitations().ClaimInvitation(ctx, cryptox.FingerprintToken("other"), now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestClaimInvitationRespectsExpiry(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")
	now := time.Now().UTC()

	hash := cryptox.FingerprintToken("stale-token")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: hash,
		ClientID:  client.ID,
		Email:     "owner@acme.example",
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}))

	_, err := st.Invitations().ClaimInvitation(ctx, hash, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The row itself is untouched, still pending for housekeeping to sweep.
	inv, err := st.Invitations().GetInvitationByTokenHash(ctx, hash)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusPending, inv.Status)
}

func TestClaimRecoveryTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")
	now := time.Now().UTC()

	hash := cryptox.FingerprintToken("recovery-token")
	require.NoError(t, st.RecoveryTokens().CreateRecoveryToken(ctx, domain.RecoveryToken{
		ID:        idx.New().String(),
		TokenHash: hash,
		ClientID:  client.ID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}))

	rec, err := st.RecoveryTokens().ClaimRecoveryToken(ctx, hash, now)
	require.NoError(t, err)
	require.Equal(t, client.ID, rec.ClientID)
	require.NotNil(t, rec.UsedAt)

	_, err = st.RecoveryTokens().ClaimRecoveryToken(ctx, hash, now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")

	t.Run("agent slugs are unique", func(t *testing.T) {
		dup := client
		dup.ID = idx.New().String()
		err := st.Clients().CreateClient(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("emails are unique", func(t *testing.T) {
		now := time.Now().UTC()
		user := domain.User{
			ID:           idx.New().String(),
			Email:        "owner@acme.example",
			PasswordHash: "hash",
			ClientID:     client.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, st.Users().CreateUser(ctx, user))

		user.ID = idx.New().String()
		err := st.Users().CreateUser(ctx, user)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")
	now := time.Now().UTC()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Email:        "owner@acme.example",
			PasswordHash: "hash",
			ClientID:     client.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByEmail(ctx, "owner@acme.example")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestScheduleDeletionGuards(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")
	now := time.Now().UTC()

	t.Run("cancel without a schedule fails", func(t *testing.T) {
		err := st.Clients().CancelDeletion(ctx, client.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	require.NoError(t, st.Clients().ScheduleDeletion(ctx, client.ID, now, now.Add(time.Hour)))

	t.Run("scheduling twice fails", func(t *testing.T) {
		err := st.Clients().ScheduleDeletion(ctx, client.ID, now, now.Add(time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("cancel restores the active status", func(t *testing.T) {
		require.NoError(t, st.Clients().CancelDeletion(ctx, client.ID))

		got, err := st.Clients().GetClientByID(ctx, client.ID)
		require.NoError(t, err)
		require.False(t, got.Deleted())
		require.Equal(t, domain.ClientStatusActive, got.Status)
	})
}

func TestWidgetConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	client := newClient(t, st, "Acme", "acme")

	cfg := domain.DefaultWidgetConfig()
	cfg.AgentName = "Acme Bot"
	cfg.ChatColor = "#112233"
	cfg.LogoURL = "https://cdn.example/logo.png"

	require.NoError(t, st.Clients().UpdateWidgetConfig(ctx, client.ID, cfg))

	got, err := st.Clients().GetClientByID(ctx, client.ID)
	require.NoError(t, err)
	require.Equal(t, cfg, got.Widget)
}

func TestPurgeOnlyTakesExpiredDeletions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	now := time.Now().UTC()

	keep := newClient(t, st, "Keep", "keep")
	grace := newClient(t, st, "Grace", "grace")
	gone := newClient(t, st, "Gone", "gone")

	require.NoError(t, st.Clients().ScheduleDeletion(ctx, grace.ID, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, st.Clients().ScheduleDeletion(ctx, gone.ID, now.Add(-48*time.Hour), now.Add(-time.Hour)))

	purged, err := st.Clients().DeleteClientsPastPurge(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = st.Clients().GetClientByID(ctx, gone.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Clients().GetClientByID(ctx, grace.ID)
	require.NoError(t, err)
	_, err = st.Clients().GetClientByID(ctx, keep.ID)
	require.NoError(t, err)
}
