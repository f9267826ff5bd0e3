package store

import (
	"context"
	"errors"
	"time"

	"github.com/chatforge/console/internal/console/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and to
// actively stop callers from accidentally nesting transactions.
type Store interface {
	Clients() Clients
	Users() Users
	Invitations() Invitations
	RecoveryTokens() RecoveryTokens
	Sources() Sources
	Interactions() Interactions
	Activities() Activities

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// CreateClient inserts a new client account (id is provided via ULID).
	CreateClient(ctx context.Context, c domain.ClientAccount) error

	// GetClientByID returns a client regardless of deletion state.
	GetClientByID(ctx context.Context, id string) (domain.ClientAccount, error)

	// GetClientByAgentSlug looks a client up by its agent slug (widget ingest path).
	GetClientByAgentSlug(ctx context.Context, slug string) (domain.ClientAccount, error)

	// ListClients returns all clients ordered by creation date (newest first),
	// including ones scheduled for deletion.
	ListClients(ctx context.Context) ([]domain.ClientAccount, error)

	// UpdateClient mutates name, contact email, company, description and
	// status, and bumps updated_at.
	UpdateClient(ctx context.Context, c domain.ClientAccount) error

	// UpdateWidgetConfig replaces the stored widget configuration.
	UpdateWidgetConfig(ctx context.Context, clientID string, cfg domain.WidgetConfig) error

	// ScheduleDeletion soft-deletes: sets deletion_scheduled_at and purge_after.
	ScheduleDeletion(ctx context.Context, clientID string, scheduledAt, purgeAfter time.Time) error

	// CancelDeletion clears the deletion schedule (recovery path).
	CancelDeletion(ctx context.Context, clientID string) error

	// DeleteClientsPastPurge hard-deletes clients whose purge_after has passed.
	// Cascades to users, invitations, sources, interactions and activities.
	DeleteClientsPastPurge(ctx context.Context, now time.Time) (int64, error)

	// CountActiveClients counts clients not scheduled for deletion.
	CountActiveClients(ctx context.Context) (int64, error)
}

type Users interface {
	// CreateUser inserts a new user (id is provided via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdatePasswordHash sets the password_hash (argon2id), clears
	// password_change_required and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateMFASecret stores a pending TOTP secret prior to verification.
	UpdateMFASecret(ctx context.Context, userID, secret string) error

	// EnableMFA stamps mfa_enabled once the first TOTP code verifies.
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error

	// GetRoleRecord returns the explicit role assignment for a user.
	GetRoleRecord(ctx context.Context, userID string) (domain.RoleRecord, error)

	// UpsertRoleRecord writes or replaces a user's role assignment.
	UpsertRoleRecord(ctx context.Context, rec domain.RoleRecord) error

	// DeleteUser removes the user and their role record.
	DeleteUser(ctx context.Context, userID string) error
}

type Invitations interface {
	// CreateInvitation writes a new pending invitation (token_hash is the
	// SHA-256 fingerprint of the opaque setup token).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetInvitationByTokenHash returns the invitation by fingerprint in any
	// status. Callers decide redeemability; Verify must not mutate.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// ListInvitationsByClient returns a client's invitations, newest first.
	ListInvitationsByClient(ctx context.Context, clientID string) ([]domain.Invitation, error)

	// ClaimInvitation atomically flips a pending, unexpired invitation to
	// accepted and returns the claimed row. Exactly one caller wins under
	// concurrent redemption; losers get ErrNotFound.
	ClaimInvitation(ctx context.Context, tokenHash string, now time.Time) (domain.Invitation, error)

	// MarkNotified stamps notified_at after the invitation email went out.
	MarkNotified(ctx context.Context, id string, at time.Time) error

	// RotateToken replaces the fingerprint and expiry of a pending
	// invitation. Used on resend since the original token is never stored.
	RotateToken(ctx context.Context, id, newHash string, expiresAt time.Time) error

	// DeleteExpiredInvitations removes pending invitations past expiry (housekeeping).
	DeleteExpiredInvitations(ctx context.Context, now time.Time) error
}

type RecoveryTokens interface {
	CreateRecoveryToken(ctx context.Context, t domain.RecoveryToken) error

	GetRecoveryTokenByHash(ctx context.Context, hash string) (domain.RecoveryToken, error)

	// ClaimRecoveryToken atomically consumes an unused, unexpired token.
	// Losers of a concurrent claim get ErrNotFound.
	ClaimRecoveryToken(ctx context.Context, tokenHash string, now time.Time) (domain.RecoveryToken, error)

	// DeleteExpiredRecoveryTokens is housekeeping.
	DeleteExpiredRecoveryTokens(ctx context.Context, now time.Time) error
}

type Sources interface {
	CreateSource(ctx context.Context, s domain.ContentSource) error
	GetSourceByID(ctx context.Context, id string) (domain.ContentSource, error)

	// ListSourcesByClient returns a client's content sources, newest first.
	ListSourcesByClient(ctx context.Context, clientID string) ([]domain.ContentSource, error)

	DeleteSource(ctx context.Context, id string) error
}

type Interactions interface {
	// CreateInteraction appends one widget exchange for a client.
	CreateInteraction(ctx context.Context, i domain.Interaction) error

	// CountByClient returns the total interactions for a client.
	CountByClient(ctx context.Context, clientID string) (int64, error)

	// ActiveDays counts distinct calendar days with at least one interaction.
	ActiveDays(ctx context.Context, clientID string) (int64, error)

	// AvgResponseMS returns the mean response time in milliseconds, 0 if none.
	AvgResponseMS(ctx context.Context, clientID string) (float64, error)

	// TopQueries returns the most frequent queries for a client, most
	// frequent first, capped at limit.
	TopQueries(ctx context.Context, clientID string, limit int) ([]domain.QueryCount, error)
}

type Activities interface {
	CreateActivity(ctx context.Context, a domain.Activity) error

	// ListActivitiesByClient returns a client's activity log, newest first,
	// capped at limit.
	ListActivitiesByClient(ctx context.Context, clientID string, limit int) ([]domain.Activity, error)
}
