package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, token_hash, client_id, email, status, expires_at,
	accepted_at, notified_at, created_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, token_hash, client_id, email, status, expires_at,
			notified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.ClientID, inv.Email, inv.Status, inv.ExpiresAt,
		mapOptionalTime(inv.NotifiedAt), inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash)
	return scanInvitation(row)
}

func (r *invitationsRepo) ListInvitationsByClient(ctx context.Context, clientID string) ([]domain.Invitation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE client_id = ? ORDER BY created_at DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ClaimInvitation is the single commit point of redemption. The conditional
// UPDATE only matches a pending, unexpired row, so under concurrent
// redemption exactly one caller sees rows-affected == 1.
func (r *invitationsRepo) ClaimInvitation(ctx context.Context, tokenHash string, now time.Time) (domain.Invitation, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations
		SET status = ?, accepted_at = ?, updated_at = ?
		WHERE token_hash = ? AND status = ? AND expires_at > ?`,
		domain.InvitationStatusAccepted, now, now,
		tokenHash, domain.InvitationStatusPending, now,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Invitation{}, err
	}
	if n != 1 {
		return domain.Invitation{}, store.ErrNotFound
	}
	return r.GetInvitationByTokenHash(ctx, tokenHash)
}

func (r *invitationsRepo) MarkNotified(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE invitations SET notified_at = ?, updated_at = ? WHERE id = ?`,
		at, at, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *invitationsRepo) RotateToken(ctx context.Context, id, newHash string, expiresAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations
		SET token_hash = ?, expires_at = ?, notified_at = NULL, updated_at = ?
		WHERE id = ? AND status = ?`,
		newHash, expiresAt, time.Now().UTC(), id, domain.InvitationStatusPending,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM invitations WHERE status = ? AND expires_at <= ?`,
		domain.InvitationStatusPending, now,
	)
	return err
}

func scanInvitation(s scanner) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		acceptedAt sql.NullTime
		notifiedAt sql.NullTime
	)
	err := s.Scan(&inv.ID, &inv.TokenHash, &inv.ClientID, &inv.Email, &inv.Status,
		&inv.ExpiresAt, &acceptedAt, &notifiedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.NotifiedAt = mapNullTimePtr(notifiedAt)
	return inv, nil
}
