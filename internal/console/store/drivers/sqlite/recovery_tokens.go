package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
)

type recoveryTokensRepo struct {
	q querier
}

func (r *recoveryTokensRepo) CreateRecoveryToken(ctx context.Context, t domain.RecoveryToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO recovery_tokens (id, token_hash, client_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.TokenHash, t.ClientID, t.ExpiresAt, t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *recoveryTokensRepo) GetRecoveryTokenByHash(ctx context.Context, hash string) (domain.RecoveryToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, token_hash, client_id, expires_at, used_at, created_at
		FROM recovery_tokens WHERE token_hash = ?`, hash)
	return scanRecoveryToken(row)
}

// ClaimRecoveryToken consumes an unused, unexpired token with the same
// conditional-update discipline as invitation redemption.
func (r *recoveryTokensRepo) ClaimRecoveryToken(ctx context.Context, tokenHash string, now time.Time) (domain.RecoveryToken, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE recovery_tokens
		SET used_at = ?
		WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?`,
		now, tokenHash, now,
	)
	if err != nil {
		return domain.RecoveryToken{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.RecoveryToken{}, err
	}
	if n != 1 {
		return domain.RecoveryToken{}, store.ErrNotFound
	}
	return r.GetRecoveryTokenByHash(ctx, tokenHash)
}

func (r *recoveryTokensRepo) DeleteExpiredRecoveryTokens(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM recovery_tokens WHERE used_at IS NULL AND expires_at <= ?`, now)
	return err
}

func scanRecoveryToken(s scanner) (domain.RecoveryToken, error) {
	var (
		t      domain.RecoveryToken
		usedAt sql.NullTime
	)
	err := s.Scan(&t.ID, &t.TokenHash, &t.ClientID, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		return domain.RecoveryToken{}, mapNotFound(err)
	}
	t.UsedAt = mapNullTimePtr(usedAt)
	return t, nil
}
