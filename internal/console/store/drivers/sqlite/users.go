package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chatforge/console/internal/console/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, password_hash, client_id, password_change_required,
	mfa_enabled, mfa_secret, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, client_id, password_change_required,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, mapStringNull(u.ClientID),
		u.PasswordChangeRequired, u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_change_required = 0, updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = ?, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = NULL, mfa_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) GetRoleRecord(ctx context.Context, userID string) (domain.RoleRecord, error) {
	var (
		rec      domain.RoleRecord
		role     string
		clientID sql.NullString
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, role, client_id FROM user_roles WHERE user_id = ?`, userID,
	).Scan(&rec.UserID, &role, &clientID)
	if err != nil {
		return domain.RoleRecord{}, mapNotFound(err)
	}
	rec.Role = domain.ParseRole(role)
	rec.ClientID = mapNullString(clientID)
	return rec, nil
}

func (r *usersRepo) UpsertRoleRecord(ctx context.Context, rec domain.RoleRecord) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role, client_id)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET role = excluded.role, client_id = excluded.client_id`,
		rec.UserID, string(rec.Role), mapStringNull(rec.ClientID),
	)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u        domain.User
		clientID sql.NullString
		enabled  sql.NullTime
		secret   sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &clientID, &u.PasswordChangeRequired,
		&enabled, &secret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.ClientID = mapNullString(clientID)
	u.MFAEnabled = mapNullTimePtr(enabled)
	u.MFASecret = mapNullStringPtr(secret)
	return u, nil
}
