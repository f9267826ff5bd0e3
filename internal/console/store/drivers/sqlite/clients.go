package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
)

type clientsRepo struct {
	q querier
}

const clientColumns = `id, name, contact_email, company, description, agent_slug,
	widget_config, status, deletion_scheduled_at, purge_after, created_at, updated_at`

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.ClientAccount) error {
	cfg, err := marshalWidgetConfig(c.Widget)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO clients (id, name, contact_email, company, description, agent_slug,
			widget_config, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.ContactEmail, c.Company, c.Description, c.AgentSlug,
		cfg, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.ClientAccount, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) GetClientByAgentSlug(ctx context.Context, slug string) (domain.ClientAccount, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE agent_slug = ?`, slug)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.ClientAccount, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ClientAccount
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.ClientAccount) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, contact_email = ?, company = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.ContactEmail, c.Company, c.Description, c.Status, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *clientsRepo) UpdateWidgetConfig(ctx context.Context, clientID string, cfg domain.WidgetConfig) error {
	raw, err := marshalWidgetConfig(cfg)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients SET widget_config = ?, updated_at = ? WHERE id = ?`,
		raw, time.Now().UTC(), clientID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *clientsRepo) ScheduleDeletion(ctx context.Context, clientID string, scheduledAt, purgeAfter time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients
		SET deletion_scheduled_at = ?, purge_after = ?, status = ?, updated_at = ?
		WHERE id = ? AND deletion_scheduled_at IS NULL`,
		scheduledAt, purgeAfter, domain.ClientStatusInactive, time.Now().UTC(), clientID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *clientsRepo) CancelDeletion(ctx context.Context, clientID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients
		SET deletion_scheduled_at = NULL, purge_after = NULL, status = ?, updated_at = ?
		WHERE id = ? AND deletion_scheduled_at IS NOT NULL`,
		domain.ClientStatusActive, time.Now().UTC(), clientID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *clientsRepo) DeleteClientsPastPurge(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM clients WHERE purge_after IS NOT NULL AND purge_after <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *clientsRepo) CountActiveClients(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE deletion_scheduled_at IS NULL`).Scan(&n)
	return n, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (domain.ClientAccount, error) {
	var (
		c         domain.ClientAccount
		cfg       string
		company   sql.NullString
		desc      sql.NullString
		deletedAt sql.NullTime
		purgeAt   sql.NullTime
	)
	err := s.Scan(&c.ID, &c.Name, &c.ContactEmail, &company, &desc, &c.AgentSlug,
		&cfg, &c.Status, &deletedAt, &purgeAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.ClientAccount{}, mapNotFound(err)
	}
	c.Company = mapNullString(company)
	c.Description = mapNullString(desc)
	c.DeletionScheduledAt = mapNullTimePtr(deletedAt)
	c.PurgeAfter = mapNullTimePtr(purgeAt)
	c.Widget, err = unmarshalWidgetConfig(cfg)
	if err != nil {
		return domain.ClientAccount{}, err
	}
	return c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
