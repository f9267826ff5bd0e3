package sqlite

import (
	"context"

	"github.com/chatforge/console/internal/console/domain"
)

type sourcesRepo struct {
	q querier
}

func (r *sourcesRepo) CreateSource(ctx context.Context, s domain.ContentSource) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sources (id, client_id, kind, url, refresh_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.ClientID, s.Kind, s.URL, s.RefreshRate, s.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *sourcesRepo) GetSourceByID(ctx context.Context, id string) (domain.ContentSource, error) {
	var s domain.ContentSource
	err := r.q.QueryRowContext(ctx, `
		SELECT id, client_id, kind, url, refresh_rate, created_at
		FROM sources WHERE id = ?`, id,
	).Scan(&s.ID, &s.ClientID, &s.Kind, &s.URL, &s.RefreshRate, &s.CreatedAt)
	if err != nil {
		return domain.ContentSource{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sourcesRepo) ListSourcesByClient(ctx context.Context, clientID string) ([]domain.ContentSource, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, client_id, kind, url, refresh_rate, created_at
		FROM sources WHERE client_id = ? ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContentSource
	for rows.Next() {
		var s domain.ContentSource
		if err := rows.Scan(&s.ID, &s.ClientID, &s.Kind, &s.URL, &s.RefreshRate, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sourcesRepo) DeleteSource(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
