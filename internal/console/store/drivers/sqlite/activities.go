package sqlite

import (
	"context"
	"encoding/json"

	"github.com/chatforge/console/internal/console/domain"
)

type activitiesRepo struct {
	q querier
}

func (r *activitiesRepo) CreateActivity(ctx context.Context, a domain.Activity) error {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO activities (id, client_id, actor_id, kind, description, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClientID, a.ActorID, string(a.Kind), a.Description, string(meta), a.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *activitiesRepo) ListActivitiesByClient(ctx context.Context, clientID string, limit int) ([]domain.Activity, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, client_id, actor_id, kind, description, metadata, created_at
		FROM activities
		WHERE client_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var (
			a    domain.Activity
			kind string
			meta string
		)
		if err := rows.Scan(&a.ID, &a.ClientID, &a.ActorID, &kind, &a.Description, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = domain.ActivityKind(kind)
		if err := json.Unmarshal([]byte(meta), &a.Metadata); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
