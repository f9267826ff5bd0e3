package sqlite

import (
	"context"
	"database/sql"

	"github.com/chatforge/console/internal/console/domain"
)

type interactionsRepo struct {
	q querier
}

func (r *interactionsRepo) CreateInteraction(ctx context.Context, i domain.Interaction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO interactions (id, client_id, query, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		i.ID, i.ClientID, i.Query, i.ResponseTimeMS, i.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *interactionsRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE client_id = ?`, clientID).Scan(&n)
	return n, err
}

func (r *interactionsRepo) ActiveDays(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT date(created_at)) FROM interactions WHERE client_id = ?`,
		clientID).Scan(&n)
	return n, err
}

func (r *interactionsRepo) AvgResponseMS(ctx context.Context, clientID string) (float64, error) {
	var avg sql.NullFloat64
	err := r.q.QueryRowContext(ctx,
		`SELECT AVG(response_time_ms) FROM interactions WHERE client_id = ?`,
		clientID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (r *interactionsRepo) TopQueries(ctx context.Context, clientID string, limit int) ([]domain.QueryCount, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT query, COUNT(*) AS n
		FROM interactions
		WHERE client_id = ?
		GROUP BY query
		ORDER BY n DESC, query ASC
		LIMIT ?`, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.QueryCount
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		out = append(out, qc)
	}
	return out, rows.Err()
}
