package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mango-army/events-backend/internal/models"
)

// Repository handles log persistence. The logs table is append-only: rows are
// inserted and read, never updated or deleted.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one log entry.
func (r *Repository) Insert(ctx context.Context, l *models.Log) error {
	var performedBy, changes []byte
	var err error
	if l.PerformedBy != nil {
		if performedBy, err = json.Marshal(l.PerformedBy); err != nil {
			return err
		}
	}
	if l.Changes != nil {
		if changes, err = json.Marshal(l.Changes); err != nil {
			return err
		}
	}
	const q = `INSERT INTO logs (id, action, timestamp, event, performed_by, changes)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.pool.Exec(ctx, q, l.ID, string(l.Action), l.Timestamp, []byte(l.Event), performedBy, changes)
	return err
}

// List returns all log entries, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Log, error) {
	const q = `SELECT id, action, timestamp, event, performed_by, changes
		FROM logs ORDER BY timestamp DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Log
	for rows.Next() {
		var l models.Log
		var action string
		var event, performedBy, changes []byte
		if err := rows.Scan(&l.ID, &action, &l.Timestamp, &event, &performedBy, &changes); err != nil {
			return nil, err
		}
		l.Action = models.LogAction(action)
		l.Event = json.RawMessage(event)
		if len(performedBy) > 0 {
			var actor models.Actor
			if err := json.Unmarshal(performedBy, &actor); err != nil {
				return nil, err
			}
			l.PerformedBy = &actor
		}
		if len(changes) > 0 {
			var c models.Changes
			if err := json.Unmarshal(changes, &c); err != nil {
				return nil, err
			}
			l.Changes = &c
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
