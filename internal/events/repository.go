package events

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mango-army/events-backend/internal/models"
)

// Repository handles event persistence. Organizer lists are stored as JSONB
// so their order survives round-trips.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all events sorted by date ascending, undated events last.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT id, title, COALESCE(description,''), date, COALESCE("time",''), category, organizers, created_at
		FROM events ORDER BY date ASC NULLS LAST, created_at ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// GetByID returns an event by ID. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const q = `SELECT id, title, COALESCE(description,''), date, COALESCE("time",''), category, organizers, created_at
		FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	organizers, err := marshalOrganizers(e.Organizers)
	if err != nil {
		return err
	}
	const q = `INSERT INTO events (id, title, description, date, "time", category, organizers)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6, $7)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.Date, e.Time, string(e.Category), organizers).
		Scan(&e.CreatedAt)
}

// Update replaces an event's mutable fields. Returns pgx.ErrNoRows when the
// event does not exist.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	organizers, err := marshalOrganizers(e.Organizers)
	if err != nil {
		return err
	}
	const q = `UPDATE events SET title = $1, description = NULLIF($2,''), date = $3, "time" = NULLIF($4,''), category = $5, organizers = $6
		WHERE id = $7`
	tag, err := r.pool.Exec(ctx, q, e.Title, e.Description, e.Date, e.Time, string(e.Category), organizers, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an event by ID. Returns pgx.ErrNoRows when absent.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func marshalOrganizers(list []models.Organizer) ([]byte, error) {
	if list == nil {
		list = []models.Organizer{}
	}
	return json.Marshal(list)
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var category string
	var organizers []byte
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &category, &organizers, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Category = models.Category(category)
	if len(organizers) > 0 {
		if err := json.Unmarshal(organizers, &e.Organizers); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
