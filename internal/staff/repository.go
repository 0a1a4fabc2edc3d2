// Package staff implements the staff-access request workflow: visitors apply,
// admins approve or reject, approval creates the user account.
package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mango-army/events-backend/internal/models"
)

// ErrAlreadyDecided means the request has already left pending. A request
// transitions out of pending exactly once.
var ErrAlreadyDecided = errors.New("staff request already decided")

// Repository handles staff request persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a staff request repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new pending request.
func (r *Repository) Create(ctx context.Context, req *models.StaffRequest) error {
	const q = `INSERT INTO staff_requests (id, discord_id, username, avatar_url, staff_type, status)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, req.ID, req.DiscordID, req.Username, req.AvatarURL, string(req.StaffType), string(req.Status)).
		Scan(&req.CreatedAt)
}

// GetByID returns a request by ID. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.StaffRequest, error) {
	const q = `SELECT id, discord_id, username, COALESCE(avatar_url,''), staff_type, status, created_at
		FROM staff_requests WHERE id = $1`
	var req models.StaffRequest
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&req.ID, &req.DiscordID, &req.Username, &req.AvatarURL, &req.StaffType, &req.Status, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPending returns all pending requests, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]models.StaffRequest, error) {
	const q = `SELECT id, discord_id, username, COALESCE(avatar_url,''), staff_type, status, created_at
		FROM staff_requests WHERE status = 'pending' ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.StaffRequest
	for rows.Next() {
		var req models.StaffRequest
		if err := rows.Scan(&req.ID, &req.DiscordID, &req.Username, &req.AvatarURL, &req.StaffType, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// HasPending reports whether the Discord ID has a pending request.
func (r *Repository) HasPending(ctx context.Context, discordID string) (bool, error) {
	const q = `SELECT 1 FROM staff_requests WHERE discord_id = $1 AND status = 'pending' LIMIT 1`
	var one int
	err := r.pool.QueryRow(ctx, q, discordID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reopen returns a decided request to pending. Used when account creation
// fails after the request was claimed, so the approval can be retried.
func (r *Repository) Reopen(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE staff_requests SET status = 'pending' WHERE id = $1`, id)
	return err
}

// Decide transitions a request out of pending. The conditional update is the
// state-transition guard: a concurrent second decision affects zero rows and
// surfaces as ErrAlreadyDecided instead of silently double-approving.
func (r *Repository) Decide(ctx context.Context, id string, status models.RequestStatus) (*models.StaffRequest, error) {
	const q = `UPDATE staff_requests SET status = $1 WHERE id = $2 AND status = 'pending'
		RETURNING id, discord_id, username, COALESCE(avatar_url,''), staff_type, status, created_at`
	var req models.StaffRequest
	err := r.pool.QueryRow(ctx, q, string(status), id).
		Scan(&req.ID, &req.DiscordID, &req.Username, &req.AvatarURL, &req.StaffType, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return nil, ErrAlreadyDecided
		}
		return nil, pgx.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
