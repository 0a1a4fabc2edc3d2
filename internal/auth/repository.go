package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mango-army/events-backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByDiscordID returns a user by Discord ID. Returns pgx.ErrNoRows when the
// user does not exist.
func (r *Repository) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	const q = `SELECT discord_id, username, COALESCE(avatar_url,''), password_hash, role, roles, created_at
		FROM users WHERE discord_id = $1`
	var u models.User
	var roles []string
	err := r.pool.QueryRow(ctx, q, discordID).Scan(&u.DiscordID, &u.Username, &u.AvatarURL, &u.Password, &u.Role, &roles, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Roles = toRoles(roles)
	return &u, nil
}

// List returns all users, most senior role first within creation order.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	const q = `SELECT discord_id, username, COALESCE(avatar_url,''), password_hash, role, roles, created_at
		FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		var u models.User
		var roles []string
		if err := rows.Scan(&u.DiscordID, &u.Username, &u.AvatarURL, &u.Password, &u.Role, &roles, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Roles = toRoles(roles)
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create inserts a new user. The legacy role column mirrors roles[0].
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (discord_id, username, avatar_url, password_hash, role, roles)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, $6)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, u.DiscordID, u.Username, u.AvatarURL, u.Password, string(u.Role), fromRoles(u.Roles)).
		Scan(&u.CreatedAt)
}

// UpdateRoles replaces a user's role set, keeping the legacy role column in
// sync with roles[0]. Returns pgx.ErrNoRows when the user does not exist.
func (r *Repository) UpdateRoles(ctx context.Context, discordID string, roleSet []models.Role) error {
	const q = `UPDATE users SET roles = $1, role = $2 WHERE discord_id = $3`
	tag, err := r.pool.Exec(ctx, q, fromRoles(roleSet), string(roleSet[0]), discordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a user. Returns pgx.ErrNoRows when the user does not exist.
func (r *Repository) Delete(ctx context.Context, discordID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE discord_id = $1`, discordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func toRoles(ss []string) []models.Role {
	if len(ss) == 0 {
		return nil
	}
	out := make([]models.Role, len(ss))
	for i, s := range ss {
		out[i] = models.Role(s)
	}
	return out
}

func fromRoles(rs []models.Role) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
