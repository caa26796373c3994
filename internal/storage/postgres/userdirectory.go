package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// UserDirectory reads users and their device tokens. This service never
// writes them; registration happens in the profile-update path.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory returns a push.UserDirectory backed by PostgreSQL.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// GetUser returns (nil, nil) when no such user exists.
func (d *UserDirectory) GetUser(ctx context.Context, id string) (*push.User, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, display_name, COALESCE(device_token, '')
		FROM users WHERE id = $1`, id)

	var u push.User
	err := row.Scan(&u.ID, &u.Name, &u.DisplayName, &u.DeviceToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
