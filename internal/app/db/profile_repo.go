package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"takeapp/internal/app/profile"
)

// ProfileRepo persists profile records in PostgreSQL.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

var _ profile.Store = (*ProfileRepo)(nil)

// NewProfileRepo creates the repository.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetByUserID returns the user's profile record, or (nil, nil) when none
// exists.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*profile.Record, error) {
	const query = `
SELECT user_id, full_name, COALESCE(phone, ''), COALESCE(avatar_url, ''), created_at, updated_at
FROM user_profiles
WHERE user_id = $1`

	record := &profile.Record{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.FullName,
		&record.Phone,
		&record.AvatarURL,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile for %s: %w", userID, err)
	}

	return record, nil
}

// Upsert writes the record keyed by user id in a single statement, so the
// caller never observes a partial write.
func (r *ProfileRepo) Upsert(ctx context.Context, record *profile.Record) error {
	const query = `
INSERT INTO user_profiles (user_id, full_name, phone, avatar_url)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
ON CONFLICT (user_id) DO UPDATE SET
    full_name  = EXCLUDED.full_name,
    phone      = EXCLUDED.phone,
    avatar_url = EXCLUDED.avatar_url,
    updated_at = now()`

	_, err := r.pool.Exec(ctx, query,
		record.UserID,
		record.FullName,
		record.Phone,
		record.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for %s: %w", record.UserID, err)
	}

	return nil
}
