package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"takeapp/internal/app/session"
)

// SessionRepo persists remembered sign-ins in PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
}

var _ session.Store = (*SessionRepo)(nil)

// NewSessionRepo creates the repository.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Find returns the remembered sign-in for the user, or (nil, nil) when none
// exists.
func (r *SessionRepo) Find(ctx context.Context, userID string) (*session.Remembered, error) {
	const query = `
SELECT user_id, email, refresh_token, expires_at, created_at, updated_at
FROM remembered_sessions
WHERE user_id = $1`

	remembered := &session.Remembered{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&remembered.UserID,
		&remembered.Email,
		&remembered.RefreshToken,
		&remembered.ExpiresAt,
		&remembered.CreatedAt,
		&remembered.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read remembered sign-in for %s: %w", userID, err)
	}

	return remembered, nil
}

// Save stores the remembered sign-in. Insert is attempted first; a unique
// violation means the user signed in again on the same id, which updates
// the existing row instead.
func (r *SessionRepo) Save(ctx context.Context, remembered *session.Remembered) error {
	const insert = `
INSERT INTO remembered_sessions (user_id, email, refresh_token, expires_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, insert,
		remembered.UserID,
		remembered.Email,
		remembered.RefreshToken,
		remembered.ExpiresAt,
	)
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return fmt.Errorf("failed to save remembered sign-in for %s: %w", remembered.UserID, err)
	}

	const update = `
UPDATE remembered_sessions
SET email = $2, refresh_token = $3, expires_at = $4, updated_at = now()
WHERE user_id = $1`

	_, err = r.pool.Exec(ctx, update,
		remembered.UserID,
		remembered.Email,
		remembered.RefreshToken,
		remembered.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh remembered sign-in for %s: %w", remembered.UserID, err)
	}

	return nil
}

// Delete removes the user's remembered sign-in. Deleting a missing row is
// not an error.
func (r *SessionRepo) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM remembered_sessions WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete remembered sign-in for %s: %w", userID, err)
	}

	return nil
}
