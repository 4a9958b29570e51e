/*
Package profile holds the profile record, its persistence and storage ports,
and the completion workflow that fills it in.
*/
package profile

import (
	"context"
	"time"
)

// Record is a user's profile. At most one exists per user id; the store's
// upsert enforces that.
type Record struct {
	UserID    string
	FullName  string
	Phone     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists profile records. GetByUserID returns (nil, nil) when no
// record exists. Upsert must apply as one atomic operation keyed by user id:
// overwrite when a record exists, create otherwise.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
}

// ObjectStore is the object storage the avatar upload goes to. Put must
// refuse to overwrite an existing key; PublicURL resolves a durable,
// publicly dereferenceable URL for a stored key.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) string
}
