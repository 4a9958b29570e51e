/*
Package session is the client's view of the identity provider.

It defines the Oracle consulted by every screen: a point-in-time session
lookup, change notifications, sign-in initiation, and sign-out. Session
validity is owned entirely by the provider; this package only observes it.
*/
package session

import (
	"context"
	"time"
)

// Session is the observed authenticated identity. Absence is represented by
// a nil *Session, never by an error.
type Session struct {
	// UserID is the provider's stable identifier for the user.
	UserID string

	// Email is the address the provider reported at sign-in.
	Email string

	// ExpiresAt is when the provider considers the session stale.
	ExpiresAt time.Time
}

// Oracle is the session facade screens talk to.
//
// GetSession reports the session visible right now; nil means absent, which
// is a normal result. Absence may be transient: the oracle hydrates its view
// of persisted sign-ins asynchronously, so callers that care about the
// difference must tolerate a short window where a valid session reads as
// absent (the navigation guard's grace window exists for exactly this).
type Oracle interface {
	// GetSession returns the current session or nil when none is visible.
	GetSession(ctx context.Context) (*Session, error)

	// OnChange registers fn to run on every session transition (a session
	// appearing through hydration or sign-in, or disappearing through
	// sign-out). The returned function unregisters fn; registrations are
	// independent of each other.
	OnChange(fn func(*Session)) (unsubscribe func())

	// SignInWithProvider starts an external credential exchange and returns
	// the authorization URL the browser must visit. A new session becomes
	// observable only after the provider redirects back.
	SignInWithProvider(ctx context.Context, providerID, redirectTarget string) (string, error)

	// SignOut invalidates the current session. Later GetSession calls return
	// nil and change listeners are notified.
	SignOut(ctx context.Context) error
}

// RememberedLifetime is how long a sign-in with offline access is kept.
const RememberedLifetime = 7 * 24 * time.Hour

// Remembered is a sign-in persisted across page loads, keyed by user id.
type Remembered struct {
	UserID       string
	Email        string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the remembered sign-in is past its lifetime.
func (r *Remembered) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Store persists remembered sign-ins. Find returns (nil, nil) when no row
// exists; "no row" is a value, not an error.
type Store interface {
	Find(ctx context.Context, userID string) (*Remembered, error)
	Save(ctx context.Context, remembered *Remembered) error
	Delete(ctx context.Context, userID string) error
}
