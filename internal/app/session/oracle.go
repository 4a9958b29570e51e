package session

import (
	"context"
	"sync"
	"time"

	"takeapp/internal/pkg/logx"
)

// Authorizer builds the external authorization URL for a sign-in attempt.
// The OIDC adapter implements it; tests substitute a fake.
type Authorizer interface {
	AuthCodeURL(state string) string
}

// ConnectionOracle is the Oracle bound to one browser connection.
//
// It starts with no visible session and hydrates asynchronously from the
// remembered-sign-in store, using the user id hinted by the browser's
// cookie. Until hydration finishes, GetSession truthfully reports absent;
// when hydration surfaces a live sign-in, change listeners fire. This
// reproduces the provider behavior the navigation guard is built around.
type ConnectionOracle struct {
	store      Store
	authorizer Authorizer
	states     *SignInStates

	mu       sync.Mutex
	current  *Session
	hydrated bool
	closed   bool

	changes *broadcaster
}

var _ Oracle = (*ConnectionOracle)(nil)

// NewConnectionOracle creates the oracle and starts hydration for the given
// user id hint. An empty hint means the browser presented no cookie; the
// oracle then hydrates immediately to "absent".
func NewConnectionOracle(ctx context.Context, userIDHint string, store Store, authorizer Authorizer, states *SignInStates) *ConnectionOracle {
	o := &ConnectionOracle{
		store:      store,
		authorizer: authorizer,
		states:     states,
		changes:    newBroadcaster(),
	}

	go o.hydrate(ctx, userIDHint)

	return o
}

// hydrate restores a remembered sign-in, if any, and notifies listeners when
// a session becomes visible. Store failures degrade to "absent": the guard's
// grace-window re-check is the recovery path, not an error surface.
func (o *ConnectionOracle) hydrate(ctx context.Context, userIDHint string) {
	var restored *Session

	if userIDHint != "" {
		remembered, err := o.store.Find(ctx, userIDHint)
		if err != nil {
			logx.Warn("session hydration failed, treating as absent", "error", err)
		} else if remembered != nil {
			if remembered.Expired(time.Now()) {
				// Stale row; clean it up opportunistically.
				if err := o.store.Delete(ctx, userIDHint); err != nil {
					logx.Warn("failed to delete expired remembered sign-in", "user_id", userIDHint, "error", err)
				}
			} else {
				restored = &Session{
					UserID:    remembered.UserID,
					Email:     remembered.Email,
					ExpiresAt: remembered.ExpiresAt,
				}
			}
		}
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.hydrated = true
	o.current = restored
	o.mu.Unlock()

	if restored != nil {
		o.changes.notify(restored)
	}
}

// GetSession returns the session visible right now. While hydration is in
// flight this is absent, which is the honest answer: nothing has been
// verified yet.
func (o *ConnectionOracle) GetSession(ctx context.Context) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hydrated || o.current == nil {
		return nil, nil
	}

	s := *o.current
	return &s, nil
}

// OnChange registers a transition listener.
func (o *ConnectionOracle) OnChange(fn func(*Session)) func() {
	return o.changes.subscribe(fn)
}

// SignInWithProvider issues a state token bound to the redirect target and
// returns the provider's authorization URL.
func (o *ConnectionOracle) SignInWithProvider(ctx context.Context, providerID, redirectTarget string) (string, error) {
	state, err := o.states.Issue(providerID, redirectTarget)
	if err != nil {
		return "", err
	}

	return o.authorizer.AuthCodeURL(state), nil
}

// SignOut deletes the remembered sign-in, clears the visible session, and
// notifies listeners. Signing out while already absent is a no-op.
func (o *ConnectionOracle) SignOut(ctx context.Context) error {
	o.mu.Lock()
	current := o.current
	o.current = nil
	o.mu.Unlock()

	if current == nil {
		return nil
	}

	if err := o.store.Delete(ctx, current.UserID); err != nil {
		return err
	}

	o.changes.notify(nil)
	return nil
}

// Close stops the oracle; a hydration finishing afterwards is discarded.
func (o *ConnectionOracle) Close() {
	o.mu.Lock()
	o.closed = true
	o.current = nil
	o.mu.Unlock()
}
