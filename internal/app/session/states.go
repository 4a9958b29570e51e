package session

import (
	"sync"
	"time"

	"takeapp/internal/pkg/randx"
)

// signInStateTTL bounds how long an issued state token stays redeemable.
const signInStateTTL = 10 * time.Minute

type pendingSignIn struct {
	ProviderID     string
	RedirectTarget string
	ExpiresAt      time.Time
}

// SignInStates tracks the state tokens handed out when a sign-in is
// initiated, so the callback can verify that the redirect it receives
// belongs to a sign-in this process started. Tokens are single-use.
type SignInStates struct {
	mu      sync.Mutex
	pending map[string]pendingSignIn
}

// NewSignInStates creates the registry and starts its expiry sweep.
func NewSignInStates() *SignInStates {
	s := &SignInStates{
		pending: make(map[string]pendingSignIn),
	}

	go s.sweep()

	return s
}

// Issue creates a fresh state token bound to the provider and redirect
// target the sign-in should finish on.
func (s *SignInStates) Issue(providerID, redirectTarget string) (string, error) {
	state, err := randx.SignInState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pending[state] = pendingSignIn{
		ProviderID:     providerID,
		RedirectTarget: redirectTarget,
		ExpiresAt:      time.Now().Add(signInStateTTL),
	}
	s.mu.Unlock()

	return state, nil
}

// Consume redeems a state token. It returns the redirect target the sign-in
// was started with and whether the token was valid. A second redemption of
// the same token fails.
func (s *SignInStates) Consume(state string) (redirectTarget string, ok bool) {
	if !randx.IsValidSignInState(state) {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.pending[state]
	if !found {
		return "", false
	}

	delete(s.pending, state)

	if time.Now().After(p.ExpiresAt) {
		return "", false
	}

	return p.RedirectTarget, true
}

// sweep drops expired tokens so abandoned sign-ins cannot accumulate.
func (s *SignInStates) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for state, p := range s.pending {
			if now.After(p.ExpiresAt) {
				delete(s.pending, state)
			}
		}
		s.mu.Unlock()
	}
}
