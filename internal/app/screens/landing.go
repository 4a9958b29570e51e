package screens

import (
	"context"
	"sync"

	"takeapp/internal/app/nav"
	"takeapp/internal/pkg/logx"
)

// GoogleProviderID is the external identity provider the landing screen
// offers.
const GoogleProviderID = "google"

// Landing is the public entry screen. Signed-in visitors are moved along to
// the welcome screen; everyone else gets the sign-up flow.
type Landing struct {
	deps Deps

	mu        sync.Mutex
	alive     bool
	checking  bool
	signInURL string
	errMsg    string
}

var _ Screen = (*Landing)(nil)

// NewLanding creates the landing screen controller.
func NewLanding(deps Deps) *Landing {
	return &Landing{
		deps:     deps,
		alive:    true,
		checking: true,
	}
}

// Path implements Screen.
func (l *Landing) Path() string { return nav.LandingPath }

// Mount checks for an existing session and redirects signed-in visitors.
// The landing screen uses a single lookup with no grace window: showing the
// sign-up pitch to a hydrating visitor for a moment is harmless, and the
// sign-in press re-checks anyway.
func (l *Landing) Mount(ctx context.Context) {
	go func() {
		s, err := l.deps.Oracle.GetSession(ctx)
		if err != nil {
			logx.Warn("landing session check failed", "error", err)
			s = nil
		}

		l.mu.Lock()
		if !l.alive {
			l.mu.Unlock()
			return
		}
		l.checking = false
		l.mu.Unlock()

		if s != nil {
			l.deps.Navigator.Replace(nav.WelcomePath)
		}
		l.deps.notify()
	}()
}

// Unmount stops the screen.
func (l *Landing) Unmount() {
	l.mu.Lock()
	l.alive = false
	l.mu.Unlock()
}

// HandleEvent processes the sign-in press.
func (l *Landing) HandleEvent(ctx context.Context, ev Event) {
	if ev.Name != EventSignIn {
		return
	}

	go func() {
		// Already signed in: skip the provider round-trip entirely.
		s, err := l.deps.Oracle.GetSession(ctx)
		if err != nil {
			s = nil
		}
		if s != nil {
			l.mu.Lock()
			alive := l.alive
			l.mu.Unlock()
			if alive {
				l.deps.Navigator.Push(nav.WelcomePath)
			}
			return
		}

		url, err := l.deps.Oracle.SignInWithProvider(ctx, GoogleProviderID, nav.WelcomePath)

		l.mu.Lock()
		if !l.alive {
			l.mu.Unlock()
			return
		}
		if err != nil {
			logx.Error(err, "failed to start external sign-in")
			l.errMsg = "Sign-in failed. Please try again."
		} else {
			l.signInURL = url
			l.errMsg = ""
		}
		l.mu.Unlock()

		l.deps.notify()
	}()
}

// Render implements Screen. A non-empty signInUrl tells the browser to
// leave for the identity provider.
func (l *Landing) Render() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]any{
		"screen":    "landing",
		"checking":  l.checking,
		"signInUrl": l.signInURL,
		"error":     l.errMsg,
	}
}
