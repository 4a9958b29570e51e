package screens

import (
	"context"
	"sync"

	"takeapp/internal/app/guard"
	"takeapp/internal/app/nav"
	"takeapp/internal/app/profile"
	"takeapp/internal/pkg/logx"
)

// Welcome is the signed-in home screen. It is the guarded screen: the
// navigation guard decides whether the visitor may stay, and an independent
// lookup reports whether their profile is complete. A missing profile never
// redirects; it only changes what the screen shows.
type Welcome struct {
	deps  Deps
	guard *guard.Guard

	mu         sync.Mutex
	alive      bool
	completion profile.CompletionState
}

var _ Screen = (*Welcome)(nil)

// NewWelcome creates the welcome screen controller.
func NewWelcome(deps Deps) *Welcome {
	w := &Welcome{
		deps:       deps,
		alive:      true,
		completion: profile.CompletionUnknown,
	}

	w.guard = guard.New(guard.Config{
		Oracle:      deps.Oracle,
		Navigator:   deps.Navigator,
		GraceWindow: deps.GraceWindow,
		SignInPath:  nav.LandingPath,
		ScreenName:  "welcome",
		OnResolve:   w.onGuardResolved,
	})

	return w
}

// Path implements Screen.
func (w *Welcome) Path() string { return nav.WelcomePath }

// Mount starts the guard and the profile-presence lookup. The two run
// independently, like the two mount effects they descend from.
func (w *Welcome) Mount(ctx context.Context) {
	w.guard.Mount(ctx)
	go w.loadCompletion(ctx)
}

// onGuardResolved re-runs the completion lookup once the guard settles on
// Authenticated: the first lookup may have raced a still-hydrating session
// and come back empty-handed.
func (w *Welcome) onGuardResolved(state guard.State) {
	if state == guard.StateAuthenticated {
		go w.loadCompletion(context.Background())
	}
	w.deps.notify()
}

// loadCompletion resolves CompletionState for the current session, if any.
func (w *Welcome) loadCompletion(ctx context.Context) {
	s, err := w.deps.Oracle.GetSession(ctx)
	if err != nil {
		logx.Warn("welcome completion lookup: session check failed", "error", err)
		s = nil
	}
	if s == nil {
		// No session, nothing to look up; the guard owns what happens next.
		return
	}

	state := profile.CheckCompletion(ctx, w.deps.Profiles, s.UserID)

	w.mu.Lock()
	if !w.alive {
		w.mu.Unlock()
		return
	}
	w.completion = state
	w.mu.Unlock()

	w.deps.notify()
}

// Unmount tears down the guard and stops the screen.
func (w *Welcome) Unmount() {
	w.mu.Lock()
	w.alive = false
	w.mu.Unlock()

	w.guard.Unmount()
}

// HandleEvent processes the sign-out press.
func (w *Welcome) HandleEvent(ctx context.Context, ev Event) {
	if ev.Name != EventSignOut {
		return
	}

	go func() {
		if err := w.deps.Oracle.SignOut(ctx); err != nil {
			logx.Error(err, "sign-out failed")
		}

		w.mu.Lock()
		alive := w.alive
		w.mu.Unlock()
		if alive {
			w.deps.Navigator.Push(nav.LandingPath)
		}
	}()
}

// Render implements Screen.
func (w *Welcome) Render() map[string]any {
	w.mu.Lock()
	completion := w.completion
	w.mu.Unlock()

	return map[string]any{
		"screen":     "welcome",
		"guardState": w.guard.State().String(),
		"completion": completion.String(),
	}
}
