/*
Package guard implements the per-screen navigation guard.

On mount the guard asks the session oracle whether a session is present.
A present session settles the guard immediately. An absent one does not
redirect right away: the oracle may still be hydrating a persisted sign-in,
so the guard opens a bounded grace window and listens for session changes.
Whichever happens first wins: a session appearing cancels the pending
redirect; the window expiring triggers one authoritative re-check, and only
a still-absent session produces the single redirect to the sign-in screen.

Every asynchronous continuation re-checks the guard's liveness under its
mutex before touching state, so nothing runs after Unmount and no mount can
ever navigate twice.
*/
package guard

import (
	"context"
	"sync"
	"time"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/session"
	"takeapp/internal/pkg/logx"
)

// State is the guard's resolution for one screen mount.
type State int

const (
	// StateChecking means the initial session lookup has not settled yet.
	StateChecking State = iota

	// StatePending means the session read absent and the grace window is open.
	StatePending

	// StateAuthenticated means a session was observed; the screen may run.
	StateAuthenticated

	// StateRedirected means the guard issued its one redirect.
	StateRedirected
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateRedirected:
		return "redirected"
	default:
		return "unknown"
	}
}

// Config carries the guard's collaborators and tuning.
type Config struct {
	// Oracle answers session lookups and change subscriptions.
	Oracle session.Oracle

	// Navigator receives the redirect, if one happens.
	Navigator nav.Navigator

	// GraceWindow is how long an absent session is tolerated before the
	// authoritative re-check. The window is fixed; it does not adapt to
	// network conditions.
	GraceWindow time.Duration

	// SignInPath is where unauthenticated visitors are sent.
	SignInPath string

	// ScreenName tags log lines.
	ScreenName string

	// OnResolve, when set, runs once with the terminal state
	// (StateAuthenticated or StateRedirected). It is called outside the
	// guard's lock and never after Unmount.
	OnResolve func(State)
}

// Guard is the navigation guard for a single screen mount. A Guard is used
// once: Mount, optionally Unmount, and it is done.
type Guard struct {
	cfg Config

	mu          sync.Mutex
	state       State
	alive       bool
	mounted     bool
	redirected  bool
	timer       *time.Timer
	unsubscribe func()
}

// New creates an unmounted guard.
func New(cfg Config) *Guard {
	if cfg.SignInPath == "" {
		cfg.SignInPath = nav.LandingPath
	}

	return &Guard{
		cfg:   cfg,
		state: StateChecking,
		alive: true,
	}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Mount starts the guard. Calling Mount more than once is a no-op.
func (g *Guard) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.mounted || !g.alive {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	g.mu.Unlock()

	go g.runInitialCheck(ctx)
}

// Unmount tears the guard down: the grace timer is cancelled, the change
// subscription released, and the liveness flag flipped so any continuation
// still in flight discards its effects.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.alive = false
	timer := g.timer
	g.timer = nil
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if unsub != nil {
		unsub()
	}
}

// runInitialCheck performs the mount-time session lookup and, when the
// session reads absent, opens the grace window and subscribes to changes.
func (g *Guard) runInitialCheck(ctx context.Context) {
	s, err := g.cfg.Oracle.GetSession(ctx)
	if err != nil {
		// Transient provider failure reads as absence; the grace-window
		// re-check is the recovery path.
		logx.Warn("guard session lookup failed, treating as absent",
			"screen", g.cfg.ScreenName, "error", err)
		s = nil
	}

	g.mu.Lock()
	if !g.alive || g.state != StateChecking {
		g.mu.Unlock()
		return
	}

	if s != nil {
		g.settleLocked(StateAuthenticated)
		return
	}

	g.state = StatePending
	g.timer = time.AfterFunc(g.cfg.GraceWindow, func() {
		g.onGraceExpired(ctx)
	})
	g.mu.Unlock()

	logx.Debug("guard waiting out session hydration",
		"screen", g.cfg.ScreenName, "grace_window", g.cfg.GraceWindow)

	unsub := g.cfg.Oracle.OnChange(g.onSessionChange)

	g.mu.Lock()
	if !g.alive || g.state != StatePending {
		// Settled (or unmounted) while we were subscribing; the
		// subscription has no further use.
		g.mu.Unlock()
		unsub()
		return
	}
	g.unsubscribe = unsub
	g.mu.Unlock()
}

// onSessionChange reacts to a session appearing during the grace window.
// Sessions disappearing are ignored: the pending state already assumes
// absence, and terminal states never reopen.
func (g *Guard) onSessionChange(s *session.Session) {
	if s == nil {
		return
	}

	g.mu.Lock()
	if !g.alive || g.state != StatePending {
		g.mu.Unlock()
		return
	}

	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}

	g.settleLocked(StateAuthenticated)
}

// onGraceExpired runs when the grace window closes without a session. It
// performs the one authoritative re-check before deciding to redirect.
func (g *Guard) onGraceExpired(ctx context.Context) {
	g.mu.Lock()
	if !g.alive || g.state != StatePending {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	s, err := g.cfg.Oracle.GetSession(ctx)
	if err != nil {
		logx.Warn("guard re-check failed, treating as absent",
			"screen", g.cfg.ScreenName, "error", err)
		s = nil
	}

	g.mu.Lock()
	if !g.alive || g.state != StatePending {
		g.mu.Unlock()
		return
	}

	if s != nil {
		g.settleLocked(StateAuthenticated)
		return
	}

	if g.redirected {
		// A redirect already happened for this mount; never issue another.
		g.mu.Unlock()
		return
	}
	g.redirected = true
	g.settleLocked(StateRedirected)
}

// settleLocked moves the guard to a terminal state. The caller must hold
// g.mu; settleLocked releases it, then performs the redirect and resolve
// callback outside the lock.
func (g *Guard) settleLocked(terminal State) {
	g.state = terminal
	unsub := g.unsubscribe
	g.unsubscribe = nil
	onResolve := g.cfg.OnResolve
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}

	logx.Debug("guard settled", "screen", g.cfg.ScreenName, "state", terminal.String())

	// Re-check liveness right before each outward effect; Unmount may have
	// raced in since the lock was released.
	if terminal == StateRedirected && g.stillAlive() {
		g.cfg.Navigator.Replace(g.cfg.SignInPath)
	}

	if onResolve != nil && g.stillAlive() {
		onResolve(terminal)
	}
}

func (g *Guard) stillAlive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alive
}
