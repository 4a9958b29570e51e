/*
Package screens implements the application's screen controllers.

A screen controller lives for one visit: the host mounts it when the
browser navigates to its route, feeds it user events, pulls render
snapshots whenever the controller asks for one via Notify, and unmounts it
on navigation away or disconnect. All session decisions go through the
navigation guard and the session oracle; the controllers themselves only
compose them.
*/
package screens

import (
	"context"
	"time"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/profile"
	"takeapp/internal/app/session"
	"takeapp/internal/pkg/errs"
)

// Event names accepted by the screens.
const (
	EventSignIn       = "signin"
	EventSignOut      = "signout"
	EventSetField     = "set"
	EventChooseAvatar = "choose-avatar"
	EventSubmit       = "submit"
	EventCancel       = "cancel"
)

// Form field names for EventSetField.
const (
	FieldFullName = "fullName"
	FieldPhone    = "phone"
)

// Event is one user interaction delivered to a screen.
type Event struct {
	Name     string
	Field    string
	Value    string
	FileName string
	FileData []byte
}

// Screen is a mounted screen controller.
type Screen interface {
	// Path is the route the screen serves.
	Path() string

	// Mount starts the screen's asynchronous work. Called once.
	Mount(ctx context.Context)

	// Unmount stops the screen; nothing it started may take effect after.
	Unmount()

	// HandleEvent processes one user interaction.
	HandleEvent(ctx context.Context, ev Event)

	// Render returns the state the browser should display.
	Render() map[string]any
}

// Deps carries the collaborators screens need.
type Deps struct {
	Oracle    session.Oracle
	Profiles  profile.Store
	Objects   profile.ObjectStore
	Navigator nav.Navigator

	// GraceWindow is the guard's hydration tolerance on guarded screens.
	GraceWindow time.Duration

	// NavDelay is the pause between a successful profile save and the
	// navigation to the welcome screen.
	NavDelay time.Duration

	// Notify asks the host to pull Render and push it to the browser.
	// Screens call it after every state change; it may be nil in tests.
	Notify func()
}

func (d Deps) notify() {
	if d.Notify != nil {
		d.Notify()
	}
}

// New constructs the screen controller for a route.
func New(path string, deps Deps) (Screen, *errs.CustomError) {
	switch path {
	case nav.LandingPath:
		return NewLanding(deps), nil
	case nav.WelcomePath:
		return NewWelcome(deps), nil
	case nav.ProfileSetupPath:
		return NewProfileSetup(deps), nil
	default:
		return nil, errs.NewError(errs.ErrUnknownScreen)
	}
}
