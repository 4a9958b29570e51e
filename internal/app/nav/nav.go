/*
Package nav defines the navigation primitives screens use.

Navigation is abstract here: the screen host decides what a redirect
physically means (a frame pushed to the browser). History keeps the record
either way, with Replace overwriting the current entry so guard redirects
never leave the screen they fired from reachable via "back".
*/
package nav

import "sync"

// Route paths served by the application.
const (
	LandingPath      = "/"
	WelcomePath      = "/welcome"
	ProfileSetupPath = "/profile-setup"
)

// Navigator issues navigation. Replace discards the current history entry;
// Push appends a new one. Guard redirects use Replace, user-initiated
// transitions use Push.
type Navigator interface {
	Replace(path string)
	Push(path string)
}

// Mode distinguishes how an entry reached the history.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModePush    Mode = "push"
)

// Entry is one recorded navigation.
type Entry struct {
	Mode Mode
	Path string
}

// History is a Navigator that records every navigation it is asked for.
// It backs the per-connection navigator and doubles as the test double for
// asserting exactly-once redirect behavior.
type History struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Navigator = (*History)(nil)

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Replace records a replace navigation, overwriting the newest entry.
func (h *History) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := Entry{Mode: ModeReplace, Path: path}
	if len(h.entries) == 0 {
		h.entries = append(h.entries, entry)
		return
	}
	h.entries[len(h.entries)-1] = entry
}

// Push records a push navigation.
func (h *History) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{Mode: ModePush, Path: path})
}

// Entries returns a copy of the recorded navigations.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Current returns the path of the newest entry, or "" when empty.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1].Path
}

// FuncNavigator adapts two functions into a Navigator. The screen host uses
// it to fan navigation out to both the history and the browser socket.
type FuncNavigator struct {
	ReplaceFunc func(path string)
	PushFunc    func(path string)
}

var _ Navigator = (*FuncNavigator)(nil)

func (f *FuncNavigator) Replace(path string) {
	if f.ReplaceFunc != nil {
		f.ReplaceFunc(path)
	}
}

func (f *FuncNavigator) Push(path string) {
	if f.PushFunc != nil {
		f.PushFunc(path)
	}
}
