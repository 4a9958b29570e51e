package profile

import (
	"context"

	"takeapp/internal/pkg/logx"
)

// CompletionState is what the welcome screen knows about the user's profile.
type CompletionState int

const (
	// CompletionUnknown means the lookup has not answered (or failed).
	CompletionUnknown CompletionState = iota

	// CompletionAbsent means no record exists; the screen shows the
	// call-to-action to complete the profile.
	CompletionAbsent

	// CompletionPresent means a record exists.
	CompletionPresent
)

// String returns the state name for logs and render payloads.
func (c CompletionState) String() string {
	switch c {
	case CompletionAbsent:
		return "absent"
	case CompletionPresent:
		return "present"
	default:
		return "unknown"
	}
}

// CheckCompletion reports whether a profile record exists for the user.
// Store failures map to CompletionUnknown: a missing or unreadable profile
// never redirects anybody, it only keeps the screen in its loading state.
func CheckCompletion(ctx context.Context, store Store, userID string) CompletionState {
	record, err := store.GetByUserID(ctx, userID)
	if err != nil {
		logx.Warn("profile completion lookup failed", "user_id", userID, "error", err)
		return CompletionUnknown
	}

	if record == nil {
		return CompletionAbsent
	}

	return CompletionPresent
}
