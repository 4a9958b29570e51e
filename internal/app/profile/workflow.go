package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"takeapp/internal/app/nav"
	"takeapp/internal/pkg/logx"
	"takeapp/internal/pkg/randx"
)

// User-visible workflow messages.
const (
	SuccessMessage        = "Profile saved!"
	GenericFailureMessage = "Failed to save profile"
)

// Form is the profile-setup form state. AvatarURL is the already-stored
// avatar, if any; AvatarFileName/AvatarData describe a newly chosen file
// that has not been uploaded yet.
type Form struct {
	FullName       string
	Phone          string
	AvatarURL      string
	AvatarFileName string
	AvatarData     []byte
}

// Status is the single user-visible outcome slot: at most one of Err or
// Success is set at a time.
type Status struct {
	Err     string
	Success string
}

// IsSubmitEligible reports whether the form may be submitted: the trimmed
// full name must be longer than one rune. Nothing else is required.
func IsSubmitEligible(fullName string) bool {
	return len([]rune(strings.TrimSpace(fullName))) > 1
}

// Workflow runs the profile completion: validation, scoped avatar upload,
// and the record upsert, followed by a delayed navigation to the welcome
// screen. One submission runs at a time; a second Submit while one is in
// flight is a no-op.
type Workflow struct {
	store     Store
	objects   ObjectStore
	navigator nav.Navigator
	userID    string
	navDelay  time.Duration

	mu       sync.Mutex
	form     Form
	status   Status
	busy     bool
	alive    bool
	navTimer *time.Timer
}

// NewWorkflow creates a workflow bound to the authenticated user.
func NewWorkflow(store Store, objects ObjectStore, navigator nav.Navigator, userID string, navDelay time.Duration) *Workflow {
	return &Workflow{
		store:     store,
		objects:   objects,
		navigator: navigator,
		userID:    userID,
		navDelay:  navDelay,
		alive:     true,
	}
}

// LoadExisting prefills the form from the user's stored record, if any.
// "No record" is not an error and leaves the form untouched.
func (w *Workflow) LoadExisting(ctx context.Context) error {
	record, err := w.store.GetByUserID(ctx, w.userID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.alive {
		return nil
	}

	w.form.FullName = record.FullName
	w.form.Phone = record.Phone
	w.form.AvatarURL = record.AvatarURL
	return nil
}

// SetFullName updates the name field.
func (w *Workflow) SetFullName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.FullName = name
}

// SetPhone updates the phone field.
func (w *Workflow) SetPhone(phone string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Phone = phone
}

// ChooseAvatar stages a newly selected avatar file.
func (w *Workflow) ChooseAvatar(fileName string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.AvatarFileName = fileName
	w.form.AvatarData = data
}

// Eligible reports whether the current form may be submitted.
func (w *Workflow) Eligible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return IsSubmitEligible(w.form.FullName)
}

// Busy reports whether a submission is in flight.
func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// FormSnapshot returns a copy of the current form state.
func (w *Workflow) FormSnapshot() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// StatusSnapshot returns the current status message pair.
func (w *Workflow) StatusSnapshot() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Submit runs the submission pipeline. It is a no-op when the form is not
// eligible, another submission is in flight, or the workflow is closed.
// Every failure path ends in a single user-visible message; Submit never
// panics out and never leaves the form unusable for a retry.
func (w *Workflow) Submit(ctx context.Context) {
	w.mu.Lock()
	if !w.alive || w.busy || w.userID == "" || !IsSubmitEligible(w.form.FullName) {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.status = Status{}
	form := w.form
	w.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logx.Error(fmt.Errorf("panic: %v", r), "profile submission panicked", "user_id", w.userID)
			w.setStatus(Status{Err: GenericFailureMessage})
		}
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	// An untouched avatar is carried over as-is; submission never clears an
	// existing avatar implicitly.
	avatarURL := form.AvatarURL
	if len(form.AvatarData) > 0 {
		ext := AvatarExt(form.AvatarFileName)
		key := fmt.Sprintf("%s/%s.%s", w.userID, randx.UploadSuffix(), ext)

		if err := w.objects.Put(ctx, key, form.AvatarData, AvatarContentType(ext)); err != nil {
			// Surface the store's message verbatim; the form keeps its
			// state so the user can retry without re-entering anything.
			w.setStatus(Status{Err: err.Error()})
			return
		}

		avatarURL = w.objects.PublicURL(key)
	}

	record := &Record{
		UserID:    w.userID,
		FullName:  strings.TrimSpace(form.FullName),
		Phone:     strings.TrimSpace(form.Phone),
		AvatarURL: avatarURL,
	}

	if err := w.store.Upsert(ctx, record); err != nil {
		w.setStatus(Status{Err: err.Error()})
		return
	}

	w.mu.Lock()
	if !w.alive {
		w.mu.Unlock()
		return
	}
	w.status = Status{Success: SuccessMessage}
	w.form.AvatarURL = avatarURL
	w.form.AvatarFileName = ""
	w.form.AvatarData = nil

	// The delay only exists so the success message is perceivable before
	// the screen changes.
	w.navTimer = time.AfterFunc(w.navDelay, func() {
		w.mu.Lock()
		alive := w.alive
		w.mu.Unlock()
		if !alive {
			return
		}
		w.navigator.Replace(nav.WelcomePath)
	})
	w.mu.Unlock()
}

// setStatus stores the status unless the workflow has been closed.
func (w *Workflow) setStatus(s Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.alive {
		return
	}
	w.status = s
}

// Close stops the workflow: the pending success navigation, if any, is
// cancelled and later continuations discard their effects.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.alive = false
	timer := w.navTimer
	w.navTimer = nil
	w.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}
