package screens

import (
	"context"
	"sync"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/profile"
	"takeapp/internal/pkg/logx"
)

// ProfileSetup is the profile completion screen. Unlike the welcome screen
// it redirects unauthenticated visitors immediately, without a grace
// window: the only path here goes through an already-settled welcome
// screen, so an absent session means the visitor is genuinely signed out.
type ProfileSetup struct {
	deps Deps

	mu           sync.Mutex
	alive        bool
	redirected   bool
	loading      bool
	selectionErr string
	workflow     *profile.Workflow
}

var _ Screen = (*ProfileSetup)(nil)

// NewProfileSetup creates the profile-setup screen controller.
func NewProfileSetup(deps Deps) *ProfileSetup {
	return &ProfileSetup{
		deps:    deps,
		alive:   true,
		loading: true,
	}
}

// Path implements Screen.
func (p *ProfileSetup) Path() string { return nav.ProfileSetupPath }

// Mount resolves the session, creates the workflow for the signed-in user,
// and prefills the form from any existing record.
func (p *ProfileSetup) Mount(ctx context.Context) {
	go func() {
		s, err := p.deps.Oracle.GetSession(ctx)
		if err != nil {
			logx.Warn("profile-setup session check failed", "error", err)
			s = nil
		}

		p.mu.Lock()
		if !p.alive {
			p.mu.Unlock()
			return
		}

		if s == nil {
			if p.redirected {
				p.mu.Unlock()
				return
			}
			p.redirected = true
			p.loading = false
			p.mu.Unlock()

			p.deps.Navigator.Replace(nav.LandingPath)
			p.deps.notify()
			return
		}

		wf := profile.NewWorkflow(p.deps.Profiles, p.deps.Objects, p.deps.Navigator, s.UserID, p.deps.NavDelay)
		p.workflow = wf
		p.mu.Unlock()

		if err := wf.LoadExisting(ctx); err != nil {
			logx.Warn("failed to prefill profile form", "user_id", s.UserID, "error", err)
		}

		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()

		p.deps.notify()
	}()
}

// Unmount stops the screen and its workflow.
func (p *ProfileSetup) Unmount() {
	p.mu.Lock()
	p.alive = false
	wf := p.workflow
	p.mu.Unlock()

	if wf != nil {
		wf.Close()
	}
}

// HandleEvent processes form edits, avatar selection, and submission.
func (p *ProfileSetup) HandleEvent(ctx context.Context, ev Event) {
	p.mu.Lock()
	wf := p.workflow
	alive := p.alive
	p.mu.Unlock()

	if !alive {
		return
	}

	switch ev.Name {
	case EventCancel:
		p.deps.Navigator.Push(nav.WelcomePath)
		return
	}

	if wf == nil {
		// Session still resolving; field events have nowhere to go yet.
		return
	}

	switch ev.Name {
	case EventSetField:
		switch ev.Field {
		case FieldFullName:
			wf.SetFullName(ev.Value)
		case FieldPhone:
			wf.SetPhone(ev.Value)
		}
		p.deps.notify()

	case EventChooseAvatar:
		if customErr := profile.ValidateAvatar(ev.FileName, len(ev.FileData)); customErr != nil {
			p.mu.Lock()
			p.selectionErr = customErr.Message
			p.mu.Unlock()
			p.deps.notify()
			return
		}

		p.mu.Lock()
		p.selectionErr = ""
		p.mu.Unlock()

		wf.ChooseAvatar(ev.FileName, ev.FileData)
		p.deps.notify()

	case EventSubmit:
		go func() {
			wf.Submit(ctx)
			p.deps.notify()
		}()
	}
}

// Render implements Screen.
func (p *ProfileSetup) Render() map[string]any {
	p.mu.Lock()
	wf := p.workflow
	loading := p.loading
	selectionErr := p.selectionErr
	p.mu.Unlock()

	state := map[string]any{
		"screen":  "profile-setup",
		"loading": loading,
	}

	if wf == nil {
		return state
	}

	form := wf.FormSnapshot()
	status := wf.StatusSnapshot()

	errMsg := status.Err
	if errMsg == "" {
		errMsg = selectionErr
	}

	state["fullName"] = form.FullName
	state["phone"] = form.Phone
	state["avatarUrl"] = form.AvatarURL
	state["avatarFileName"] = form.AvatarFileName
	state["eligible"] = wf.Eligible()
	state["saving"] = wf.Busy()
	state["error"] = errMsg
	state["success"] = status.Success

	return state
}
