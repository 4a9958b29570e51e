package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/profile"
	"takeapp/internal/app/session"
	"takeapp/internal/pkg/errs"
)

// fakeOracle drives session visibility from the test.
type fakeOracle struct {
	mu        sync.Mutex
	session   *session.Session
	signInURL string
	signInErr error
	listeners map[int]func(*session.Session)
	nextID    int
	signedOut bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		signInURL: "https://idp.example.com/authorize?state=abc",
		listeners: make(map[int]func(*session.Session)),
	}
}

func (f *fakeOracle) GetSession(ctx context.Context) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeOracle) OnChange(fn func(*session.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeOracle) SignInWithProvider(ctx context.Context, providerID, redirectTarget string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return f.signInURL, nil
}

func (f *fakeOracle) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.session = nil
	f.signedOut = true
	fns := make([]func(*session.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

func (f *fakeOracle) set(s *session.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

func (f *fakeOracle) didSignOut() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedOut
}

// fakeProfiles is an in-memory profile.Store.
type fakeProfiles struct {
	mu      sync.Mutex
	records map[string]*profile.Record
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{records: make(map[string]*profile.Record)}
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID string) (*profile.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, record *profile.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.records[record.UserID] = &copied
	return nil
}

func (f *fakeProfiles) stored(userID string) *profile.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[userID]
}

// fakeObjects accepts every upload.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.objects[key]; exists {
		return errors.New("an object already exists at " + key)
	}
	f.objects[key] = body
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func testDeps(oracle *fakeOracle, history *nav.History) Deps {
	return Deps{
		Oracle:      oracle,
		Profiles:    newFakeProfiles(),
		Objects:     newFakeObjects(),
		Navigator:   history,
		GraceWindow: 30 * time.Millisecond,
		NavDelay:    5 * time.Millisecond,
	}
}

func signedIn() *session.Session {
	return &session.Session{
		UserID:    "user-1",
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestNewResolvesKnownPathsOnly(t *testing.T) {
	deps := testDeps(newFakeOracle(), nav.NewHistory())

	for _, path := range []string{nav.LandingPath, nav.WelcomePath, nav.ProfileSetupPath} {
		screen, customErr := New(path, deps)
		require.Nil(t, customErr)
		assert.Equal(t, path, screen.Path())
	}

	_, customErr := New("/nope", deps)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUnknownScreen, customErr.Code)
}

func TestLandingAnonymousStays(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	landing := NewLanding(testDeps(oracle, history))
	landing.Mount(context.Background())
	defer landing.Unmount()

	require.Eventually(t, func() bool {
		return landing.Render()["checking"] == false
	}, time.Second, time.Millisecond)

	assert.Empty(t, history.Entries())
}

func TestLandingSignedInRedirectsToWelcome(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())
	history := nav.NewHistory()

	landing := NewLanding(testDeps(oracle, history))
	landing.Mount(context.Background())
	defer landing.Unmount()

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.WelcomePath && entries[0].Mode == nav.ModeReplace
	}, time.Second, time.Millisecond)
}

func TestLandingSignInEventExposesAuthURL(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	landing := NewLanding(testDeps(oracle, history))
	landing.Mount(context.Background())
	defer landing.Unmount()

	landing.HandleEvent(context.Background(), Event{Name: EventSignIn})

	require.Eventually(t, func() bool {
		return landing.Render()["signInUrl"] == oracle.signInURL
	}, time.Second, time.Millisecond)
	assert.Empty(t, history.Entries())
}

func TestLandingSignInWhileSignedInSkipsProvider(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	landing := NewLanding(testDeps(oracle, history))
	landing.Mount(context.Background())
	defer landing.Unmount()

	require.Eventually(t, func() bool {
		return landing.Render()["checking"] == false
	}, time.Second, time.Millisecond)

	oracle.set(signedIn())
	landing.HandleEvent(context.Background(), Event{Name: EventSignIn})

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.WelcomePath && entries[0].Mode == nav.ModePush
	}, time.Second, time.Millisecond)
	assert.Empty(t, landing.Render()["signInUrl"])
}

func TestLandingSignInFailureShowsMessage(t *testing.T) {
	oracle := newFakeOracle()
	oracle.signInErr = errors.New("discovery unavailable")

	landing := NewLanding(testDeps(oracle, nav.NewHistory()))
	landing.Mount(context.Background())
	defer landing.Unmount()

	landing.HandleEvent(context.Background(), Event{Name: EventSignIn})

	require.Eventually(t, func() bool {
		errMsg, _ := landing.Render()["error"].(string)
		return errMsg != ""
	}, time.Second, time.Millisecond)
}

func TestWelcomeAuthenticatedShowsCompletion(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())
	history := nav.NewHistory()

	deps := testDeps(oracle, history)
	profiles := deps.Profiles.(*fakeProfiles)
	profiles.records["user-1"] = &profile.Record{UserID: "user-1", FullName: "Ada"}

	welcome := NewWelcome(deps)
	welcome.Mount(context.Background())
	defer welcome.Unmount()

	require.Eventually(t, func() bool {
		state := welcome.Render()
		return state["guardState"] == "authenticated" && state["completion"] == "present"
	}, time.Second, time.Millisecond)

	assert.Empty(t, history.Entries())
}

func TestWelcomeAuthenticatedWithoutProfile(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())

	welcome := NewWelcome(testDeps(oracle, nav.NewHistory()))
	welcome.Mount(context.Background())
	defer welcome.Unmount()

	require.Eventually(t, func() bool {
		state := welcome.Render()
		return state["guardState"] == "authenticated" && state["completion"] == "absent"
	}, time.Second, time.Millisecond)
}

func TestWelcomeAnonymousRedirectsAfterGrace(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	welcome := NewWelcome(testDeps(oracle, history))
	welcome.Mount(context.Background())
	defer welcome.Unmount()

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.LandingPath && entries[0].Mode == nav.ModeReplace
	}, time.Second, time.Millisecond)

	assert.Equal(t, "redirected", welcome.Render()["guardState"])
}

func TestWelcomeLateHydrationBeatsGrace(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	deps := testDeps(oracle, history)
	deps.GraceWindow = 500 * time.Millisecond

	welcome := NewWelcome(deps)
	welcome.Mount(context.Background())
	defer welcome.Unmount()

	time.Sleep(20 * time.Millisecond)
	oracle.set(signedIn())

	require.Eventually(t, func() bool {
		return welcome.Render()["guardState"] == "authenticated"
	}, 2*time.Second, time.Millisecond)
	assert.Empty(t, history.Entries())
}

func TestWelcomeSignOutNavigatesToLanding(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())
	history := nav.NewHistory()

	welcome := NewWelcome(testDeps(oracle, history))
	welcome.Mount(context.Background())
	defer welcome.Unmount()

	require.Eventually(t, func() bool {
		return welcome.Render()["guardState"] == "authenticated"
	}, time.Second, time.Millisecond)

	welcome.HandleEvent(context.Background(), Event{Name: EventSignOut})

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.LandingPath && entries[0].Mode == nav.ModePush
	}, time.Second, time.Millisecond)
	assert.True(t, oracle.didSignOut())
}

func TestProfileSetupAnonymousRedirectsImmediately(t *testing.T) {
	oracle := newFakeOracle()
	history := nav.NewHistory()

	setup := NewProfileSetup(testDeps(oracle, history))
	setup.Mount(context.Background())
	defer setup.Unmount()

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.LandingPath && entries[0].Mode == nav.ModeReplace
	}, time.Second, time.Millisecond)
}

func TestProfileSetupPrefillsExistingRecord(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())

	deps := testDeps(oracle, nav.NewHistory())
	profiles := deps.Profiles.(*fakeProfiles)
	profiles.records["user-1"] = &profile.Record{
		UserID:   "user-1",
		FullName: "Ada Lovelace",
		Phone:    "555-0100",
	}

	setup := NewProfileSetup(deps)
	setup.Mount(context.Background())
	defer setup.Unmount()

	require.Eventually(t, func() bool {
		state := setup.Render()
		return state["loading"] == false && state["fullName"] == "Ada Lovelace"
	}, time.Second, time.Millisecond)

	state := setup.Render()
	assert.Equal(t, "555-0100", state["phone"])
	assert.Equal(t, true, state["eligible"])
}

func TestProfileSetupSubmitSavesAndNavigates(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())
	history := nav.NewHistory()

	deps := testDeps(oracle, history)
	profiles := deps.Profiles.(*fakeProfiles)

	setup := NewProfileSetup(deps)
	setup.Mount(context.Background())
	defer setup.Unmount()

	require.Eventually(t, func() bool {
		return setup.Render()["loading"] == false
	}, time.Second, time.Millisecond)

	ctx := context.Background()
	setup.HandleEvent(ctx, Event{Name: EventSetField, Field: FieldFullName, Value: "Ada Lovelace"})
	setup.HandleEvent(ctx, Event{Name: EventSetField, Field: FieldPhone, Value: "555-0100"})
	setup.HandleEvent(ctx, Event{Name: EventSubmit})

	require.Eventually(t, func() bool {
		return setup.Render()["success"] == profile.SuccessMessage
	}, time.Second, time.Millisecond)

	record := profiles.stored("user-1")
	require.NotNil(t, record)
	assert.Equal(t, "Ada Lovelace", record.FullName)

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.WelcomePath && entries[0].Mode == nav.ModeReplace
	}, time.Second, time.Millisecond)
}

func TestProfileSetupRejectsBadAvatarSelection(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())

	setup := NewProfileSetup(testDeps(oracle, nav.NewHistory()))
	setup.Mount(context.Background())
	defer setup.Unmount()

	require.Eventually(t, func() bool {
		return setup.Render()["loading"] == false
	}, time.Second, time.Millisecond)

	setup.HandleEvent(context.Background(), Event{
		Name:     EventChooseAvatar,
		FileName: "malware.exe",
		FileData: []byte("bits"),
	})

	errMsg, _ := setup.Render()["error"].(string)
	assert.NotEmpty(t, errMsg)

	// A valid selection clears the complaint.
	setup.HandleEvent(context.Background(), Event{
		Name:     EventChooseAvatar,
		FileName: "me.png",
		FileData: []byte("png-bytes"),
	})

	errMsg, _ = setup.Render()["error"].(string)
	assert.Empty(t, errMsg)
	assert.Equal(t, "me.png", setup.Render()["avatarFileName"])
}

func TestProfileSetupCancelReturnsToWelcome(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set(signedIn())
	history := nav.NewHistory()

	setup := NewProfileSetup(testDeps(oracle, history))
	setup.Mount(context.Background())
	defer setup.Unmount()

	setup.HandleEvent(context.Background(), Event{Name: EventCancel})

	entries := history.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, nav.WelcomePath, entries[0].Path)
	assert.Equal(t, nav.ModePush, entries[0].Mode)
}
