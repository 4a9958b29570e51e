package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeapp/internal/app/nav"
)

// fakeStore is an in-memory profile Store with scriptable failures.
type fakeStore struct {
	mu         sync.Mutex
	records    map[string]*Record
	getErr     error
	upsertErr  error
	upsertHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*Record)}
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStore) Upsert(ctx context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertHits++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *record
	f.records[record.UserID] = &copied
	return nil
}

func (f *fakeStore) upserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upsertHits
}

func (f *fakeStore) stored(userID string) *Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[userID]
}

// fakeObjects is an in-memory ObjectStore that refuses overwrites, like the
// real bucket.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeObjects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.objects[key]; exists {
		return errors.New("an object already exists at " + key)
	}
	f.objects[key] = body
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (f *fakeObjects) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func TestIsSubmitEligible(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		want     bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"single rune", "J", false},
		{"single rune padded", " J ", false},
		{"two runes", "Jo", true},
		{"two runes padded", "  Jo  ", true},
		{"full name", "Ada Lovelace", true},
		{"two multibyte runes", "李明", true},
		{"single multibyte rune", "李", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSubmitEligible(tt.fullName))
		})
	}
}

func TestWorkflowSubmitSavesAndNavigates(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()
	history := nav.NewHistory()

	wf := NewWorkflow(store, objects, history, "user-1", 10*time.Millisecond)
	wf.SetFullName("  Ada Lovelace  ")
	wf.SetPhone(" 555-0100 ")
	wf.ChooseAvatar("me.png", []byte("png-bytes"))

	wf.Submit(context.Background())

	status := wf.StatusSnapshot()
	assert.Equal(t, SuccessMessage, status.Success)
	assert.Empty(t, status.Err)

	record := store.stored("user-1")
	require.NotNil(t, record)
	assert.Equal(t, "Ada Lovelace", record.FullName)
	assert.Equal(t, "555-0100", record.Phone)

	keys := objects.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "user-1/"))
	assert.True(t, strings.HasSuffix(keys[0], ".png"))
	assert.Equal(t, objects.PublicURL(keys[0]), record.AvatarURL)

	// The staged avatar is consumed; a resubmit would not re-upload it.
	form := wf.FormSnapshot()
	assert.Empty(t, form.AvatarFileName)
	assert.Nil(t, form.AvatarData)
	assert.Equal(t, record.AvatarURL, form.AvatarURL)

	require.Eventually(t, func() bool {
		entries := history.Entries()
		return len(entries) == 1 && entries[0].Path == nav.WelcomePath && entries[0].Mode == nav.ModeReplace
	}, time.Second, time.Millisecond)
}

func TestWorkflowSubmitWithoutNewAvatarKeepsExistingURL(t *testing.T) {
	store := newFakeStore()
	store.records["user-1"] = &Record{
		UserID:    "user-1",
		FullName:  "Ada Lovelace",
		AvatarURL: "https://cdn.example.com/user-1/old.jpg",
	}
	objects := newFakeObjects()

	wf := NewWorkflow(store, objects, nav.NewHistory(), "user-1", time.Millisecond)
	require.NoError(t, wf.LoadExisting(context.Background()))

	wf.SetFullName("Ada L.")
	wf.Submit(context.Background())

	record := store.stored("user-1")
	require.NotNil(t, record)
	assert.Equal(t, "Ada L.", record.FullName)
	assert.Equal(t, "https://cdn.example.com/user-1/old.jpg", record.AvatarURL)
	assert.Empty(t, objects.keys())
}

func TestWorkflowUploadFailureSurfacesVerbatimAndSkipsUpsert(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()
	objects.putErr = errors.New("quota exceeded")
	history := nav.NewHistory()

	wf := NewWorkflow(store, objects, history, "user-1", time.Millisecond)
	wf.SetFullName("Ada Lovelace")
	wf.ChooseAvatar("me.png", []byte("png-bytes"))

	wf.Submit(context.Background())

	status := wf.StatusSnapshot()
	assert.Equal(t, "quota exceeded", status.Err)
	assert.Empty(t, status.Success)

	assert.Zero(t, store.upserts())
	assert.Empty(t, history.Entries())
	assert.False(t, wf.Busy())

	// The form keeps everything, including the staged file, for a retry.
	form := wf.FormSnapshot()
	assert.Equal(t, "Ada Lovelace", form.FullName)
	assert.Equal(t, "me.png", form.AvatarFileName)
	assert.Equal(t, []byte("png-bytes"), form.AvatarData)
}

func TestWorkflowUpsertFailureSurfacesVerbatim(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("connection reset")
	history := nav.NewHistory()

	wf := NewWorkflow(store, newFakeObjects(), history, "user-1", time.Millisecond)
	wf.SetFullName("Ada Lovelace")

	wf.Submit(context.Background())

	assert.Equal(t, "connection reset", wf.StatusSnapshot().Err)
	assert.Empty(t, history.Entries())
	assert.False(t, wf.Busy())
}

func TestWorkflowSubmitIneligibleIsNoOp(t *testing.T) {
	store := newFakeStore()

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	wf.SetFullName(" J ")

	wf.Submit(context.Background())

	assert.Zero(t, store.upserts())
	assert.Empty(t, wf.StatusSnapshot().Success)
}

func TestWorkflowSubmitWithoutUserIsNoOp(t *testing.T) {
	store := newFakeStore()

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "", time.Millisecond)
	wf.SetFullName("Ada Lovelace")

	wf.Submit(context.Background())

	assert.Zero(t, store.upserts())
}

func TestWorkflowResubmitOverwritesRecord(t *testing.T) {
	store := newFakeStore()

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	wf.SetFullName("Ada Lovelace")
	wf.Submit(context.Background())

	wf.SetFullName("Ada King")
	wf.SetPhone("555-0101")
	wf.Submit(context.Background())

	record := store.stored("user-1")
	require.NotNil(t, record)
	assert.Equal(t, "Ada King", record.FullName)
	assert.Equal(t, "555-0101", record.Phone)
	assert.Equal(t, 2, store.upserts())
}

func TestWorkflowCloseCancelsSuccessNavigation(t *testing.T) {
	store := newFakeStore()
	history := nav.NewHistory()

	wf := NewWorkflow(store, newFakeObjects(), history, "user-1", 30*time.Millisecond)
	wf.SetFullName("Ada Lovelace")

	wf.Submit(context.Background())
	require.Equal(t, SuccessMessage, wf.StatusSnapshot().Success)

	wf.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, history.Entries())
}

func TestWorkflowClosedSubmitIsNoOp(t *testing.T) {
	store := newFakeStore()

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	wf.SetFullName("Ada Lovelace")
	wf.Close()

	wf.Submit(context.Background())

	assert.Zero(t, store.upserts())
}

// blockingStore parks Upsert until released, so a test can hold a
// submission in flight.
type blockingStore struct {
	fakeStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Upsert(ctx context.Context, record *Record) error {
	b.entered <- struct{}{}
	<-b.release
	return b.fakeStore.Upsert(ctx, record)
}

func TestWorkflowSecondSubmitWhileBusyIsNoOp(t *testing.T) {
	store := &blockingStore{
		fakeStore: fakeStore{records: make(map[string]*Record)},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	wf.SetFullName("Ada Lovelace")

	done := make(chan struct{})
	go func() {
		wf.Submit(context.Background())
		close(done)
	}()

	<-store.entered
	assert.True(t, wf.Busy())

	// Re-entrant submit while the first is in flight must not reach the
	// store a second time.
	wf.Submit(context.Background())

	close(store.release)
	<-done

	assert.Equal(t, 1, store.upserts())
	assert.False(t, wf.Busy())
}

func TestWorkflowLoadExistingPrefillsForm(t *testing.T) {
	store := newFakeStore()
	store.records["user-1"] = &Record{
		UserID:    "user-1",
		FullName:  "Ada Lovelace",
		Phone:     "555-0100",
		AvatarURL: "https://cdn.example.com/user-1/a.jpg",
	}

	wf := NewWorkflow(store, newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	require.NoError(t, wf.LoadExisting(context.Background()))

	form := wf.FormSnapshot()
	assert.Equal(t, "Ada Lovelace", form.FullName)
	assert.Equal(t, "555-0100", form.Phone)
	assert.Equal(t, "https://cdn.example.com/user-1/a.jpg", form.AvatarURL)
	assert.True(t, wf.Eligible())
}

func TestWorkflowLoadExistingNoRecordLeavesFormEmpty(t *testing.T) {
	wf := NewWorkflow(newFakeStore(), newFakeObjects(), nav.NewHistory(), "user-1", time.Millisecond)
	require.NoError(t, wf.LoadExisting(context.Background()))

	form := wf.FormSnapshot()
	assert.Empty(t, form.FullName)
	assert.False(t, wf.Eligible())
}

func TestWorkflowUploadKeysNeverCollide(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()

	wf := NewWorkflow(store, objects, nav.NewHistory(), "user-1", time.Millisecond)

	for i := 0; i < 3; i++ {
		wf.SetFullName("Ada Lovelace")
		wf.ChooseAvatar("me.png", []byte("png-bytes"))
		wf.Submit(context.Background())
		require.Equal(t, SuccessMessage, wf.StatusSnapshot().Success)
	}

	// Each submission stored a fresh object; nothing was overwritten.
	assert.Len(t, objects.keys(), 3)
}
