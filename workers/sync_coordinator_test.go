package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studysync-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocal struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{data: make(map[string]string)}
}

func (f *fakeLocal) Raw(userID, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[userID+"|"+key]
	return v, ok, nil
}

func (f *fakeLocal) SaveRaw(userID, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[userID+"|"+key] = value
	return nil
}

type fakeRemote struct {
	mu       sync.Mutex
	rows     []RemoteRow
	fetchErr error
	pushErr  error
	upserts  []RemoteRow
}

func (f *fakeRemote) FetchAll(_ context.Context, userID string) ([]RemoteRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

func (f *fakeRemote) Upsert(_ context.Context, row RemoteRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.upserts = append(f.upserts, row)
	return nil
}

func (f *fakeRemote) pushed() []RemoteRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RemoteRow, len(f.upserts))
	copy(out, f.upserts)
	return out
}

func newTestCoordinator(local *fakeLocal, remote *fakeRemote) *SyncCoordinator {
	c := NewSyncCoordinator(local, remote)
	c.debounce = 50 * time.Millisecond
	c.savedHold = 50 * time.Millisecond
	return c
}

func remoteIdentity(id string) *models.Identity {
	return &models.Identity{ID: id, AuthType: models.AuthTypeRemote}
}

func localIdentity(id string) *models.Identity {
	return &models.Identity{ID: id, AuthType: models.AuthTypeLocal}
}

// notifyingLocal mirrors the production wiring, where the store fires
// its observer synchronously from every raw save.
type notifyingLocal struct {
	*fakeLocal
	observer *SyncCoordinator
}

func (n *notifyingLocal) SaveRaw(userID, key, value string) error {
	if err := n.fakeLocal.SaveRaw(userID, key, value); err != nil {
		return err
	}
	if n.observer != nil {
		n.observer.StateChanged(userID, key)
	}
	return nil
}

func TestInitialLoadWithObservedStoreCompletes(t *testing.T) {
	local := &notifyingLocal{fakeLocal: newFakeLocal()}
	remote := &fakeRemote{rows: []RemoteRow{
		{UserID: "u1", Key: models.KeyStats, Value: `{"level":3}`},
		{UserID: "u1", Key: models.KeyTasks, Value: `["t"]`},
	}}
	coord := NewSyncCoordinator(local, remote)
	coord.debounce = 50 * time.Millisecond
	coord.savedHold = 50 * time.Millisecond
	local.observer = coord

	done := make(chan error, 1)
	go func() { done <- coord.BeginSession(remoteIdentity("u1")) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("initial load never completed with an observed store")
	}

	v, ok, _ := local.Raw("u1", models.KeyStats)
	assert.True(t, ok)
	assert.Equal(t, `{"level":3}`, v)
	assert.True(t, coord.StatusFor("u1").Ready)

	// The observer fired for every applied row, but none of those
	// writes may echo back upstream: readiness opens afterwards.
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, remote.pushed())
}

func TestLocalSessionIsReadyImmediately(t *testing.T) {
	coord := newTestCoordinator(newFakeLocal(), &fakeRemote{})
	require.NoError(t, coord.BeginSession(localIdentity("u1")))

	status := coord.StatusFor("u1")
	assert.True(t, status.Ready)
	assert.False(t, status.Remote)
	assert.Equal(t, SyncIdle, status.LoadState)
}

func TestBeginSessionAppliesRemoteRows(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{rows: []RemoteRow{
		{UserID: "u1", Key: models.KeyStats, Value: `{"level":3}`},
		{UserID: "u1", Key: "legacy-junk", Value: `{}`},
	}}
	coord := newTestCoordinator(local, remote)

	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	v, ok, _ := local.Raw("u1", models.KeyStats)
	assert.True(t, ok)
	assert.Equal(t, `{"level":3}`, v)

	_, ok, _ = local.Raw("u1", "legacy-junk")
	assert.False(t, ok, "unrecognized keys are rejected at the boundary")

	status := coord.StatusFor("u1")
	assert.True(t, status.Ready)
	assert.Equal(t, SyncIdle, status.LoadState)
}

func TestBeginSessionLoadFailureKeepsLocalFallback(t *testing.T) {
	local := newFakeLocal()
	local.SaveRaw("u1", models.KeyStats, `{"level":2}`)
	remote := &fakeRemote{fetchErr: errors.New("remote down")}
	coord := newTestCoordinator(local, remote)

	err := coord.BeginSession(remoteIdentity("u1"))
	assert.Error(t, err)

	status := coord.StatusFor("u1")
	assert.True(t, status.Ready, "local state still serves on load failure")
	assert.Equal(t, SyncError, status.LoadState)
	assert.Equal(t, "remote down", status.LoadError)

	v, ok, _ := local.Raw("u1", models.KeyStats)
	assert.True(t, ok)
	assert.Equal(t, `{"level":2}`, v)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["v1"]`)
	coord.StateChanged("u1", models.KeyTasks)
	time.Sleep(20 * time.Millisecond)
	local.SaveRaw("u1", models.KeyTasks, `["v2"]`)
	coord.StateChanged("u1", models.KeyTasks)

	time.Sleep(150 * time.Millisecond)

	pushed := remote.pushed()
	require.Len(t, pushed, 1, "a burst within the window collapses to one push")
	assert.Equal(t, `["v2"]`, pushed[0].Value)
	assert.Equal(t, models.KeyTasks, pushed[0].Key)
}

func TestKeysDebounceIndependently(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	local.SaveRaw("u1", models.KeyStats, `{"level":1}`)
	coord.StateChanged("u1", models.KeyTasks)
	coord.StateChanged("u1", models.KeyStats)

	time.Sleep(150 * time.Millisecond)
	assert.Len(t, remote.pushed(), 2)
}

func TestLocalSessionNeverPushes(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(localIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	coord.StateChanged("u1", models.KeyTasks)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, remote.pushed())
}

func TestChangesBeforeSessionAreSuppressed(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	coord.StateChanged("u1", models.KeyTasks)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, remote.pushed())
}

func TestEndSessionCancelsPendingPush(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	coord.StateChanged("u1", models.KeyTasks)
	coord.EndSession("u1")

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, remote.pushed(), "logout before the window elapses drops the write")
}

func TestPushFailureSurfacesOnKeyStatus(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{pushErr: errors.New("503")}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	coord.StateChanged("u1", models.KeyTasks)

	time.Sleep(150 * time.Millisecond)

	status := coord.StatusFor("u1")
	require.Contains(t, status.Keys, models.KeyTasks)
	assert.Equal(t, SyncError, status.Keys[models.KeyTasks].State)
	assert.Equal(t, "503", status.Keys[models.KeyTasks].Error)
}

func TestSavedStateDecaysToIdle(t *testing.T) {
	local := newFakeLocal()
	remote := &fakeRemote{}
	coord := newTestCoordinator(local, remote)
	require.NoError(t, coord.BeginSession(remoteIdentity("u1")))

	local.SaveRaw("u1", models.KeyTasks, `["t"]`)
	coord.StateChanged("u1", models.KeyTasks)

	time.Sleep(150 * time.Millisecond)
	status := coord.StatusFor("u1")
	assert.Equal(t, SyncIdle, status.Keys[models.KeyTasks].State)
}
