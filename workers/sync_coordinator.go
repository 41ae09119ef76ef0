package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"studysync-engine/models"
)

// Sync state machine values: the initial pull moves IDLE → LOADING →
// {IDLE, ERROR}; each per-key save moves IDLE ⇄ SYNCING ⇄ {SAVED→IDLE,
// ERROR}.
const (
	SyncIdle    = "idle"
	SyncLoading = "loading"
	SyncSyncing = "syncing"
	SyncSaved   = "saved"
	SyncError   = "error"
)

// DefaultDebounce is the per-key quiet window before a push fires.
const DefaultDebounce = 2 * time.Second

// DefaultSavedHold is how long the SAVED state lingers before IDLE.
const DefaultSavedHold = 2 * time.Second

// LocalStore is what the coordinator needs from the durable local
// store: raw JSON in, raw JSON out. Values cross the wire untouched.
type LocalStore interface {
	Raw(userID, key string) (string, bool, error)
	SaveRaw(userID, key, value string) error
}

type keySync struct {
	state string
	err   string
	timer *time.Timer // single-slot: scheduling replaces, never queues
	hold  *time.Timer // pending SAVED→IDLE transition
}

type userSync struct {
	remote    bool
	ready     bool
	loadState string
	loadErr   string
	keys      map[string]*keySync
}

// KeyStatus is the per-key view handed to the presentation layer.
type KeyStatus struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Status is the whole sync picture for one user.
type Status struct {
	Remote    bool                 `json:"remote"`
	Ready     bool                 `json:"ready"`
	LoadState string               `json:"load_state"`
	LoadError string               `json:"load_error,omitempty"`
	Keys      map[string]KeyStatus `json:"keys"`
}

// SyncCoordinator mirrors local state to the remote store. Every local
// mutation schedules a debounced push for its key; a second mutation
// within the window restarts that key's timer only. The initial remote
// pull is totally ordered before any push for the session (readiness
// gate), and no failed push is retried automatically.
type SyncCoordinator struct {
	Local  LocalStore
	Remote RemoteStore

	debounce  time.Duration
	savedHold time.Duration

	mu       sync.Mutex
	sessions map[string]*userSync
}

func NewSyncCoordinator(local LocalStore, remote RemoteStore) *SyncCoordinator {
	return &SyncCoordinator{
		Local:     local,
		Remote:    remote,
		debounce:  DefaultDebounce,
		savedHold: DefaultSavedHold,
		sessions:  make(map[string]*userSync),
	}
}

func recognized(key string) bool {
	for _, k := range models.RecognizedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// BeginSession opens the readiness gate for an identity. Local-only
// identities skip all remote traffic and are ready immediately. Remote
// identities block on one full downstream load that overwrites local
// state wholesale; on failure local state is preserved as the fallback
// and the error is retained for display.
func (c *SyncCoordinator) BeginSession(identity *models.Identity) error {
	userID := identity.ID

	c.mu.Lock()
	us := &userSync{
		remote:    identity.IsRemote(),
		loadState: SyncIdle,
		keys:      make(map[string]*keySync),
	}
	c.sessions[userID] = us

	if !us.remote {
		us.ready = true
		c.mu.Unlock()
		return nil
	}
	us.loadState = SyncLoading
	c.mu.Unlock()

	rows, err := c.Remote.FetchAll(context.Background(), userID)

	if err != nil {
		c.mu.Lock()
		us.loadState = SyncError
		us.loadErr = err.Error()
		us.ready = true // local state serves as the fallback
		c.mu.Unlock()
		return err
	}

	// Applied without holding the lock: every SaveRaw re-enters
	// StateChanged through the store observer, and the not-ready gate
	// is what suppresses pushes for these writes.
	for _, row := range rows {
		if !recognized(row.Key) {
			continue
		}
		if saveErr := c.Local.SaveRaw(userID, row.Key, row.Value); saveErr != nil {
			log.Printf("⚠️ [SYNC] Failed to apply remote %s/%s locally: %v", userID, row.Key, saveErr)
		}
	}

	c.mu.Lock()
	us.loadState = SyncIdle
	us.ready = true
	c.mu.Unlock()
	log.Printf("[SYNC] 📥 Initial load for %s applied %d row(s)", userID, len(rows))
	return nil
}

// EndSession cancels every pending timer without flushing. A mutation
// made less than the debounce window before logout is lost by design.
func (c *SyncCoordinator) EndSession(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	us, ok := c.sessions[userID]
	if !ok {
		return
	}
	for _, ks := range us.keys {
		if ks.timer != nil {
			ks.timer.Stop()
		}
		if ks.hold != nil {
			ks.hold.Stop()
		}
	}
	delete(c.sessions, userID)
}

// Shutdown drops every session. Pending writes are cancelled, not
// flushed.
func (c *SyncCoordinator) Shutdown() {
	c.mu.Lock()
	users := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		users = append(users, id)
	}
	c.mu.Unlock()
	for _, id := range users {
		c.EndSession(id)
	}
}

// StateChanged implements the store observer. Each key owns a
// single-slot cancelable timer: a new mutation cancels and replaces the
// pending push for that key only, so the last scheduled write wins.
func (c *SyncCoordinator) StateChanged(userID, key string) {
	if !recognized(key) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	us, ok := c.sessions[userID]
	if !ok || !us.remote || !us.ready {
		return
	}

	ks, ok := us.keys[key]
	if !ok {
		ks = &keySync{state: SyncIdle}
		us.keys[key] = ks
	}
	if ks.timer != nil {
		ks.timer.Stop()
	}
	ks.timer = time.AfterFunc(c.debounce, func() {
		c.push(userID, key)
	})
}

// push uploads a key's full current value. Failures surface on the key
// status and the write is dropped; the next mutation is the only retry.
func (c *SyncCoordinator) push(userID, key string) {
	c.mu.Lock()
	us, ok := c.sessions[userID]
	if !ok {
		c.mu.Unlock()
		return
	}
	ks := us.keys[key]
	if ks == nil {
		c.mu.Unlock()
		return
	}
	ks.timer = nil
	ks.state = SyncSyncing
	ks.err = ""
	c.mu.Unlock()

	value, found, err := c.Local.Raw(userID, key)
	if err == nil && !found {
		// Nothing stored locally; nothing to mirror.
		c.mu.Lock()
		ks.state = SyncIdle
		c.mu.Unlock()
		return
	}

	if err == nil {
		err = c.Remote.Upsert(context.Background(), RemoteRow{UserID: userID, Key: key, Value: value})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		ks.state = SyncError
		ks.err = err.Error()
		log.Printf("❌ [SYNC] Push failed for %s/%s: %v", userID, key, err)
		return
	}

	ks.state = SyncSaved
	if ks.hold != nil {
		ks.hold.Stop()
	}
	ks.hold = time.AfterFunc(c.savedHold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur := us.keys[key]; cur != nil && cur.state == SyncSaved {
			cur.state = SyncIdle
		}
	})
}

// StatusFor reports the sync picture for one user.
func (c *SyncCoordinator) StatusFor(userID string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	us, ok := c.sessions[userID]
	if !ok {
		return Status{LoadState: SyncIdle, Keys: map[string]KeyStatus{}}
	}

	keys := make(map[string]KeyStatus, len(us.keys))
	for k, ks := range us.keys {
		keys[k] = KeyStatus{State: ks.state, Error: ks.err}
	}
	return Status{
		Remote:    us.remote,
		Ready:     us.ready,
		LoadState: us.loadState,
		LoadError: us.loadErr,
		Keys:      keys,
	}
}
