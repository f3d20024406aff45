package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// RegistryEntry is what the Session Registry tracks per live session: the
// ManagedStream driving it plus bookkeeping the registry itself owns
// (creation/last-activity timestamps for the idle sweep, a refcount for
// callers that hold a reference across an await boundary, and the cancel
// func for the session's root context so a retire/sweep can signal the
// owning connection handler to tear down, not just close the stream).
type RegistryEntry struct {
	ID           string
	Stream       *ManagedStream
	Cancel       context.CancelFunc
	CreatedAt    time.Time
	LastActivity time.Time

	refs      int32
	closeOnce sync.Once
}

// RegistrySnapshot is a deep-copied, lock-free view of one entry's
// bookkeeping fields, safe to read after the registry's mutex is released.
type RegistrySnapshot struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
}

// SessionRegistry is the concurrent, uuid-keyed map of live sessions
// described in SPEC_FULL.md's Session Registry: Register/Unregister/Get
// plus an idle-timeout sweep goroutine. The teacher ran exactly one session
// per process and never needed this; multi-session serving is this
// module's addition.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*RegistryEntry

	idleTimeout time.Duration
	stopSweep   chan struct{}
}

func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]*RegistryEntry),
		idleTimeout: idleTimeout,
		stopSweep:   make(chan struct{}),
	}
}

// NewSessionID mints a fresh session identifier. Broken out so tests and
// cmd/server can both call the exact same id-generation path.
func NewSessionID() string {
	return uuid.NewString()
}

// Register stores a session constructed elsewhere (cmd/server builds the
// Session before it has a registry to hand it to) under a ref count of 1 —
// the "owning" reference held by whoever called Register, released by the
// matching Retire/Unregister. cancel is the session's root-context cancel
// func, invoked once the entry's refcount reaches zero.
func (r *SessionRegistry) Register(id string, stream *ManagedStream, cancel context.CancelFunc) *RegistryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry := &RegistryEntry{
		ID:           id,
		Stream:       stream,
		Cancel:       cancel,
		CreatedAt:    now,
		LastActivity: now,
		refs:         1,
	}
	r.sessions[id] = entry
	return entry
}

func (r *SessionRegistry) Get(id string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[id]
	return entry, ok
}

// Lookup returns a live entry plus a release func the caller must invoke
// when done with it (§A.3): it bumps the refcount so a concurrent
// Retire/idle sweep can't close the entry's Stream out from under an
// in-flight reader (e.g. the §A.5 debug latency endpoint) even though the
// map entry itself may already be gone.
func (r *SessionRegistry) Lookup(id string) (*RegistryEntry, func(), bool) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, func() {}, false
	}
	atomic.AddInt32(&entry.refs, 1)

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(entry) })
	}
	return entry, release, true
}

// release drops one reference and closes the entry's Stream/cancels its
// context once the last reference (Register's owning one or a Lookup's)
// is gone.
func (r *SessionRegistry) release(entry *RegistryEntry) {
	if atomic.AddInt32(&entry.refs, -1) > 0 {
		return
	}
	entry.closeOnce.Do(func() {
		entry.Stream.Close()
		if entry.Cancel != nil {
			entry.Cancel()
		}
	})
}

// Retire removes id from the live map and releases the owning reference
// Register established (§A.3). The underlying Stream/context are only
// actually torn down once every outstanding Lookup has also released.
func (r *SessionRegistry) Retire(id string) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	r.release(entry)
}

// Touch bumps LastActivity so the idle sweep doesn't reap a session that is
// still receiving frames.
func (r *SessionRegistry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[id]; ok {
		entry.LastActivity = time.Now()
	}
}

// Unregister is Retire's name for callers (cmd/server's per-connection
// defer) that only ever hold the owning reference from Register.
func (r *SessionRegistry) Unregister(id string) {
	r.Retire(id)
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns a deep copy of every tracked entry's bookkeeping fields
// (never the *ManagedStream itself, which is not meant to be cloned) using
// jinzhu/copier so callers (a debug endpoint, tests) can inspect registry
// state without holding the registry's mutex.
func (r *SessionRegistry) Snapshot() []RegistrySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegistrySnapshot, 0, len(r.sessions))
	for _, entry := range r.sessions {
		var snap RegistrySnapshot
		copier.Copy(&snap, entry)
		out = append(out, snap)
	}
	return out
}

// StartIdleSweep launches a background goroutine that unregisters and
// closes any session whose LastActivity is older than idleTimeout, checked
// every interval. Implements §4.9's "no inbound frames for T, default 10
// min" teardown rule.
func (r *SessionRegistry) StartIdleSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweepExpired()
			case <-r.stopSweep:
				return
			}
		}
	}()
}

// sweepExpired retires (not just closes) every session past idleTimeout,
// so the owning connection handler's root context is cancelled too and a
// swept session's client socket actually closes instead of sitting idle
// forever (§4.9).
func (r *SessionRegistry) sweepExpired() {
	now := time.Now()

	r.mu.Lock()
	var expired []string
	for id, entry := range r.sessions {
		if now.Sub(entry.LastActivity) > r.idleTimeout {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.Retire(id)
	}
}

func (r *SessionRegistry) StopSweep() {
	close(r.stopSweep)
}
