package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"log/slog"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
)

// lockEntry holds the mutex and the reference count for one slot.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager coordinates access to save slots. Each slot is guarded by a
// reference-counted lock so concurrent saves and loads against the same
// slot serialize while distinct slots proceed in parallel; entries are
// garbage collected once unused.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex // guards the lock map
	locks map[string]*lockEntry

	logger *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithManagerLogger configures a logger for slot-level events.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a slot manager over the given state store.
func NewManager(store ports.StateStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and later call release(slot) after
// unlocking.
func (m *Manager) acquire(slot string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[slot]
	if !ok {
		entry = &lockEntry{}
		m.locks[slot] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[slot]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slot)
	}
}

// WithLock executes fn while holding the lock for the slot.
func (m *Manager) WithLock(ctx context.Context, slot string, fn func(context.Context) error) error {
	entry := m.acquire(slot)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slot)
	}()
	return fn(ctx)
}

// SaveSession snapshots the session into the named slot.
func (m *Manager) SaveSession(ctx context.Context, slot string, sess *Session) error {
	payload, err := sess.MarshalState()
	if err != nil {
		return fmt.Errorf("cannot encode state for slot %q: %w", slot, err)
	}
	return m.WithLock(ctx, slot, func(ctx context.Context) error {
		return m.store.Save(ctx, slot, payload)
	})
}

// RestoreSession loads the named slot and applies it to the session.
func (m *Manager) RestoreSession(ctx context.Context, slot string, sess *Session) error {
	var payload []byte
	err := m.WithLock(ctx, slot, func(ctx context.Context) error {
		var err error
		payload, err = m.store.Load(ctx, slot)
		return err
	})
	if err != nil {
		return err
	}
	return sess.Restore(payload)
}

// Save persists a state snapshot into the named slot.
func (m *Manager) Save(ctx context.Context, slot string, state dialogue.PersistedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("cannot encode state for slot %q: %w", slot, err)
	}
	return m.WithLock(ctx, slot, func(ctx context.Context) error {
		return m.store.Save(ctx, slot, payload)
	})
}

// Load retrieves the snapshot stored in the named slot.
func (m *Manager) Load(ctx context.Context, slot string) (dialogue.PersistedState, error) {
	var payload []byte
	err := m.WithLock(ctx, slot, func(ctx context.Context) error {
		var err error
		payload, err = m.store.Load(ctx, slot)
		return err
	})
	if err != nil {
		return dialogue.PersistedState{}, err
	}
	return dialogue.ParsePersistedState(payload)
}

// LoadOrInit retrieves the snapshot in the named slot, initializing and
// persisting an empty one when the slot does not exist yet.
func (m *Manager) LoadOrInit(ctx context.Context, slot string) (dialogue.PersistedState, error) {
	var state dialogue.PersistedState
	err := m.WithLock(ctx, slot, func(ctx context.Context) error {
		payload, err := m.store.Load(ctx, slot)
		if err == nil {
			state, err = dialogue.ParsePersistedState(payload)
			return err
		}
		if !errors.Is(err, dialogue.ErrSlotNotFound) {
			return fmt.Errorf("cannot check slot %q: %w", slot, err)
		}

		// Not found, reserve the slot with an empty snapshot.
		state = dialogue.PersistedState{
			Variables: map[string]any{},
			Visited:   map[string]int{},
		}
		payload, err = json.Marshal(state)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, slot, payload); err != nil {
			return fmt.Errorf("cannot initialize slot %q: %w", slot, err)
		}
		m.logger.Debug("initialized save slot", "slot", slot)
		return nil
	})
	return state, err
}

// Delete removes the named slot from the store.
func (m *Manager) Delete(ctx context.Context, slot string) error {
	return m.WithLock(ctx, slot, func(ctx context.Context) error {
		return m.store.Delete(ctx, slot)
	})
}

// List returns the slots currently present in the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}
