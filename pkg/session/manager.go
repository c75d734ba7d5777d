package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring at most one turn per session
// runs at a time. It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides time.Now for idle computations.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart tries to load a session. If not found, it initializes a new one.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var (
			found bool
			err   error
		)
		state, found, err = m.loadOrNew(ctx, sessionID)
		if err != nil || found {
			return err
		}
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return state, err
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.State, bool, error) {
	state, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return state, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return domain.NewState(sessionID), false, nil
}

// Checkpoint persists an intermediate state of the session being updated.
// It is only valid during the Update call that handed it out.
type Checkpoint func(ctx context.Context, state *domain.State) error

// Update loads (or creates) the session, runs fn on it and saves the result,
// all under the session lock. Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(context.Context, *domain.State) error) error {
	return m.UpdateWithCheckpoint(ctx, sessionID, func(ctx context.Context, state *domain.State, _ Checkpoint) error {
		return fn(ctx, state)
	})
}

// UpdateWithCheckpoint is Update for callers that must store a state before an
// irreversible step inside fn, so that a failed final save cannot replay it.
func (m *Manager) UpdateWithCheckpoint(ctx context.Context, sessionID string, fn func(context.Context, *domain.State, Checkpoint) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, _, err := m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}
		checkpoint := func(ctx context.Context, st *domain.State) error {
			if err := m.store.Save(ctx, sessionID, st); err != nil {
				return fmt.Errorf("failed to checkpoint session: %w", err)
			}
			return nil
		}
		if err := fn(ctx, state, checkpoint); err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Sweep deletes every session idle for longer than idle and returns how many
// were removed. Sessions that fail to load are skipped.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			state, err := m.store.Load(ctx, id)
			if err != nil {
				return err
			}
			if state.IdleFor(m.now()) <= idle {
				return nil
			}
			if err := m.store.Delete(ctx, id); err != nil {
				return err
			}
			removed++
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			m.logger.Warn("Failed to sweep session", "session_id", id, "error", err)
		}
	}
	return removed, nil
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx, idle)
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Info("Evicted idle sessions", "count", n)
			}
		}
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"error", err,
				)
			}
		}()
	}

	return fn(ctx)
}
