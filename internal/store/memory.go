// internal/store/memory.go
//
// In-memory session store for games served over HTTP.
//
// Characteristics:
//   - Sessions are keyed by game ID and remember which player created them.
//   - Concurrency-safe via RWMutex (concurrent lookups, exclusive writes).
//   - Each Session carries its own mutex so guesses on one game are
//     serialized without blocking other games.
//   - Expire drops finished games after a short grace period and abandoned
//     games after a longer idle period, so guests cannot grow it forever.
//   - State is lost when the process restarts; game history is never persisted.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/wordler/internal/game"
)

// ErrNotFound is returned when no session matches the ID (or owner).
var ErrNotFound = errors.New("game not found")

// Default retention used by NewMemoryStore.
const (
	DefaultIdleTTL     = 24 * time.Hour
	DefaultFinishedTTL = 10 * time.Minute
)

// Session is a live game together with its owner.
type Session struct {
	mu    sync.Mutex
	Owner string
	Game  *game.Game

	lastUsed atomic.Int64 // unix nanos
	finished atomic.Bool
}

// Do runs fn with exclusive access to the session's game.
func (s *Session) Do(fn func(g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.Game)
	s.finished.Store(s.Game.State().Over())
	s.touch()
	return err
}

func (s *Session) touch() { s.lastUsed.Store(time.Now().UnixNano()) }

// LastUsed is the time of the last Save, Get or Do on the session.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()) }

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves the session for id owned by owner.
	// Returns ErrNotFound when it is missing or owned by someone else.
	Get(ctx context.Context, id, owner string) (*Session, error)

	// Delete removes a session; deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Expire removes sessions that are past their retention at now and
	// returns how many were removed.
	Expire(ctx context.Context, now time.Time) (int, error)

	// Len reports the number of live sessions.
	Len() int
}

// MemoryOption tunes the in-memory store.
type MemoryOption func(*memory)

// WithIdleTTL sets how long an unfinished game survives without use.
func WithIdleTTL(d time.Duration) MemoryOption {
	return func(m *memory) { m.idleTTL = d }
}

// WithFinishedTTL sets how long a won or lost game stays readable.
func WithFinishedTTL(d time.Duration) MemoryOption {
	return func(m *memory) { m.finishedTTL = d }
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu          sync.RWMutex
	sessions    map[string]*Session // keyed by Game.ID()
	idleTTL     time.Duration
	finishedTTL time.Duration
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...MemoryOption) Store {
	m := &memory{
		sessions:    make(map[string]*Session),
		idleTTL:     DefaultIdleTTL,
		finishedTTL: DefaultFinishedTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.finished.Store(s.Game.State().Over())
	s.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Game.ID()] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id, owner string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.Owner != owner {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Expire(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		ttl := m.idleTTL
		if s.finished.Load() {
			ttl = m.finishedTTL
		}
		if now.Sub(s.LastUsed()) > ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
