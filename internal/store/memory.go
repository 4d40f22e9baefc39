// internal/store/memory.go
//
// In-memory store of live game sessions.
//
// Characteristics:
//   - Sessions are keyed by a random UUID.
//   - The map is guarded by an RWMutex; each session additionally serializes
//     access to its game, which is single-owner by design.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/spellcircle/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Session is one player's live game.
type Session struct {
	ID      string
	Owner   Owner
	Started time.Time

	mu   sync.Mutex
	game *game.Game
}

// NewSession wraps g in a session with a fresh ID.
func NewSession(owner Owner, g *game.Game) *Session {
	return &Session{ID: uuid.NewString(), Owner: owner, Started: time.Now(), game: g}
}

// Do runs fn with exclusive access to the session's game.
func (s *Session) Do(fn func(g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID; ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete drops a session. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
