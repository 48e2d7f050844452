// internal/engine/registry.go
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownGameType is returned when no factory is registered for a
// game-type id.
var ErrUnknownGameType = errors.New("no engine factory registered for game type")

// ErrEngineExists is returned when a second engine is inserted for a lobby
// that already has one.
var ErrEngineExists = errors.New("engine already active for lobby")

// Registry maps game-type ids to engine factories. Registration happens at
// startup; duplicate registration is a programmer error and panics.
type Registry struct {
	mu        sync.Mutex
	factories map[int64]Factory
}

// NewRegistry initializes an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[int64]Factory)}
}

// Register installs a factory for a game-type id.
func (r *Registry) Register(gameTypeID int64, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[gameTypeID]; exists {
		panic(fmt.Sprintf("engine: factory for game type %d registered twice", gameTypeID))
	}
	r.factories[gameTypeID] = f
}

// Create instantiates a fresh engine for the lobby using the factory
// registered for gameTypeID.
func (r *Registry) Create(gameTypeID int64, lobbyID uuid.UUID) (Engine, error) {
	r.mu.Lock()
	f, ok := r.factories[gameTypeID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGameType, gameTypeID)
	}
	return f(lobbyID), nil
}

// ActiveGame pairs a running engine with the mutex that serializes all access
// to it. The engine is exclusively owned by the table; callers reach it only
// through Do.
type ActiveGame struct {
	LobbyID uuid.UUID

	mu  sync.Mutex
	eng Engine
}

// Do runs fn with exclusive access to the engine for the duration of one
// operation.
func (g *ActiveGame) Do(fn func(Engine) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.eng)
}

// ActiveTable holds the currently running engine instances, at most one per
// lobby. Only the countdown orchestrator inserts; the session layer reads and
// removes.
type ActiveTable struct {
	mu    sync.Mutex
	games map[uuid.UUID]*ActiveGame
}

// NewActiveTable initializes an empty active-game table.
func NewActiveTable() *ActiveTable {
	return &ActiveTable{games: make(map[uuid.UUID]*ActiveGame)}
}

// Put inserts the engine for a lobby. Inserting over an existing instance is
// refused so the at-most-one invariant holds even under races.
func (t *ActiveTable) Put(lobbyID uuid.UUID, eng Engine) (*ActiveGame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.games[lobbyID]; exists {
		return nil, ErrEngineExists
	}
	g := &ActiveGame{LobbyID: lobbyID, eng: eng}
	t.games[lobbyID] = g
	return g, nil
}

// Get returns the active engine for a lobby, if any.
func (t *ActiveTable) Get(lobbyID uuid.UUID) (*ActiveGame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.games[lobbyID]
	return g, ok
}

// Remove drops the engine for a lobby.
func (t *ActiveTable) Remove(lobbyID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.games, lobbyID)
}

// Len reports the number of active engines.
func (t *ActiveTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.games)
}
