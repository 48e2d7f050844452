// internal/engine/engine.go
//
// The generic lifecycle every game variant implements. The platform never
// special-cases a game: actions in and events out are opaque structured data
// routed between the room socket and the engine instance.
package engine

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Event is an opaque structured payload produced by a game engine. The
// platform serializes it into the wire "game" envelope without inspection.
type Event map[string]interface{}

// Action is one player's decoded move: a game-specific type tag plus an
// opaque data blob the engine interprets.
type Action struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PlayerResult is one ranked row of a concluded game. Rank 1 is best.
type PlayerResult struct {
	UserID uuid.UUID `json:"user_id"`
	Rank   int       `json:"rank"`
	Prize  int64     `json:"prize"`
}

// Engine is the contract between the platform and a game implementation.
// Instances are created per lobby by a registered Factory and accessed one
// caller at a time through ActiveGame.Do; implementations do not need their
// own locking against platform calls.
type Engine interface {
	// Initialize performs one-time setup for the given seating order. Called
	// exactly once per lobby, at activation. Returned events are broadcast to
	// room participants as the game bootstrap.
	Initialize(ctx context.Context, playerIDs []uuid.UUID) ([]Event, error)

	// HandleAction processes one player's move. An error is reported to the
	// acting user only and must leave the engine in a consistent state.
	HandleAction(ctx context.Context, userID uuid.UUID, action Action) ([]Event, error)

	// Tick is invoked periodically for time-based mechanics such as turn
	// timers. Games without timers return no events.
	Tick(ctx context.Context) ([]Event, error)

	// Bootstrap returns the full state snapshot for a freshly connecting
	// viewer.
	Bootstrap() Event

	// GameState is like Bootstrap but may tailor the snapshot to the
	// requesting user, e.g. revealing only their own hidden information.
	// uuid.Nil requests the untailored snapshot.
	GameState(userID uuid.UUID) Event

	// Results returns the ranked results once the game has concluded, nil
	// before that.
	Results() []PlayerResult

	// Finished reports whether the game has concluded.
	Finished() bool
}

// Factory produces a fresh engine instance for one lobby.
type Factory func(lobbyID uuid.UUID) Engine
