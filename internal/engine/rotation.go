// internal/engine/rotation.go
package engine

import (
	"github.com/google/uuid"
)

// TurnRotation is the reusable elimination-order turn queue shared by games.
// It keeps the original seating order, a cursor, and an elimination set;
// active players are the order minus eliminations. Not safe for concurrent
// use; engine access is already serialized by ActiveGame.
type TurnRotation struct {
	order      []uuid.UUID
	cursor     int
	eliminated map[uuid.UUID]bool
}

// NewTurnRotation builds a rotation over the given seating order. The first
// player in the order holds the opening turn.
func NewTurnRotation(playerIDs []uuid.UUID) *TurnRotation {
	order := make([]uuid.UUID, len(playerIDs))
	copy(order, playerIDs)
	return &TurnRotation{
		order:      order,
		eliminated: make(map[uuid.UUID]bool),
	}
}

// Current returns the player holding the turn, or uuid.Nil when nobody is
// active.
func (t *TurnRotation) Current() uuid.UUID {
	if t.ActiveCount() == 0 {
		return uuid.Nil
	}
	return t.order[t.cursor]
}

// NextTurn advances the cursor to the next non-eliminated player and returns
// them. Eliminated players are skipped by construction.
func (t *TurnRotation) NextTurn() uuid.UUID {
	if t.ActiveCount() == 0 {
		return uuid.Nil
	}
	for {
		t.cursor = (t.cursor + 1) % len(t.order)
		if !t.eliminated[t.order[t.cursor]] {
			return t.order[t.cursor]
		}
	}
}

// Eliminate marks a player inactive. If they held the current turn the
// rotation advances immediately.
func (t *TurnRotation) Eliminate(playerID uuid.UUID) {
	if t.eliminated[playerID] {
		return
	}
	held := t.Current() == playerID
	t.eliminated[playerID] = true
	if held && t.ActiveCount() > 0 {
		t.NextTurn()
	}
}

// IsEliminated reports whether a player has been eliminated.
func (t *TurnRotation) IsEliminated(playerID uuid.UUID) bool {
	return t.eliminated[playerID]
}

// ActiveCount returns how many players remain in the rotation.
func (t *TurnRotation) ActiveCount() int {
	return len(t.order) - len(t.eliminated)
}

// ActivePlayers returns the non-eliminated players in seating order.
func (t *TurnRotation) ActivePlayers() []uuid.UUID {
	active := make([]uuid.UUID, 0, t.ActiveCount())
	for _, id := range t.order {
		if !t.eliminated[id] {
			active = append(active, id)
		}
	}
	return active
}

// IsGameOver reports whether at most one player remains.
func (t *TurnRotation) IsGameOver() bool {
	return t.ActiveCount() <= 1
}

// Winner returns the sole remaining player. The second return is false when
// zero or more than one player is still active.
func (t *TurnRotation) Winner() (uuid.UUID, bool) {
	if t.ActiveCount() != 1 {
		return uuid.Nil, false
	}
	for _, id := range t.order {
		if !t.eliminated[id] {
			return id, true
		}
	}
	return uuid.Nil, false
}
