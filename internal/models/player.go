// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerState is the per-(lobby, user) record of a joined player, kept in the
// lobby:{id}:players hash keyed by user id. Rank and Prize are zero until the
// game concludes. A user is never simultaneously a player and a spectator in
// the same lobby.
type PlayerState struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	LastSeen     time.Time `json:"last_seen"`
	Rank         int       `json:"rank,omitempty"`
	Prize        int64     `json:"prize,omitempty"`
	PrizeClaimed bool      `json:"prize_claimed,omitempty"`
}

// SpectatorState is the per-(lobby, user) record of a watching user, kept in
// the lobby:{id}:spectators hash keyed by user id.
type SpectatorState struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}

// ChatEntry is one room chat line, kept in a capped history list so fresh
// connections can backfill.
type ChatEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Message  string    `json:"msg"`
	SentAt   int64     `json:"ts"`
}
