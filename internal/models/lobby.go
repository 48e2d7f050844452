// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the authoritative runtime status of a lobby.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusStarting   Status = "starting"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Valid reports whether s is one of the known lobby statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusStarting, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// RuntimeState is the ephemeral, authoritative runtime record of a lobby,
// stored under lobby:{id}:state. started_at is set once the lobby reaches
// in_progress; finished_at iff the lobby finished.
type RuntimeState struct {
	LobbyID          uuid.UUID  `json:"lobby_id"`
	Status           Status     `json:"status"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatorLastPing  *time.Time `json:"creator_last_ping,omitempty"`
}

// LobbyMeta is the static lobby metadata read from the relational store:
// who created the room, which game it hosts, and whether joins are gated
// behind approval.
type LobbyMeta struct {
	LobbyID    uuid.UUID `json:"lobby_id"`
	CreatorID  uuid.UUID `json:"creator_id"`
	GameTypeID int64     `json:"game_type_id"`
	Private    bool      `json:"private"`
}

// GameTypeMeta is the static game-type metadata read from the relational
// store.
type GameTypeMeta struct {
	GameTypeID int64  `json:"game_type_id"`
	Name       string `json:"name"`
	MinPlayers int    `json:"min_players"`
	MaxPlayers int    `json:"max_players"`
}
