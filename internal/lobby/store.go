// internal/lobby/store.go
package lobby

import (
	"context"

	"github.com/google/uuid"

	"github.com/seatzero/seatzero/internal/models"
)

// RuntimeStore is the ephemeral key/value collaborator holding all lobby
// runtime state. It is the single source of truth; implementations must give
// read-your-write consistency within one logical operation. Missing keys are
// reported as ErrNotFound.
//
// The production implementation lives in internal/cache backed by Redis under
// the documented key patterns (lobby:{id}:state, lobby:{id}:players,
// lobby:{id}:spectators, lobby:{id}:join_requests, lobby:{id}:countdown,
// lobby:{id}:chat, game:{id}:state).
type RuntimeStore interface {
	LobbyState(ctx context.Context, lobbyID uuid.UUID) (*models.RuntimeState, error)
	SaveLobbyState(ctx context.Context, state *models.RuntimeState) error

	Players(ctx context.Context, lobbyID uuid.UUID) ([]models.PlayerState, error)
	Player(ctx context.Context, lobbyID, userID uuid.UUID) (*models.PlayerState, error)
	SavePlayer(ctx context.Context, lobbyID uuid.UUID, player models.PlayerState) error
	DeletePlayer(ctx context.Context, lobbyID, userID uuid.UUID) error

	Spectator(ctx context.Context, lobbyID, userID uuid.UUID) (*models.SpectatorState, error)
	SaveSpectator(ctx context.Context, lobbyID uuid.UUID, spectator models.SpectatorState) error
	DeleteSpectator(ctx context.Context, lobbyID, userID uuid.UUID) error

	JoinRequests(ctx context.Context, lobbyID uuid.UUID) ([]models.JoinRequest, error)
	JoinRequest(ctx context.Context, lobbyID, userID uuid.UUID) (*models.JoinRequest, error)
	SaveJoinRequest(ctx context.Context, lobbyID uuid.UUID, request models.JoinRequest) error
	DeleteJoinRequest(ctx context.Context, lobbyID, userID uuid.UUID) error

	// SetCountdown persists the current countdown value with a short expiry
	// so stale markers self-clean.
	SetCountdown(ctx context.Context, lobbyID uuid.UUID, seconds int) error
	ClearCountdown(ctx context.Context, lobbyID uuid.UUID) error

	ChatHistory(ctx context.Context, lobbyID uuid.UUID) ([]models.ChatEntry, error)
	AppendChat(ctx context.Context, lobbyID uuid.UUID, entry models.ChatEntry) error

	// SaveGameSummary persists the concluded game's summary blob under
	// game:{id}:state.
	SaveGameSummary(ctx context.Context, lobbyID uuid.UUID, summary []byte) error
}

// MetadataSource is the narrow, read-only view onto the relational store: the
// static lobby row and game-type row the session layer needs. Implemented in
// internal/database over pgx.
type MetadataSource interface {
	LobbyMeta(ctx context.Context, lobbyID uuid.UUID) (*models.LobbyMeta, error)
	GameTypeMeta(ctx context.Context, gameTypeID int64) (*models.GameTypeMeta, error)
}
