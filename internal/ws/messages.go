// internal/ws/messages.go
//
// Wire protocol for the room and lobby-list sockets. Frames are JSON objects
// tagged by a snake_case "type" discriminator. Game action and event payloads
// are opaque to the platform and travel wrapped in a "game" envelope.
package ws

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/seatzero/seatzero/internal/models"
)

// Client -> server frame types.
const (
	TypeJoin              = "join"
	TypeLeave             = "leave"
	TypeUpdateLobbyStatus = "update_lobby_status"
	TypeJoinRequest       = "join_request"
	TypeApproveJoin       = "approve_join"
	TypeRejectJoin        = "reject_join"
	TypeKick              = "kick"
	TypePing              = "ping"
	TypeChat              = "chat"
	TypeGame              = "game"
)

// Server -> client frame types.
const (
	TypeLobbyBootstrap      = "lobby_bootstrap"
	TypeLobbyStatusChanged  = "lobby_status_changed"
	TypeStartCountdown      = "start_countdown"
	TypePlayerJoined        = "player_joined"
	TypePlayerLeft          = "player_left"
	TypePlayerKicked        = "player_kicked"
	TypePlayerUpdated       = "player_updated"
	TypeJoinRequestsUpdated = "join_requests_updated"
	TypeJoinRequestStatus   = "join_request_status"
	TypePong                = "pong"
	TypeGameState           = "game_state"
	TypeFinalStanding       = "final_standing"
	TypeGameOver            = "game_over"
	TypeError               = "error"
)

// ClientMessage is the single decoded shape for every client frame. Fields
// are populated per Type; anything else is ignored.
type ClientMessage struct {
	Type string `json:"type"`

	// Spectate marks a join as a spectator join.
	Spectate bool `json:"spectate,omitempty"`
	// Status carries the target status for update_lobby_status.
	Status models.Status `json:"status,omitempty"`
	// UserID identifies the target of approve_join / reject_join / kick.
	UserID uuid.UUID `json:"user_id,omitempty"`
	// TS is the client clock on ping, unix milliseconds.
	TS int64 `json:"ts,omitempty"`
	// Msg is the chat line.
	Msg string `json:"msg,omitempty"`
	// Action is the opaque game action under the game envelope.
	Action json.RawMessage `json:"action,omitempty"`
}

// LobbyBootstrap is the full room snapshot sent once on connect.
type LobbyBootstrap struct {
	Type         string               `json:"type"`
	Lobby        models.RuntimeState  `json:"lobby"`
	Players      []models.PlayerState `json:"players"`
	JoinRequests []models.JoinRequest `json:"join_requests"`
	ChatHistory  []models.ChatEntry   `json:"chat_history"`
}

// NewLobbyBootstrap assembles a bootstrap frame.
func NewLobbyBootstrap(state models.RuntimeState, players []models.PlayerState, requests []models.JoinRequest, chat []models.ChatEntry) LobbyBootstrap {
	if players == nil {
		players = []models.PlayerState{}
	}
	if requests == nil {
		requests = []models.JoinRequest{}
	}
	if chat == nil {
		chat = []models.ChatEntry{}
	}
	return LobbyBootstrap{Type: TypeLobbyBootstrap, Lobby: state, Players: players, JoinRequests: requests, ChatHistory: chat}
}

// LobbyStatusChanged announces a lobby status transition. LobbyID is included
// so lobby-list subscribers can attribute the change.
type LobbyStatusChanged struct {
	Type    string        `json:"type"`
	LobbyID uuid.UUID     `json:"lobby_id"`
	Status  models.Status `json:"status"`
}

// NewLobbyStatusChanged builds a status transition frame.
func NewLobbyStatusChanged(lobbyID uuid.UUID, status models.Status) LobbyStatusChanged {
	return LobbyStatusChanged{Type: TypeLobbyStatusChanged, LobbyID: lobbyID, Status: status}
}

// StartCountdown ticks the pre-game countdown.
type StartCountdown struct {
	Type             string `json:"type"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// NewStartCountdown builds a countdown tick frame.
func NewStartCountdown(seconds int) StartCountdown {
	return StartCountdown{Type: TypeStartCountdown, SecondsRemaining: seconds}
}

// PlayerEvent announces a single player joining, leaving, or being kicked.
type PlayerEvent struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

// NewPlayerJoined builds a player_joined frame.
func NewPlayerJoined(userID uuid.UUID) PlayerEvent {
	return PlayerEvent{Type: TypePlayerJoined, UserID: userID}
}

// NewPlayerLeft builds a player_left frame.
func NewPlayerLeft(userID uuid.UUID) PlayerEvent {
	return PlayerEvent{Type: TypePlayerLeft, UserID: userID}
}

// NewPlayerKicked builds a player_kicked frame.
func NewPlayerKicked(userID uuid.UUID) PlayerEvent {
	return PlayerEvent{Type: TypePlayerKicked, UserID: userID}
}

// PlayerUpdated carries the full current player list after any roster change.
type PlayerUpdated struct {
	Type    string               `json:"type"`
	Players []models.PlayerState `json:"players"`
}

// NewPlayerUpdated builds a player_updated frame.
func NewPlayerUpdated(players []models.PlayerState) PlayerUpdated {
	if players == nil {
		players = []models.PlayerState{}
	}
	return PlayerUpdated{Type: TypePlayerUpdated, Players: players}
}

// JoinRequestsUpdated carries the full request list after any create,
// approve, or reject.
type JoinRequestsUpdated struct {
	Type         string               `json:"type"`
	JoinRequests []models.JoinRequest `json:"join_requests"`
}

// NewJoinRequestsUpdated builds a join_requests_updated frame.
func NewJoinRequestsUpdated(requests []models.JoinRequest) JoinRequestsUpdated {
	if requests == nil {
		requests = []models.JoinRequest{}
	}
	return JoinRequestsUpdated{Type: TypeJoinRequestsUpdated, JoinRequests: requests}
}

// JoinRequestStatus tells the requester their fate.
type JoinRequestStatus struct {
	Type     string    `json:"type"`
	UserID   uuid.UUID `json:"user_id"`
	Accepted bool      `json:"accepted"`
}

// NewJoinRequestStatus builds a join_request_status frame.
func NewJoinRequestStatus(userID uuid.UUID, accepted bool) JoinRequestStatus {
	return JoinRequestStatus{Type: TypeJoinRequestStatus, UserID: userID, Accepted: accepted}
}

// Pong answers a ping with the measured round-trip origin delta.
type Pong struct {
	Type      string `json:"type"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// NewPong builds a pong frame.
func NewPong(elapsedMS int64) Pong {
	return Pong{Type: TypePong, ElapsedMS: elapsedMS}
}

// ChatMessage echoes a chat line to the room.
type ChatMessage struct {
	Type string `json:"type"`
	models.ChatEntry
}

// NewChat builds a chat frame.
func NewChat(entry models.ChatEntry) ChatMessage {
	return ChatMessage{Type: TypeChat, ChatEntry: entry}
}

// GameEnvelope wraps one opaque engine event for the room socket.
type GameEnvelope struct {
	Type  string      `json:"type"`
	Event interface{} `json:"event"`
}

// NewGameEvent wraps an engine event in the game envelope.
func NewGameEvent(event interface{}) GameEnvelope {
	return GameEnvelope{Type: TypeGame, Event: event}
}

// GameState carries a full engine state snapshot for a (re)connecting viewer.
type GameState struct {
	Type  string      `json:"type"`
	State interface{} `json:"state"`
}

// NewGameState builds a game_state frame.
func NewGameState(state interface{}) GameState {
	return GameState{Type: TypeGameState, State: state}
}

// Standing is one row of the final ranking.
type Standing struct {
	UserID uuid.UUID `json:"user_id"`
	Rank   int       `json:"rank"`
	Prize  int64     `json:"prize"`
}

// FinalStanding carries the ranked results broadcast to the whole room.
type FinalStanding struct {
	Type      string     `json:"type"`
	Standings []Standing `json:"standings"`
}

// NewFinalStanding builds a final_standing frame.
func NewFinalStanding(standings []Standing) FinalStanding {
	if standings == nil {
		standings = []Standing{}
	}
	return FinalStanding{Type: TypeFinalStanding, Standings: standings}
}

// GameOver is the personal result frame sent to each ranked player.
type GameOver struct {
	Type  string `json:"type"`
	Rank  int    `json:"rank"`
	Prize int64  `json:"prize"`
}

// NewGameOver builds a game_over frame.
func NewGameOver(rank int, prize int64) GameOver {
	return GameOver{Type: TypeGameOver, Rank: rank, Prize: prize}
}

// ErrorMessage reports a failed action to the originating connection only.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError builds an error frame.
func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Code: code, Message: message}
}
