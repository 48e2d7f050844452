// internal/cache/runtime_store.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/seatzero/seatzero/internal/lobby"
	"github.com/seatzero/seatzero/internal/models"
)

// Key layout:
//
//	lobby:{id}:state          string, JSON RuntimeState
//	lobby:{id}:players        hash, field {user} -> JSON PlayerState
//	lobby:{id}:spectators     hash, field {user} -> JSON SpectatorState
//	lobby:{id}:join_requests  hash, field {user} -> JSON JoinRequest, TTL'd
//	lobby:{id}:countdown      string, seconds remaining, short TTL
//	lobby:{id}:chat           list of JSON ChatEntry, capped
//	game:{id}:state           string, JSON game summary
//
// The countdown marker's TTL makes stale countdowns self-clean; the
// join-request hash expires as a whole so abandoned requests do not
// accumulate.
const (
	countdownTTL   = 30 * time.Second
	joinRequestTTL = 10 * time.Minute
	chatHistoryCap = 100
)

// RuntimeStore is the Redis-backed implementation of lobby.RuntimeStore. One
// Redis instance holds the authoritative runtime state, which is what lets
// the session layer skip distributed locking.
type RuntimeStore struct {
	rdb *redis.Client
}

// NewRuntimeStore wraps a connected Redis client.
func NewRuntimeStore(rdb *redis.Client) *RuntimeStore {
	return &RuntimeStore{rdb: rdb}
}

func stateKey(lobbyID uuid.UUID) string      { return fmt.Sprintf("lobby:%s:state", lobbyID) }
func playersKey(lobbyID uuid.UUID) string    { return fmt.Sprintf("lobby:%s:players", lobbyID) }
func spectatorsKey(lobbyID uuid.UUID) string { return fmt.Sprintf("lobby:%s:spectators", lobbyID) }
func requestsKey(lobbyID uuid.UUID) string   { return fmt.Sprintf("lobby:%s:join_requests", lobbyID) }
func countdownKey(lobbyID uuid.UUID) string  { return fmt.Sprintf("lobby:%s:countdown", lobbyID) }
func chatKey(lobbyID uuid.UUID) string       { return fmt.Sprintf("lobby:%s:chat", lobbyID) }
func summaryKey(lobbyID uuid.UUID) string    { return fmt.Sprintf("game:%s:state", lobbyID) }

// LobbyState loads the runtime state blob.
func (s *RuntimeStore) LobbyState(ctx context.Context, lobbyID uuid.UUID) (*models.RuntimeState, error) {
	data, err := s.rdb.Get(ctx, stateKey(lobbyID)).Bytes()
	if err != nil {
		return nil, wrapErr(err, "lobby state")
	}
	var state models.RuntimeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt lobby state for %s: %w", lobbyID, err)
	}
	return &state, nil
}

// SaveLobbyState writes the runtime state blob.
func (s *RuntimeStore) SaveLobbyState(ctx context.Context, state *models.RuntimeState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, stateKey(state.LobbyID), data, 0).Err()
}

// Players returns every joined player of the lobby.
func (s *RuntimeStore) Players(ctx context.Context, lobbyID uuid.UUID) ([]models.PlayerState, error) {
	fields, err := s.rdb.HGetAll(ctx, playersKey(lobbyID)).Result()
	if err != nil {
		return nil, err
	}
	players := make([]models.PlayerState, 0, len(fields))
	for _, raw := range fields {
		var p models.PlayerState
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("corrupt player state in lobby %s: %w", lobbyID, err)
		}
		players = append(players, p)
	}
	return players, nil
}

// Player returns one player record.
func (s *RuntimeStore) Player(ctx context.Context, lobbyID, userID uuid.UUID) (*models.PlayerState, error) {
	raw, err := s.rdb.HGet(ctx, playersKey(lobbyID), userID.String()).Bytes()
	if err != nil {
		return nil, wrapErr(err, "player state")
	}
	var p models.PlayerState
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("corrupt player state for %s in lobby %s: %w", userID, lobbyID, err)
	}
	return &p, nil
}

// SavePlayer upserts one player record.
func (s *RuntimeStore) SavePlayer(ctx context.Context, lobbyID uuid.UUID, player models.PlayerState) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, playersKey(lobbyID), player.UserID.String(), data).Err()
}

// DeletePlayer removes one player record.
func (s *RuntimeStore) DeletePlayer(ctx context.Context, lobbyID, userID uuid.UUID) error {
	n, err := s.rdb.HDel(ctx, playersKey(lobbyID), userID.String()).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return lobby.ErrNotFound
	}
	return nil
}

// Spectator returns one spectator record.
func (s *RuntimeStore) Spectator(ctx context.Context, lobbyID, userID uuid.UUID) (*models.SpectatorState, error) {
	raw, err := s.rdb.HGet(ctx, spectatorsKey(lobbyID), userID.String()).Bytes()
	if err != nil {
		return nil, wrapErr(err, "spectator state")
	}
	var sp models.SpectatorState
	if err := json.Unmarshal(raw, &sp); err != nil {
		return nil, fmt.Errorf("corrupt spectator state for %s in lobby %s: %w", userID, lobbyID, err)
	}
	return &sp, nil
}

// SaveSpectator upserts one spectator record.
func (s *RuntimeStore) SaveSpectator(ctx context.Context, lobbyID uuid.UUID, spectator models.SpectatorState) error {
	data, err := json.Marshal(spectator)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, spectatorsKey(lobbyID), spectator.UserID.String(), data).Err()
}

// DeleteSpectator removes one spectator record.
func (s *RuntimeStore) DeleteSpectator(ctx context.Context, lobbyID, userID uuid.UUID) error {
	n, err := s.rdb.HDel(ctx, spectatorsKey(lobbyID), userID.String()).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return lobby.ErrNotFound
	}
	return nil
}

// JoinRequests returns every join request of the lobby.
func (s *RuntimeStore) JoinRequests(ctx context.Context, lobbyID uuid.UUID) ([]models.JoinRequest, error) {
	fields, err := s.rdb.HGetAll(ctx, requestsKey(lobbyID)).Result()
	if err != nil {
		return nil, err
	}
	requests := make([]models.JoinRequest, 0, len(fields))
	for _, raw := range fields {
		var r models.JoinRequest
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("corrupt join request in lobby %s: %w", lobbyID, err)
		}
		requests = append(requests, r)
	}
	return requests, nil
}

// JoinRequest returns one user's join request.
func (s *RuntimeStore) JoinRequest(ctx context.Context, lobbyID, userID uuid.UUID) (*models.JoinRequest, error) {
	raw, err := s.rdb.HGet(ctx, requestsKey(lobbyID), userID.String()).Bytes()
	if err != nil {
		return nil, wrapErr(err, "join request")
	}
	var r models.JoinRequest
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("corrupt join request for %s in lobby %s: %w", userID, lobbyID, err)
	}
	return &r, nil
}

// SaveJoinRequest upserts one join request and refreshes the hash expiry.
func (s *RuntimeStore) SaveJoinRequest(ctx context.Context, lobbyID uuid.UUID, request models.JoinRequest) error {
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}
	key := requestsKey(lobbyID)
	if err := s.rdb.HSet(ctx, key, request.UserID.String(), data).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, joinRequestTTL).Err()
}

// DeleteJoinRequest removes one join request.
func (s *RuntimeStore) DeleteJoinRequest(ctx context.Context, lobbyID, userID uuid.UUID) error {
	n, err := s.rdb.HDel(ctx, requestsKey(lobbyID), userID.String()).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return lobby.ErrNotFound
	}
	return nil
}

// SetCountdown persists the countdown marker with its self-cleaning TTL.
func (s *RuntimeStore) SetCountdown(ctx context.Context, lobbyID uuid.UUID, seconds int) error {
	return s.rdb.Set(ctx, countdownKey(lobbyID), seconds, countdownTTL).Err()
}

// ClearCountdown removes the countdown marker.
func (s *RuntimeStore) ClearCountdown(ctx context.Context, lobbyID uuid.UUID) error {
	return s.rdb.Del(ctx, countdownKey(lobbyID)).Err()
}

// ChatHistory returns the room's chat backlog, oldest first.
func (s *RuntimeStore) ChatHistory(ctx context.Context, lobbyID uuid.UUID) ([]models.ChatEntry, error) {
	raws, err := s.rdb.LRange(ctx, chatKey(lobbyID), 0, chatHistoryCap-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]models.ChatEntry, 0, len(raws))
	// Entries are LPUSHed newest-first; reverse into chronological order.
	for i := len(raws) - 1; i >= 0; i-- {
		var e models.ChatEntry
		if err := json.Unmarshal([]byte(raws[i]), &e); err != nil {
			return nil, fmt.Errorf("corrupt chat entry in lobby %s: %w", lobbyID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// AppendChat pushes one chat line and trims the backlog to its cap.
func (s *RuntimeStore) AppendChat(ctx context.Context, lobbyID uuid.UUID, entry models.ChatEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := chatKey(lobbyID)
	if err := s.rdb.LPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return s.rdb.LTrim(ctx, key, 0, chatHistoryCap-1).Err()
}

// SaveGameSummary persists the concluded game's summary blob.
func (s *RuntimeStore) SaveGameSummary(ctx context.Context, lobbyID uuid.UUID, summary []byte) error {
	return s.rdb.Set(ctx, summaryKey(lobbyID), summary, 0).Err()
}

// wrapErr translates redis.Nil into the store-agnostic not-found sentinel.
func wrapErr(err error, what string) error {
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", what, lobby.ErrNotFound)
	}
	return err
}
