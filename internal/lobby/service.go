// internal/lobby/service.go
package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatzero/seatzero/internal/engine"
	"github.com/seatzero/seatzero/internal/models"
	"github.com/seatzero/seatzero/internal/ws"
)

// Service owns the lobby lifecycle: joins and leaves, the status state
// machine, join-request approval, the countdown orchestrator, and routing of
// game actions into the active engine. All runtime state lives in the
// RuntimeStore; the service holds no lobby state of its own, so any instance
// behind the same store gives the same answers.
type Service struct {
	store   RuntimeStore
	meta    MetadataSource
	hub     *ws.Hub
	engines *engine.Registry
	active  *engine.ActiveTable
	logger  *logrus.Logger

	// CountdownSeconds is the start value of the pre-game countdown.
	CountdownSeconds int
	// TickInterval paces the countdown and engine tick loops.
	TickInterval time.Duration
	// DefaultPrizePool is split over the final ranking when the engine's
	// results carry no prizes of their own.
	DefaultPrizePool int64
}

// NewService wires a lobby service and registers it as the hub's participant
// resolver.
func NewService(store RuntimeStore, meta MetadataSource, hub *ws.Hub, engines *engine.Registry, active *engine.ActiveTable, logger *logrus.Logger) *Service {
	s := &Service{
		store:            store,
		meta:             meta,
		hub:              hub,
		engines:          engines,
		active:           active,
		logger:           logger,
		CountdownSeconds: 10,
		TickInterval:     time.Second,
	}
	hub.SetParticipantResolver(s)
	return s
}

// ActiveGames exposes the active-game table (used by the handlers for
// bootstrap snapshots and cleanup).
func (s *Service) ActiveGames() *engine.ActiveTable {
	return s.active
}

// ParticipantIDs implements ws.ParticipantResolver: the ids of currently
// joined players, in join order.
func (s *Service) ParticipantIDs(ctx context.Context, lobbyID uuid.UUID) ([]uuid.UUID, error) {
	players, err := s.store.Players(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinedAt.Before(players[j].JoinedAt) })
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.UserID
	}
	return ids, nil
}

// Exists reports whether runtime state is present for the lobby; a missing
// lobby yields ErrNotFound.
func (s *Service) Exists(ctx context.Context, lobbyID uuid.UUID) error {
	_, err := s.store.LobbyState(ctx, lobbyID)
	return err
}

// Bootstrap sends the full room snapshot to a freshly registered connection:
// lobby runtime state, players, join requests, and chat history, plus the
// live game state when a game is running.
func (s *Service) Bootstrap(ctx context.Context, c *ws.Conn) error {
	lobbyID := c.Context.LobbyID
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		return err
	}
	players, err := s.store.Players(ctx, lobbyID)
	if err != nil {
		return err
	}
	requests, err := s.store.JoinRequests(ctx, lobbyID)
	if err != nil {
		return err
	}
	chat, err := s.store.ChatHistory(ctx, lobbyID)
	if err != nil {
		return err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinedAt.Before(players[j].JoinedAt) })
	c.SendJSON(ws.NewLobbyBootstrap(*state, players, requests, chat))

	if ag, ok := s.active.Get(lobbyID); ok {
		_ = ag.Do(func(e engine.Engine) error {
			c.SendJSON(ws.NewGameState(e.GameState(c.UserID)))
			return nil
		})
	}
	return nil
}

// Join adds the connection's user to the lobby as a player, or as a
// spectator when spectate is set. Private lobbies require an accepted join
// request, which the successful join consumes.
func (s *Service) Join(ctx context.Context, c *ws.Conn, spectate bool) error {
	lobbyID := c.Context.LobbyID
	if c.UserID == uuid.Nil {
		if spectate {
			return nil // anonymous viewers just keep the socket open
		}
		return Errf(CodeNotAuthenticated, "joining requires authentication")
	}

	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		return err
	}
	meta, err := s.meta.LobbyMeta(ctx, lobbyID)
	if err != nil {
		return Errf(CodeMetadataMissing, "lobby metadata unavailable")
	}

	now := time.Now()
	if spectate {
		if p, _ := s.store.Player(ctx, lobbyID, c.UserID); p != nil {
			return Errf(CodeJoinFailed, "already joined as a player")
		}
		return s.store.SaveSpectator(ctx, lobbyID, models.SpectatorState{
			UserID:   c.UserID,
			Username: displayName(c.UserID),
			JoinedAt: now,
			LastSeen: now,
		})
	}

	// Rejoining player: refresh liveness, re-announce the roster.
	if p, _ := s.store.Player(ctx, lobbyID, c.UserID); p != nil {
		p.LastSeen = now
		if err := s.store.SavePlayer(ctx, lobbyID, *p); err != nil {
			return err
		}
		return s.broadcastRoster(ctx, lobbyID)
	}

	if state.Status == models.StatusInProgress {
		return Errf(CodeJoinFailed, "game already in progress")
	}

	gt, err := s.meta.GameTypeMeta(ctx, meta.GameTypeID)
	if err != nil {
		return Errf(CodeMetadataMissing, "game type metadata unavailable")
	}
	players, err := s.store.Players(ctx, lobbyID)
	if err != nil {
		return err
	}
	if gt.MaxPlayers > 0 && len(players) >= gt.MaxPlayers {
		return Errf(CodeLobbyFull, "lobby is full (%d players)", gt.MaxPlayers)
	}

	consumedRequest := false
	if meta.Private && c.UserID != meta.CreatorID {
		req, _ := s.store.JoinRequest(ctx, lobbyID, c.UserID)
		if req == nil || req.State != models.JoinRequestAccepted {
			return Errf(CodeJoinFailed, "join request not approved")
		}
		consumedRequest = true
	}

	// A user is never a player and spectator at once.
	_ = s.store.DeleteSpectator(ctx, lobbyID, c.UserID)

	if err := s.store.SavePlayer(ctx, lobbyID, models.PlayerState{
		UserID:   c.UserID,
		Username: displayName(c.UserID),
		JoinedAt: now,
		LastSeen: now,
	}); err != nil {
		return err
	}

	if consumedRequest {
		if err := s.store.DeleteJoinRequest(ctx, lobbyID, c.UserID); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warnf("lobby %s: failed to consume join request for %s: %v", lobbyID, c.UserID, err)
		}
		s.broadcastJoinRequests(ctx, lobbyID)
	}

	if err := s.refreshParticipantCount(ctx, state); err != nil {
		return err
	}

	s.hub.BroadcastRoom(lobbyID, ws.NewPlayerJoined(c.UserID))
	return s.broadcastRoster(ctx, lobbyID)
}

// Leave removes the connection's user from the lobby (player or spectator)
// and announces the departure.
func (s *Service) Leave(ctx context.Context, c *ws.Conn) error {
	lobbyID := c.Context.LobbyID
	if c.UserID == uuid.Nil {
		return nil
	}
	if sp, _ := s.store.Spectator(ctx, lobbyID, c.UserID); sp != nil {
		return s.store.DeleteSpectator(ctx, lobbyID, c.UserID)
	}
	return s.removePlayer(ctx, lobbyID, c.UserID, ws.NewPlayerLeft(c.UserID))
}

// Kick removes a target player at the creator's request and evicts the
// target's room connections.
func (s *Service) Kick(ctx context.Context, c *ws.Conn, target uuid.UUID) error {
	lobbyID := c.Context.LobbyID
	if err := s.requireCreator(ctx, lobbyID, c.UserID); err != nil {
		return err
	}
	if p, _ := s.store.Player(ctx, lobbyID, target); p == nil {
		return Errf(CodeNotFound, "user %s is not a player in this lobby", target)
	}
	if err := s.removePlayer(ctx, lobbyID, target, ws.NewPlayerKicked(target)); err != nil {
		return err
	}
	for _, victim := range s.hub.Registry().ConnectionsForUser(target) {
		if victim.Context.Kind == ws.KindRoom && victim.Context.LobbyID == lobbyID {
			s.hub.Registry().Unregister(victim.ID)
			if victim.Cancel != nil {
				victim.Cancel()
			}
		}
	}
	return nil
}

// UpdateStatus drives the creator-facing edges of the state machine. Only
// waiting <-> starting may be requested over the wire; in_progress and
// finished are owned by the countdown and game-completion paths.
func (s *Service) UpdateStatus(ctx context.Context, c *ws.Conn, target models.Status) error {
	lobbyID := c.Context.LobbyID
	if !target.Valid() || target == models.StatusInProgress || target == models.StatusFinished {
		return Errf(CodeInvalidMessage, "cannot request status %q", target)
	}
	if err := s.requireCreator(ctx, lobbyID, c.UserID); err != nil {
		return err
	}
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		return err
	}
	if state.Status == models.StatusInProgress || state.Status == models.StatusFinished {
		return Errf(CodeJoinFailed, "lobby is %s", state.Status)
	}
	if state.Status == target {
		return nil
	}

	if target == models.StatusStarting {
		meta, err := s.meta.LobbyMeta(ctx, lobbyID)
		if err != nil {
			return Errf(CodeMetadataMissing, "lobby metadata unavailable")
		}
		gt, err := s.meta.GameTypeMeta(ctx, meta.GameTypeID)
		if err != nil {
			return Errf(CodeMetadataMissing, "game type metadata unavailable")
		}
		if state.ParticipantCount < gt.MinPlayers {
			return Errf(CodeNeedAtLeast, "need at least %d players", gt.MinPlayers)
		}
	}

	if err := s.transition(ctx, state, target); err != nil {
		return err
	}
	if target == models.StatusStarting {
		go s.runCountdown(lobbyID)
	}
	return nil
}

// CreateJoinRequest records a pending approval request for a private lobby.
func (s *Service) CreateJoinRequest(ctx context.Context, c *ws.Conn) error {
	lobbyID := c.Context.LobbyID
	if c.UserID == uuid.Nil {
		return Errf(CodeNotAuthenticated, "join requests require authentication")
	}
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		return err
	}
	if state.Status == models.StatusInProgress {
		return Errf(CodeJoinFailed, "game already in progress")
	}
	if p, _ := s.store.Player(ctx, lobbyID, c.UserID); p != nil {
		return Errf(CodeJoinFailed, "already joined")
	}
	if err := s.store.SaveJoinRequest(ctx, lobbyID, models.JoinRequest{
		UserID:    c.UserID,
		State:     models.JoinRequestPending,
		Username:  displayName(c.UserID),
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}
	s.broadcastJoinRequests(ctx, lobbyID)
	return nil
}

// ResolveJoinRequest moves a pending request to accepted or rejected. Only
// the creator may decide; the requester is told personally on every device.
func (s *Service) ResolveJoinRequest(ctx context.Context, c *ws.Conn, target uuid.UUID, accepted bool) error {
	lobbyID := c.Context.LobbyID
	if err := s.requireCreator(ctx, lobbyID, c.UserID); err != nil {
		return err
	}
	req, err := s.store.JoinRequest(ctx, lobbyID, target)
	if err != nil {
		return err
	}
	if req.State != models.JoinRequestPending {
		return Errf(CodeInvalidMessage, "join request already %s", req.State)
	}
	if accepted {
		req.State = models.JoinRequestAccepted
	} else {
		req.State = models.JoinRequestRejected
	}
	if err := s.store.SaveJoinRequest(ctx, lobbyID, *req); err != nil {
		return err
	}
	s.broadcastJoinRequests(ctx, lobbyID)
	s.hub.BroadcastUser(target, ws.NewJoinRequestStatus(target, accepted))
	return nil
}

// Ping refreshes the caller's liveness timestamp and answers with a pong on
// the same connection.
func (s *Service) Ping(ctx context.Context, c *ws.Conn, ts int64) error {
	lobbyID := c.Context.LobbyID
	now := time.Now()
	if c.UserID != uuid.Nil {
		if p, _ := s.store.Player(ctx, lobbyID, c.UserID); p != nil {
			p.LastSeen = now
			_ = s.store.SavePlayer(ctx, lobbyID, *p)
		} else if sp, _ := s.store.Spectator(ctx, lobbyID, c.UserID); sp != nil {
			sp.LastSeen = now
			_ = s.store.SaveSpectator(ctx, lobbyID, *sp)
		}
		if meta, err := s.meta.LobbyMeta(ctx, lobbyID); err == nil && meta.CreatorID == c.UserID {
			if state, err := s.store.LobbyState(ctx, lobbyID); err == nil {
				state.CreatorLastPing = &now
				state.UpdatedAt = now
				_ = s.store.SaveLobbyState(ctx, state)
			}
		}
	}
	elapsed := int64(0)
	if ts > 0 {
		elapsed = now.UnixMilli() - ts
	}
	c.SendJSON(ws.NewPong(elapsed))
	return nil
}

// Chat appends a line to the room history and echoes it to everyone.
func (s *Service) Chat(ctx context.Context, c *ws.Conn, msg string) error {
	if c.UserID == uuid.Nil {
		return Errf(CodeNotAuthenticated, "chat requires authentication")
	}
	if msg == "" {
		return nil
	}
	lobbyID := c.Context.LobbyID
	entry := models.ChatEntry{
		UserID:   c.UserID,
		Username: displayName(c.UserID),
		Message:  msg,
		SentAt:   time.Now().UnixMilli(),
	}
	if p, _ := s.store.Player(ctx, lobbyID, c.UserID); p != nil && p.Username != "" {
		entry.Username = p.Username
	}
	if err := s.store.AppendChat(ctx, lobbyID, entry); err != nil {
		return err
	}
	s.hub.BroadcastRoom(lobbyID, ws.NewChat(entry))
	return nil
}

// GameAction forwards one opaque action to the lobby's active engine.
// Engine errors and recovered panics are reported to the acting user only.
func (s *Service) GameAction(ctx context.Context, c *ws.Conn, raw json.RawMessage) error {
	lobbyID := c.Context.LobbyID
	if c.UserID == uuid.Nil {
		return Errf(CodeNotAuthenticated, "game actions require authentication")
	}
	var action engine.Action
	if err := json.Unmarshal(raw, &action); err != nil || action.Type == "" {
		return Errf(CodeInvalidMessage, "malformed game action")
	}
	ag, ok := s.active.Get(lobbyID)
	if !ok {
		return Errf(CodeNotFound, "no active game in this lobby")
	}

	var events []engine.Event
	var finished bool
	err := ag.Do(func(e engine.Engine) (doErr error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("lobby %s: engine panic on action %q from %s: %v", lobbyID, action.Type, c.UserID, r)
				doErr = Errf(CodeGameError, "game error")
			}
		}()
		events, doErr = e.HandleAction(ctx, c.UserID, action)
		finished = e.Finished()
		return doErr
	})
	if err != nil {
		if _, coded := UserError(err); coded {
			return err
		}
		return Errf(CodeGameError, "%v", err)
	}

	s.broadcastEvents(lobbyID, events)
	if finished {
		s.finishGame(ctx, lobbyID, ag)
	}
	return nil
}

// HandleDisconnect runs after a connection's read loop exits: the registry
// entry is already gone, and the room gets a final roster broadcast. When the
// last connection leaves a finished room, the engine instance is dropped.
func (s *Service) HandleDisconnect(ctx context.Context, c *ws.Conn) {
	lobbyID := c.Context.LobbyID
	if err := s.broadcastRoster(ctx, lobbyID); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warnf("lobby %s: roster broadcast on disconnect failed: %v", lobbyID, err)
	}
	if s.hub.Registry().RoomEmpty(lobbyID) {
		if _, ok := s.active.Get(lobbyID); ok {
			state, err := s.store.LobbyState(ctx, lobbyID)
			if err != nil || state.Status == models.StatusFinished {
				s.active.Remove(lobbyID)
			}
		}
	}
}

// --- internals ---

// transition writes the status change and then announces it, in that order:
// no frame ever describes a state that has not been persisted yet.
func (s *Service) transition(ctx context.Context, state *models.RuntimeState, target models.Status) error {
	now := time.Now()
	state.Status = target
	state.UpdatedAt = now
	switch target {
	case models.StatusInProgress:
		state.StartedAt = &now
	case models.StatusFinished:
		state.FinishedAt = &now
	}
	if err := s.store.SaveLobbyState(ctx, state); err != nil {
		return err
	}
	s.broadcastStatus(state.LobbyID, target)
	return nil
}

// broadcastStatus fans a status change out to the room and to lobby-list
// subscribers.
func (s *Service) broadcastStatus(lobbyID uuid.UUID, status models.Status) {
	msg := ws.NewLobbyStatusChanged(lobbyID, status)
	s.hub.BroadcastRoom(lobbyID, msg)
	s.hub.BroadcastChannel("list:"+string(status), msg)
	s.hub.BroadcastChannel("list:all", msg)
}

func (s *Service) removePlayer(ctx context.Context, lobbyID, userID uuid.UUID, announce interface{}) error {
	if err := s.store.DeletePlayer(ctx, lobbyID, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		return err
	}
	if err := s.refreshParticipantCount(ctx, state); err != nil {
		return err
	}
	s.hub.BroadcastRoom(lobbyID, announce)
	return s.broadcastRoster(ctx, lobbyID)
}

func (s *Service) refreshParticipantCount(ctx context.Context, state *models.RuntimeState) error {
	players, err := s.store.Players(ctx, state.LobbyID)
	if err != nil {
		return err
	}
	state.ParticipantCount = len(players)
	state.UpdatedAt = time.Now()
	return s.store.SaveLobbyState(ctx, state)
}

func (s *Service) broadcastRoster(ctx context.Context, lobbyID uuid.UUID) error {
	players, err := s.store.Players(ctx, lobbyID)
	if err != nil {
		return err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinedAt.Before(players[j].JoinedAt) })
	s.hub.BroadcastRoom(lobbyID, ws.NewPlayerUpdated(players))
	return nil
}

func (s *Service) broadcastJoinRequests(ctx context.Context, lobbyID uuid.UUID) {
	requests, err := s.store.JoinRequests(ctx, lobbyID)
	if err != nil {
		s.logger.Warnf("lobby %s: join request list load failed: %v", lobbyID, err)
		return
	}
	s.hub.BroadcastRoom(lobbyID, ws.NewJoinRequestsUpdated(requests))
}

func (s *Service) broadcastEvents(lobbyID uuid.UUID, events []engine.Event) {
	for _, ev := range events {
		s.hub.BroadcastRoom(lobbyID, ws.NewGameEvent(ev))
	}
}

func (s *Service) requireCreator(ctx context.Context, lobbyID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return Errf(CodeNotAuthenticated, "action requires authentication")
	}
	meta, err := s.meta.LobbyMeta(ctx, lobbyID)
	if err != nil {
		return Errf(CodeMetadataMissing, "lobby metadata unavailable")
	}
	if meta.CreatorID != userID {
		return Errf(CodeNotCreator, "only the lobby creator may do this")
	}
	return nil
}

// finishGame runs the generic completion path: persist the summary, write
// ranks and prizes onto the player states, announce the standings, and move
// the lobby to finished.
func (s *Service) finishGame(ctx context.Context, lobbyID uuid.UUID, ag *engine.ActiveGame) {
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		s.logger.Warnf("lobby %s: state load failed during finish: %v", lobbyID, err)
		return
	}
	if state.Status == models.StatusFinished {
		return // already concluded by a racing caller
	}

	var results []engine.PlayerResult
	_ = ag.Do(func(e engine.Engine) error {
		results = e.Results()
		return nil
	})
	if results == nil {
		s.logger.Warnf("lobby %s: engine finished without results", lobbyID)
		return
	}

	withPrizes := false
	for _, r := range results {
		if r.Prize != 0 {
			withPrizes = true
			break
		}
	}
	if !withPrizes && s.DefaultPrizePool > 0 {
		results = engine.AssignPrizes(results, s.DefaultPrizePool)
	}

	if summary, err := json.Marshal(results); err == nil {
		if err := s.store.SaveGameSummary(ctx, lobbyID, summary); err != nil {
			s.logger.Warnf("lobby %s: failed to persist game summary: %v", lobbyID, err)
		}
	}

	standings := make([]ws.Standing, 0, len(results))
	for _, r := range results {
		standings = append(standings, ws.Standing{UserID: r.UserID, Rank: r.Rank, Prize: r.Prize})
		if p, _ := s.store.Player(ctx, lobbyID, r.UserID); p != nil {
			p.Rank = r.Rank
			p.Prize = r.Prize
			_ = s.store.SavePlayer(ctx, lobbyID, *p)
		}
	}

	if err := s.transition(ctx, state, models.StatusFinished); err != nil {
		s.logger.Warnf("lobby %s: finish transition failed: %v", lobbyID, err)
		return
	}

	s.hub.BroadcastRoom(lobbyID, ws.NewFinalStanding(standings))
	for _, r := range results {
		s.hub.BroadcastUser(r.UserID, ws.NewGameOver(r.Rank, r.Prize))
	}
}

// displayName derives a stable fallback handle from the user id; profile
// lookups belong to the account service, not this core.
func displayName(userID uuid.UUID) string {
	return fmt.Sprintf("User_%s", userID.String()[:4])
}
