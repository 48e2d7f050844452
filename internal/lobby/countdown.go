// internal/lobby/countdown.go
package lobby

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seatzero/seatzero/internal/engine"
	"github.com/seatzero/seatzero/internal/models"
	"github.com/seatzero/seatzero/internal/ws"
)

// runCountdown is the background orchestrator spawned once per
// waiting->starting transition. It ticks the lobby down to zero, re-reading
// status after every sleep: any handler moving the lobby away from
// "starting", and any store read failure, aborts the countdown silently.
// On zero it performs the single-writer game activation.
func (s *Service) runCountdown(lobbyID uuid.UUID) {
	ctx := context.Background()

	for sec := s.CountdownSeconds; sec > 0; sec-- {
		s.hub.BroadcastRoom(lobbyID, ws.NewStartCountdown(sec))
		if err := s.store.SetCountdown(ctx, lobbyID, sec); err != nil {
			s.logger.Warnf("lobby %s: countdown marker write failed, aborting: %v", lobbyID, err)
			return
		}

		time.Sleep(s.TickInterval)

		state, err := s.store.LobbyState(ctx, lobbyID)
		if err != nil {
			// Lobby deleted or store unreachable: implicit abort.
			s.logger.Warnf("lobby %s: countdown state re-read failed, aborting: %v", lobbyID, err)
			return
		}
		if state.Status != models.StatusStarting {
			s.logger.Infof("lobby %s: countdown aborted, status is %s", lobbyID, state.Status)
			return
		}
	}

	s.hub.BroadcastRoom(lobbyID, ws.NewStartCountdown(0))
	if err := s.store.ClearCountdown(ctx, lobbyID); err != nil {
		s.logger.Warnf("lobby %s: countdown marker clear failed: %v", lobbyID, err)
	}

	s.activateGame(ctx, lobbyID)
}

// activateGame is the starting->in_progress edge. The countdown goroutine is
// the only caller, which is what guarantees at most one engine per lobby.
func (s *Service) activateGame(ctx context.Context, lobbyID uuid.UUID) {
	state, err := s.store.LobbyState(ctx, lobbyID)
	if err != nil {
		s.logger.Warnf("lobby %s: activation state read failed: %v", lobbyID, err)
		return
	}
	if state.Status != models.StatusStarting {
		return
	}

	meta, err := s.meta.LobbyMeta(ctx, lobbyID)
	if err != nil {
		s.logger.Errorf("lobby %s: activation metadata read failed: %v", lobbyID, err)
		return
	}
	gt, err := s.meta.GameTypeMeta(ctx, meta.GameTypeID)
	if err != nil {
		s.logger.Errorf("lobby %s: game type %d metadata read failed: %v", lobbyID, meta.GameTypeID, err)
		return
	}

	playerIDs, err := s.ParticipantIDs(ctx, lobbyID)
	if err != nil {
		s.logger.Warnf("lobby %s: activation player list read failed: %v", lobbyID, err)
		return
	}
	if len(playerIDs) < gt.MinPlayers {
		// Not enough players survived the countdown: back to waiting.
		s.logger.Infof("lobby %s: %d players < minimum %d, reverting to waiting", lobbyID, len(playerIDs), gt.MinPlayers)
		if err := s.transition(ctx, state, models.StatusWaiting); err != nil {
			s.logger.Warnf("lobby %s: revert to waiting failed: %v", lobbyID, err)
		}
		return
	}

	if err := s.transition(ctx, state, models.StatusInProgress); err != nil {
		s.logger.Warnf("lobby %s: in_progress transition failed: %v", lobbyID, err)
		return
	}

	eng, err := s.engines.Create(meta.GameTypeID, lobbyID)
	if err != nil {
		// Degenerate but explicit: the lobby stays in_progress without an
		// engine rather than being yanked back underneath its players.
		s.logger.Errorf("lobby %s: %v", lobbyID, err)
		return
	}
	events, err := eng.Initialize(ctx, playerIDs)
	if err != nil {
		s.logger.Errorf("lobby %s: engine initialize failed: %v", lobbyID, err)
		return
	}
	ag, err := s.active.Put(lobbyID, eng)
	if err != nil {
		s.logger.Errorf("lobby %s: %v", lobbyID, err)
		return
	}

	for _, ev := range events {
		s.hub.BroadcastRoomParticipants(ctx, lobbyID, ws.NewGameEvent(ev))
	}

	go s.runTicker(lobbyID, ag)
}

// runTicker drives the engine's periodic Tick while the game runs. It stops
// when the engine finishes or is removed from the active table.
func (s *Service) runTicker(lobbyID uuid.UUID, ag *engine.ActiveGame) {
	ticker := time.NewTicker(s.TickInterval)
	defer ticker.Stop()
	ctx := context.Background()

	for range ticker.C {
		if current, ok := s.active.Get(lobbyID); !ok || current != ag {
			return
		}

		var events []engine.Event
		var finished bool
		err := ag.Do(func(e engine.Engine) (doErr error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Errorf("lobby %s: engine panic on tick: %v", lobbyID, r)
					doErr = Errf(CodeGameError, "game error")
				}
			}()
			if e.Finished() {
				finished = true
				return nil
			}
			events, doErr = e.Tick(ctx)
			finished = e.Finished()
			return doErr
		})
		if err != nil {
			s.logger.Warnf("lobby %s: engine tick failed: %v", lobbyID, err)
			continue
		}

		s.broadcastEvents(lobbyID, events)
		if finished {
			s.finishGame(ctx, lobbyID, ag)
			return
		}
	}
}
