// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatzero/seatzero/internal/auth"
	"github.com/seatzero/seatzero/internal/lobby"
	"github.com/seatzero/seatzero/internal/ws"
)

// RoomWSHandler upgrades the connection onto a lobby's room: it registers
// the connection, sends the bootstrap snapshot, and runs the read loop that
// routes lobby-management and game-action frames until disconnect.
func RoomWSHandler(logger *logrus.Logger, srv *RealtimeServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID, err := uuid.Parse(chi.URLParam(r, "lobbyID"))
		if err != nil {
			http.Error(w, "invalid lobby_id", http.StatusBadRequest)
			return
		}

		userID, err := auth.UserIDFromRequest(r)
		if err != nil {
			http.Error(w, "invalid auth token", http.StatusUnauthorized)
			return
		}

		sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"room"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer sock.Close(websocket.StatusInternalError, "handler finished")

		if sock.Subprotocol() != "room" {
			sock.Close(BadSubprotocolError, "client must speak the room subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The lobby must exist before we commit the connection.
		if err := srv.Lobby.Exists(ctx, lobbyID); err != nil {
			sock.Close(InvalidLobbyIDError, "lobby does not exist")
			return
		}

		conn := ws.NewConn(userID, ws.Room(lobbyID), cancel)
		srv.Registry.Register(conn)
		logger.Infof("conn %s: user %s connected to room %s (%s)", conn.ID, userID, lobbyID, r.RemoteAddr)

		go ws.WritePump(ctx, sock, conn, logger)

		if err := srv.Lobby.Bootstrap(ctx, conn); err != nil {
			logger.Warnf("conn %s: bootstrap failed for lobby %s: %v", conn.ID, lobbyID, err)
		}

		readRoomLoop(ctx, sock, conn, srv, logger)

		// Cleanup after the read loop exits.
		srv.Registry.Unregister(conn.ID)
		srv.Lobby.HandleDisconnect(context.Background(), conn)
		logger.Infof("conn %s: user %s disconnected from room %s", conn.ID, userID, lobbyID)
	}
}

// readRoomLoop reads frames until the socket closes, dispatching each one.
func readRoomLoop(ctx context.Context, sock *websocket.Conn, conn *ws.Conn, srv *RealtimeServer, logger *logrus.Logger) {
	for {
		typ, data, err := sock.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return
			}
			if strings.Contains(err.Error(), "context canceled") {
				return
			}
			logger.Warnf("conn %s: read error: %v", conn.ID, err)
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("conn %s: ignoring non-text frame type %d", conn.ID, typ)
			continue
		}
		dispatchRoomMessage(ctx, conn, data, srv, logger)
	}
}

// dispatchRoomMessage classifies one frame and routes it. Validation and
// authorization failures become an error frame to the sender only; store
// failures are logged and the operation abandoned.
func dispatchRoomMessage(ctx context.Context, conn *ws.Conn, data []byte, srv *RealtimeServer, logger *logrus.Logger) {
	var msg ws.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.SendError(lobby.CodeInvalidMessage, "invalid JSON frame")
		return
	}

	var err error
	switch msg.Type {
	case ws.TypeJoin:
		err = srv.Lobby.Join(ctx, conn, msg.Spectate)
	case ws.TypeLeave:
		err = srv.Lobby.Leave(ctx, conn)
	case ws.TypeUpdateLobbyStatus:
		err = srv.Lobby.UpdateStatus(ctx, conn, msg.Status)
	case ws.TypeJoinRequest:
		err = srv.Lobby.CreateJoinRequest(ctx, conn)
	case ws.TypeApproveJoin:
		err = srv.Lobby.ResolveJoinRequest(ctx, conn, msg.UserID, true)
	case ws.TypeRejectJoin:
		err = srv.Lobby.ResolveJoinRequest(ctx, conn, msg.UserID, false)
	case ws.TypeKick:
		err = srv.Lobby.Kick(ctx, conn, msg.UserID)
	case ws.TypePing:
		err = srv.Lobby.Ping(ctx, conn, msg.TS)
	case ws.TypeChat:
		err = srv.Lobby.Chat(ctx, conn, msg.Msg)
	case ws.TypeGame:
		err = srv.Lobby.GameAction(ctx, conn, msg.Action)
	default:
		conn.SendError(lobby.CodeInvalidMessage, "unknown message type "+msg.Type)
		return
	}

	if err == nil {
		return
	}
	if ue, ok := lobby.UserError(err); ok {
		conn.SendError(ue.Code, ue.Message)
		return
	}
	logger.Warnf("conn %s: %s failed: %v", conn.ID, msg.Type, err)
}
