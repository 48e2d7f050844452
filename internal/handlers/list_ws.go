// internal/handlers/list_ws.go
package handlers

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/seatzero/seatzero/internal/auth"
	"github.com/seatzero/seatzero/internal/models"
	"github.com/seatzero/seatzero/internal/ws"
)

// ListWSHandler subscribes a connection to lobby status changes for the
// lobby browser. The socket is push-only: the server streams
// lobby_status_changed frames matching the optional ?status= filter and
// ignores anything the client sends beyond close.
func ListWSHandler(logger *logrus.Logger, srv *RealtimeServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("status")
		if filter != "" && !models.Status(filter).Valid() {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}

		userID, err := auth.UserIDFromRequest(r)
		if err != nil {
			http.Error(w, "invalid auth token", http.StatusUnauthorized)
			return
		}

		sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby-list"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer sock.Close(websocket.StatusInternalError, "handler finished")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := ws.NewConn(userID, ws.List(filter), cancel)
		srv.Registry.Register(conn)
		logger.Infof("conn %s: list subscriber attached (filter=%q)", conn.ID, conn.Context.Filter)

		go ws.WritePump(ctx, sock, conn, logger)

		// Drain the socket so pings and closes are processed; inbound frames
		// carry no meaning on this channel.
		for {
			if _, _, err := sock.Read(ctx); err != nil {
				break
			}
		}

		srv.Registry.Unregister(conn.ID)
		logger.Infof("conn %s: list subscriber detached", conn.ID)
	}
}
