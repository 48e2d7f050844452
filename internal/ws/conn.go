// internal/ws/conn.go
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKind distinguishes the logical channel a connection is attached to.
type ContextKind int

const (
	// KindRoom attaches the connection to a single lobby's room.
	KindRoom ContextKind = iota
	// KindList subscribes the connection to lobby-list status updates.
	KindList
)

// Context identifies the channel a connection belongs to: a lobby room, or a
// lobby-list subscription filtered by status.
type Context struct {
	Kind    ContextKind
	LobbyID uuid.UUID // set when Kind == KindRoom
	Filter  string    // status filter when Kind == KindList ("all" when unfiltered)
}

// Room builds a room context for the given lobby.
func Room(lobbyID uuid.UUID) Context {
	return Context{Kind: KindRoom, LobbyID: lobbyID}
}

// List builds a lobby-list subscription context. An empty filter means "all".
func List(filter string) Context {
	if filter == "" {
		filter = "all"
	}
	return Context{Kind: KindList, Filter: filter}
}

// ChannelKey renders the index key for this context.
func (c Context) ChannelKey() string {
	if c.Kind == KindList {
		return "list:" + c.Filter
	}
	return "room:" + c.LobbyID.String()
}

// Conn is a single live socket known to the registry. UserID is uuid.Nil for
// unauthenticated connections. The registry owns the Conn once registered;
// everything else only pushes bytes through Send.
type Conn struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Context Context

	// OutChan carries pre-serialized frames to the write pump.
	OutChan chan []byte
	// Cancel tears down the goroutines attached to this connection.
	Cancel context.CancelFunc
}

// NewConn allocates a connection with a buffered outbound channel.
func NewConn(userID uuid.UUID, ctx Context, cancel context.CancelFunc) *Conn {
	return &Conn{
		ID:      uuid.New(),
		UserID:  userID,
		Context: ctx,
		OutChan: make(chan []byte, 32),
		Cancel:  cancel,
	}
}

// Send pushes a serialized frame onto OutChan non-blockingly. Frames to a
// full or closed channel are dropped; the connection's own disconnect
// handling cleans up a dead socket.
func (c *Conn) Send(data []byte) {
	defer func() {
		// OutChan may be closed concurrently by eviction.
		_ = recover()
	}()
	select {
	case c.OutChan <- data:
	default:
	}
}

// SendJSON marshals v and sends it on this connection only.
func (c *Conn) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Send(data)
}

// SendError is a convenience to report an error frame to this connection.
func (c *Conn) SendError(code, message string) {
	c.SendJSON(NewError(code, message))
}

// WritePump drains OutChan into the socket until the context is cancelled or
// the channel closes. It also pings periodically so dead peers are detected.
func WritePump(ctx context.Context, sock *websocket.Conn, c *Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer sock.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.OutChan:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := sock.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("ws: write failed for conn %s (user %s): %v", c.ID, c.UserID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := sock.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ws: ping failed for conn %s (user %s), assuming disconnect: %v", c.ID, c.UserID, err)
				return
			}
		}
	}
}
