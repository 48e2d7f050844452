// internal/handlers/dispatch_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatzero/seatzero/internal/lobby"
	"github.com/seatzero/seatzero/internal/ws"
)

func newDispatchServer() *RealtimeServer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRealtimeServer(nil, nil, logger)
}

func recvErrorCode(t *testing.T, c *ws.Conn) string {
	t.Helper()
	select {
	case data := <-c.OutChan:
		var frame ws.ErrorMessage
		require.NoError(t, json.Unmarshal(data, &frame))
		require.Equal(t, ws.TypeError, frame.Type)
		return frame.Code
	default:
		t.Fatal("expected an error frame")
		return ""
	}
}

func TestDispatchInvalidJSON(t *testing.T) {
	srv := newDispatchServer()
	conn := ws.NewConn(uuid.New(), ws.Room(uuid.New()), nil)

	dispatchRoomMessage(context.Background(), conn, []byte("{nope"), srv, srv.Logger)

	assert.Equal(t, lobby.CodeInvalidMessage, recvErrorCode(t, conn))
}

func TestDispatchUnknownType(t *testing.T) {
	srv := newDispatchServer()
	conn := ws.NewConn(uuid.New(), ws.Room(uuid.New()), nil)

	dispatchRoomMessage(context.Background(), conn, []byte(`{"type":"teleport"}`), srv, srv.Logger)

	assert.Equal(t, lobby.CodeInvalidMessage, recvErrorCode(t, conn))
}

// Authorization failures come back as error frames on the sending connection.
func TestDispatchAnonymousActions(t *testing.T) {
	srv := newDispatchServer()

	for _, frame := range []string{
		`{"type":"join"}`,
		`{"type":"chat","msg":"hi"}`,
		`{"type":"join_request"}`,
		`{"type":"kick","user_id":"` + uuid.New().String() + `"}`,
		`{"type":"game","action":{"type":"move"}}`,
	} {
		conn := ws.NewConn(uuid.Nil, ws.Room(uuid.New()), nil)
		dispatchRoomMessage(context.Background(), conn, []byte(frame), srv, srv.Logger)
		assert.Equal(t, lobby.CodeNotAuthenticated, recvErrorCode(t, conn), "frame %s", frame)
	}
}

func TestDispatchPing(t *testing.T) {
	srv := newDispatchServer()
	conn := ws.NewConn(uuid.Nil, ws.Room(uuid.New()), nil)

	dispatchRoomMessage(context.Background(), conn, []byte(`{"type":"ping","ts":0}`), srv, srv.Logger)

	select {
	case data := <-conn.OutChan:
		var frame ws.Pong
		require.NoError(t, json.Unmarshal(data, &frame))
		assert.Equal(t, ws.TypePong, frame.Type)
	default:
		t.Fatal("expected a pong frame")
	}
}
