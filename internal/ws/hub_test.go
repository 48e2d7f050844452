// internal/ws/hub_test.go
package ws

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatzero/seatzero/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// drain pops every buffered frame off the connection's outbound channel.
func drain(c *Conn) [][]byte {
	var frames [][]byte
	for {
		select {
		case data := <-c.OutChan:
			frames = append(frames, data)
		default:
			return frames
		}
	}
}

func TestHubBroadcastRoom(t *testing.T) {
	r := NewRegistry()
	hub := NewHub(r, testLogger())
	lobbyID := uuid.New()

	inRoom := newTestConn(uuid.New(), Room(lobbyID))
	alsoInRoom := newTestConn(uuid.New(), Room(lobbyID))
	elsewhere := newTestConn(uuid.New(), Room(uuid.New()))
	r.Register(inRoom)
	r.Register(alsoInRoom)
	r.Register(elsewhere)

	hub.BroadcastRoom(lobbyID, NewChat(models.ChatEntry{UserID: uuid.New(), Username: "alice", Message: "hello"}))

	assert.Len(t, drain(inRoom), 1)
	assert.Len(t, drain(alsoInRoom), 1)
	assert.Empty(t, drain(elsewhere))
}

// An error reply goes only to the connection that triggered it; the rest of
// the room sees nothing.
func TestErrorIsolation(t *testing.T) {
	r := NewRegistry()
	lobbyID := uuid.New()

	actor := newTestConn(uuid.New(), Room(lobbyID))
	bystander := newTestConn(uuid.New(), Room(lobbyID))
	another := newTestConn(uuid.New(), Room(lobbyID))
	r.Register(actor)
	r.Register(bystander)
	r.Register(another)

	actor.SendError("lobby_full", "lobby is full")

	frames := drain(actor)
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"error","code":"lobby_full","message":"lobby is full"}`, string(frames[0]))
	assert.Empty(t, drain(bystander))
	assert.Empty(t, drain(another))
}

func TestHubBroadcastUserMultiDevice(t *testing.T) {
	r := NewRegistry()
	hub := NewHub(r, testLogger())
	user := uuid.New()

	tab1 := newTestConn(user, Room(uuid.New()))
	tab2 := newTestConn(user, List(""))
	other := newTestConn(uuid.New(), List(""))
	r.Register(tab1)
	r.Register(tab2)
	r.Register(other)

	hub.BroadcastUser(user, NewPong(42))

	assert.Len(t, drain(tab1), 1)
	assert.Len(t, drain(tab2), 1)
	assert.Empty(t, drain(other))
}

type staticResolver struct {
	ids []uuid.UUID
	err error
}

func (s *staticResolver) ParticipantIDs(ctx context.Context, lobbyID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func TestHubBroadcastRoomParticipantsSkipsSpectators(t *testing.T) {
	r := NewRegistry()
	hub := NewHub(r, testLogger())
	lobbyID := uuid.New()
	player := uuid.New()
	spectator := uuid.New()

	playerConn := newTestConn(player, Room(lobbyID))
	spectatorConn := newTestConn(spectator, Room(lobbyID))
	r.Register(playerConn)
	r.Register(spectatorConn)

	hub.SetParticipantResolver(&staticResolver{ids: []uuid.UUID{player}})
	hub.BroadcastRoomParticipants(context.Background(), lobbyID, NewGameEvent(map[string]interface{}{"kind": "deal"}))

	assert.Len(t, drain(playerConn), 1)
	assert.Empty(t, drain(spectatorConn))
}

func TestHubBroadcastRoomParticipantsFallsBackWithoutResolver(t *testing.T) {
	r := NewRegistry()
	hub := NewHub(r, testLogger())
	lobbyID := uuid.New()

	c := newTestConn(uuid.New(), Room(lobbyID))
	r.Register(c)

	hub.BroadcastRoomParticipants(context.Background(), lobbyID, NewPong(1))

	assert.Len(t, drain(c), 1)
}

func TestHubBroadcastChannel(t *testing.T) {
	r := NewRegistry()
	hub := NewHub(r, testLogger())

	waiting := newTestConn(uuid.Nil, List("waiting"))
	all := newTestConn(uuid.Nil, List(""))
	r.Register(waiting)
	r.Register(all)

	lobbyID := uuid.New()
	hub.BroadcastChannel("list:waiting", NewLobbyStatusChanged(lobbyID, "waiting"))

	frames := drain(waiting)
	require.Len(t, frames, 1)
	assert.JSONEq(t,
		`{"type":"lobby_status_changed","lobby_id":"`+lobbyID.String()+`","status":"waiting"}`,
		string(frames[0]))
	assert.Empty(t, drain(all))
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	c := newTestConn(uuid.New(), List(""))
	for i := 0; i < cap(c.OutChan)+5; i++ {
		c.Send([]byte("x"))
	}
	assert.Len(t, drain(c), cap(c.OutChan))
}
