// internal/ws/messages_test.go
package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatzero/seatzero/internal/models"
)

func TestClientMessageDecoding(t *testing.T) {
	target := uuid.New()

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"kick","user_id":"`+target.String()+`"}`), &msg))
	assert.Equal(t, TypeKick, msg.Type)
	assert.Equal(t, target, msg.UserID)

	msg = ClientMessage{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"join","spectate":true}`), &msg))
	assert.Equal(t, TypeJoin, msg.Type)
	assert.True(t, msg.Spectate)

	msg = ClientMessage{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"update_lobby_status","status":"starting"}`), &msg))
	assert.Equal(t, models.StatusStarting, msg.Status)

	msg = ClientMessage{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"game","action":{"type":"draw","data":{"pile":"stock"}}}`), &msg))
	assert.Equal(t, TypeGame, msg.Type)
	assert.JSONEq(t, `{"type":"draw","data":{"pile":"stock"}}`, string(msg.Action))
}

func TestBootstrapEmptySlicesEncodeAsArrays(t *testing.T) {
	frame := NewLobbyBootstrap(models.RuntimeState{Status: models.StatusWaiting}, nil, nil, nil)

	data, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"players":[]`)
	assert.Contains(t, string(data), `"join_requests":[]`)
	assert.Contains(t, string(data), `"chat_history":[]`)
}

func TestGameEnvelopeShape(t *testing.T) {
	data, err := json.Marshal(NewGameEvent(map[string]interface{}{"kind": "turn", "seat": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game","event":{"kind":"turn","seat":2}}`, string(data))
}

func TestFinalStandingShape(t *testing.T) {
	winner := uuid.New()
	data, err := json.Marshal(NewFinalStanding([]Standing{{UserID: winner, Rank: 1, Prize: 70}}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"final_standing","standings":[{"user_id":"`+winner.String()+`","rank":1,"prize":70}]}`,
		string(data))
}

func TestChatMessageFlattensEntry(t *testing.T) {
	user := uuid.New()
	entry := models.ChatEntry{UserID: user, Username: "bob", Message: "gg", SentAt: 1700000000000}

	data, err := json.Marshal(NewChat(entry))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"chat","user_id":"`+user.String()+`","username":"bob","msg":"gg","ts":1700000000000}`,
		string(data))
}
