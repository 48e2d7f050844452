// internal/cache/runtime_store_test.go
package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatzero/seatzero/internal/lobby"
)

func TestKeyLayout(t *testing.T) {
	lobbyID := uuid.MustParse("3d6f0eb0-90c2-4a9f-9e6a-000000000001")

	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:state", stateKey(lobbyID))
	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:players", playersKey(lobbyID))
	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:spectators", spectatorsKey(lobbyID))
	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:join_requests", requestsKey(lobbyID))
	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:countdown", countdownKey(lobbyID))
	assert.Equal(t, "lobby:3d6f0eb0-90c2-4a9f-9e6a-000000000001:chat", chatKey(lobbyID))
	assert.Equal(t, "game:3d6f0eb0-90c2-4a9f-9e6a-000000000001:state", summaryKey(lobbyID))
}

func TestWrapErrTranslatesNil(t *testing.T) {
	err := wrapErr(redis.Nil, "lobby state")
	require.Error(t, err)
	assert.ErrorIs(t, err, lobby.ErrNotFound)

	other := assert.AnError
	assert.Equal(t, other, wrapErr(other, "lobby state"))
}
