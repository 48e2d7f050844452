// internal/engine/registry_test.go
package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine is the minimal Engine used to exercise the registry and table.
type stubEngine struct {
	lobbyID  uuid.UUID
	finished bool
	results  []PlayerResult
}

func (e *stubEngine) Initialize(ctx context.Context, playerIDs []uuid.UUID) ([]Event, error) {
	return []Event{{"kind": "start", "players": len(playerIDs)}}, nil
}

func (e *stubEngine) HandleAction(ctx context.Context, userID uuid.UUID, action Action) ([]Event, error) {
	return nil, nil
}

func (e *stubEngine) Tick(ctx context.Context) ([]Event, error) { return nil, nil }

func (e *stubEngine) Bootstrap() Event { return Event{"kind": "snapshot"} }

func (e *stubEngine) GameState(userID uuid.UUID) Event { return e.Bootstrap() }

func (e *stubEngine) Results() []PlayerResult { return e.results }

func (e *stubEngine) Finished() bool { return e.finished }

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry()
	r.Register(7, func(lobbyID uuid.UUID) Engine {
		return &stubEngine{lobbyID: lobbyID}
	})

	lobbyID := uuid.New()
	eng, err := r.Create(7, lobbyID)
	require.NoError(t, err)
	assert.Equal(t, lobbyID, eng.(*stubEngine).lobbyID)

	_, err = r.Create(99, lobbyID)
	assert.ErrorIs(t, err, ErrUnknownGameType)
}

func TestRegistryDuplicateRegistrationPanics(t *testing.T) {
	r := NewRegistry()
	f := func(lobbyID uuid.UUID) Engine { return &stubEngine{} }
	r.Register(1, f)

	assert.Panics(t, func() { r.Register(1, f) })
}

func TestActiveTableAtMostOnePerLobby(t *testing.T) {
	table := NewActiveTable()
	lobbyID := uuid.New()

	ag, err := table.Put(lobbyID, &stubEngine{})
	require.NoError(t, err)
	require.NotNil(t, ag)

	_, err = table.Put(lobbyID, &stubEngine{})
	assert.ErrorIs(t, err, ErrEngineExists)
	assert.Equal(t, 1, table.Len())

	got, ok := table.Get(lobbyID)
	require.True(t, ok)
	assert.Same(t, ag, got)

	table.Remove(lobbyID)
	_, ok = table.Get(lobbyID)
	assert.False(t, ok)

	// Removal frees the slot for a rematch.
	_, err = table.Put(lobbyID, &stubEngine{})
	assert.NoError(t, err)
}

func TestActiveGameDoSerializesAccess(t *testing.T) {
	table := NewActiveTable()
	ag, err := table.Put(uuid.New(), &stubEngine{finished: true})
	require.NoError(t, err)

	var sawFinished bool
	err = ag.Do(func(eng Engine) error {
		sawFinished = eng.Finished()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawFinished)
}
