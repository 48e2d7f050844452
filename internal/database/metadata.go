// internal/database/metadata.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seatzero/seatzero/internal/lobby"
	"github.com/seatzero/seatzero/internal/models"
)

// Metadata is the read-only relational collaborator: static lobby rows and
// game-type rows. The realtime core never writes here; lobby CRUD belongs to
// the platform's HTTP services.
type Metadata struct {
	pool *pgxpool.Pool
}

// NewMetadata wraps a connected pool.
func NewMetadata(pool *pgxpool.Pool) *Metadata {
	return &Metadata{pool: pool}
}

// LobbyMeta fetches a lobby's static metadata by id.
func (m *Metadata) LobbyMeta(ctx context.Context, lobbyID uuid.UUID) (*models.LobbyMeta, error) {
	q := `
	SELECT id, creator_id, game_type_id, is_private
	FROM lobbies
	WHERE id = $1
	`
	var meta models.LobbyMeta
	err := m.pool.QueryRow(ctx, q, lobbyID).Scan(
		&meta.LobbyID,
		&meta.CreatorID,
		&meta.GameTypeID,
		&meta.Private,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lobby %s: %w", lobbyID, lobby.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// GameTypeMeta fetches a game type's static metadata by id.
func (m *Metadata) GameTypeMeta(ctx context.Context, gameTypeID int64) (*models.GameTypeMeta, error) {
	q := `
	SELECT id, name, min_players, max_players
	FROM game_types
	WHERE id = $1
	`
	var meta models.GameTypeMeta
	err := m.pool.QueryRow(ctx, q, gameTypeID).Scan(
		&meta.GameTypeID,
		&meta.Name,
		&meta.MinPlayers,
		&meta.MaxPlayers,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game type %d: %w", gameTypeID, lobby.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
