// internal/handlers/server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/seatzero/seatzero/internal/engine"
	"github.com/seatzero/seatzero/internal/lobby"
	"github.com/seatzero/seatzero/internal/ws"
)

// RealtimeServer bundles the long-lived pieces the socket handlers share:
// the connection registry, the broadcast hub, the engine registries, and the
// lobby service driving all of them.
type RealtimeServer struct {
	Registry *ws.Registry
	Hub      *ws.Hub
	Engines  *engine.Registry
	Active   *engine.ActiveTable
	Lobby    *lobby.Service
	Logger   *logrus.Logger
}

// NewRealtimeServer wires the registry, hub, engine tables, and lobby
// service around the provided collaborators.
func NewRealtimeServer(store lobby.RuntimeStore, meta lobby.MetadataSource, logger *logrus.Logger) *RealtimeServer {
	registry := ws.NewRegistry()
	hub := ws.NewHub(registry, logger)
	engines := engine.NewRegistry()
	active := engine.NewActiveTable()
	svc := lobby.NewService(store, meta, hub, engines, active, logger)

	return &RealtimeServer{
		Registry: registry,
		Hub:      hub,
		Engines:  engines,
		Active:   active,
		Lobby:    svc,
		Logger:   logger,
	}
}
