// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ParticipantResolver reports the user ids currently joined as players in a
// lobby. The hub consults it for participant-scoped fan-out; the lobby
// service provides the implementation backed by the runtime store.
type ParticipantResolver interface {
	ParticipantIDs(ctx context.Context, lobbyID uuid.UUID) ([]uuid.UUID, error)
}

// Hub delivers serialized messages to connections looked up through the
// registry. Every broadcast marshals the message once and fans the same
// payload out best-effort: a failed or slow connection is skipped, never
// allowed to abort delivery to the rest.
type Hub struct {
	registry     *Registry
	logger       *logrus.Logger
	participants ParticipantResolver
}

// NewHub builds a hub over the given registry. The participant resolver may
// be set later via SetParticipantResolver to break construction cycles.
func NewHub(registry *Registry, logger *logrus.Logger) *Hub {
	return &Hub{registry: registry, logger: logger}
}

// SetParticipantResolver wires the player-state collaborator used by
// BroadcastRoomParticipants.
func (h *Hub) SetParticipantResolver(pr ParticipantResolver) {
	h.participants = pr
}

// Registry exposes the underlying connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Send delivers msg to a single connection by id.
func (h *Hub) Send(connID uuid.UUID, msg interface{}) {
	c, ok := h.registry.Get(connID)
	if !ok {
		return
	}
	data, err := h.marshal(msg)
	if err != nil {
		return
	}
	c.Send(data)
}

// BroadcastRoom delivers msg to every connection in the lobby's room.
func (h *Hub) BroadcastRoom(lobbyID uuid.UUID, msg interface{}) {
	h.fanOut(h.registry.ConnectionsInRoom(lobbyID), msg)
}

// BroadcastUser delivers msg to every connection owned by the user
// (multi-device).
func (h *Hub) BroadcastUser(userID uuid.UUID, msg interface{}) {
	h.fanOut(h.registry.ConnectionsForUser(userID), msg)
}

// BroadcastUsers delivers msg to every connection of each listed user.
func (h *Hub) BroadcastUsers(userIDs []uuid.UUID, msg interface{}) {
	data, err := h.marshal(msg)
	if err != nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, uid := range userIDs {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		for _, c := range h.registry.ConnectionsForUser(uid) {
			c.Send(data)
		}
	}
}

// BroadcastChannel delivers msg to every connection subscribed to a channel key.
func (h *Hub) BroadcastChannel(key string, msg interface{}) {
	h.fanOut(h.registry.ConnectionsForChannel(key), msg)
}

// BroadcastAll delivers msg to every registered connection.
func (h *Hub) BroadcastAll(msg interface{}) {
	h.fanOut(h.registry.All(), msg)
}

// BroadcastRoomParticipants delivers msg to the connections of users
// currently joined as players in the lobby, skipping spectators.
func (h *Hub) BroadcastRoomParticipants(ctx context.Context, lobbyID uuid.UUID, msg interface{}) {
	if h.participants == nil {
		h.BroadcastRoom(lobbyID, msg)
		return
	}
	ids, err := h.participants.ParticipantIDs(ctx, lobbyID)
	if err != nil {
		h.logger.Warnf("hub: participant lookup failed for lobby %s: %v", lobbyID, err)
		return
	}
	h.BroadcastUsers(ids, msg)
}

func (h *Hub) fanOut(conns []*Conn, msg interface{}) {
	data, err := h.marshal(msg)
	if err != nil {
		return
	}
	for _, c := range conns {
		c.Send(data)
	}
}

func (h *Hub) marshal(msg interface{}) ([]byte, error) {
	if raw, ok := msg.([]byte); ok {
		return raw, nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warnf("hub: failed to marshal outgoing message: %v", err)
		return nil, err
	}
	return data, nil
}
