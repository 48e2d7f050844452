// internal/ws/registry.go
package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns every live connection and three secondary indices: by lobby,
// by user, and by channel key. All mutation happens under one mutex so a
// connection is never visible in one index but missing from another. The
// registry never sends messages itself; delivery belongs to the Hub.
type Registry struct {
	mu     sync.Mutex
	conns  map[uuid.UUID]*Conn
	byRoom map[uuid.UUID]map[uuid.UUID]*Conn
	byUser map[uuid.UUID]map[uuid.UUID]*Conn
	byChan map[string]map[uuid.UUID]*Conn
}

// NewRegistry initializes an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]*Conn),
		byRoom: make(map[uuid.UUID]map[uuid.UUID]*Conn),
		byUser: make(map[uuid.UUID]map[uuid.UUID]*Conn),
		byChan: make(map[string]map[uuid.UUID]*Conn),
	}
}

// Register inserts the connection into the primary map and every applicable
// index. Re-registering an id replaces the previous entry.
func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[c.ID]; ok {
		r.removeLocked(old)
	}
	r.conns[c.ID] = c
	if c.Context.Kind == KindRoom {
		addIndex(r.byRoom, c.Context.LobbyID, c)
	}
	if c.UserID != uuid.Nil {
		addIndex(r.byUser, c.UserID, c)
	}
	key := c.Context.ChannelKey()
	if r.byChan[key] == nil {
		r.byChan[key] = make(map[uuid.UUID]*Conn)
	}
	r.byChan[key][c.ID] = c
}

// Unregister removes the connection from the primary map and all indices.
// Unknown ids are ignored; removal is exactly-once from the caller's view.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		r.removeLocked(c)
	}
}

// UnregisterRoom evicts every connection attached to the given lobby's room,
// returning the evicted connections so the caller can cancel their pumps.
func (r *Registry) UnregisterRoom(lobbyID uuid.UUID) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := make([]*Conn, 0, len(r.byRoom[lobbyID]))
	for _, c := range r.byRoom[lobbyID] {
		evicted = append(evicted, c)
	}
	for _, c := range evicted {
		r.removeLocked(c)
	}
	return evicted
}

// UnregisterUser evicts every connection belonging to the given user.
func (r *Registry) UnregisterUser(userID uuid.UUID) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := make([]*Conn, 0, len(r.byUser[userID]))
	for _, c := range r.byUser[userID] {
		evicted = append(evicted, c)
	}
	for _, c := range evicted {
		r.removeLocked(c)
	}
	return evicted
}

// Get returns the connection with the given id, if registered.
func (r *Registry) Get(id uuid.UUID) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	return c, ok
}

// ConnectionsInRoom returns a snapshot of every connection in the lobby's room.
func (r *Registry) ConnectionsInRoom(lobbyID uuid.UUID) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.byRoom[lobbyID])
}

// ConnectionsForUser returns a snapshot of every connection owned by the user.
func (r *Registry) ConnectionsForUser(userID uuid.UUID) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.byUser[userID])
}

// ConnectionsForChannel returns a snapshot of every connection on a channel key.
func (r *Registry) ConnectionsForChannel(key string) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.byChan[key])
}

// All returns a snapshot of every registered connection.
func (r *Registry) All() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// RoomEmpty reports whether no connections remain in the lobby's room.
func (r *Registry) RoomEmpty(lobbyID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byRoom[lobbyID]) == 0
}

// removeLocked deletes c from the primary map and all indices. Caller holds mu.
func (r *Registry) removeLocked(c *Conn) {
	delete(r.conns, c.ID)
	if c.Context.Kind == KindRoom {
		dropIndex(r.byRoom, c.Context.LobbyID, c.ID)
	}
	if c.UserID != uuid.Nil {
		dropIndex(r.byUser, c.UserID, c.ID)
	}
	key := c.Context.ChannelKey()
	if set, ok := r.byChan[key]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.byChan, key)
		}
	}
}

func addIndex(idx map[uuid.UUID]map[uuid.UUID]*Conn, key uuid.UUID, c *Conn) {
	if idx[key] == nil {
		idx[key] = make(map[uuid.UUID]*Conn)
	}
	idx[key][c.ID] = c
}

func dropIndex(idx map[uuid.UUID]map[uuid.UUID]*Conn, key, connID uuid.UUID) {
	if set, ok := idx[key]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(idx, key)
		}
	}
}

func snapshot(set map[uuid.UUID]*Conn) []*Conn {
	out := make([]*Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}
