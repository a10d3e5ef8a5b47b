// Package session tracks live connections: who they are, which room they sit
// in, and the outbox through which events reach them.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrAlreadyConnected is returned when a connection id is registered twice.
	ErrAlreadyConnected = errors.New("connection already registered")
	// ErrNotConnected is returned for operations on an unknown connection id.
	ErrNotConnected = errors.New("connection not registered")
)

// Connection is a live transport connection.
// ID and Outbox are fixed for the connection's lifetime; the username and
// room association are read through the Registry.
type Connection struct {
	ID     string
	Outbox *Outbox

	username string
	roomID   string
	closing  bool
}

// Registry maps connection identifiers to their username, room, and outbox.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*Connection     // connID → connection
	roomSets map[string]map[string]bool // roomID → set of connIDs
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]*Connection),
		roomSets: make(map[string]map[string]bool),
	}
}

// Connect registers a new transport connection with no username or room.
//
// Precondition: connID must be non-empty.
// Postcondition: Returns the Connection with an open Outbox, or ErrAlreadyConnected.
func (r *Registry) Connect(connID string, outboxSize int) (*Connection, error) {
	if connID == "" {
		return nil, fmt.Errorf("connect: %w", ErrNotConnected)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connID]; exists {
		return nil, fmt.Errorf("connection %q: %w", connID, ErrAlreadyConnected)
	}
	c := &Connection{ID: connID, Outbox: NewOutbox(connID, outboxSize)}
	r.conns[connID] = c
	return c, nil
}

// Register associates a connection with a username and a room.
// The username is write-once: a later call keeps the first non-empty username.
//
// Precondition: connID and roomID must be non-empty.
// Postcondition: The connection's room is roomID, or ErrNotConnected is
// returned for an unknown or closing connection.
func (r *Registry) Register(connID, username, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok || c.closing {
		return fmt.Errorf("register %q: %w", connID, ErrNotConnected)
	}
	if c.username == "" {
		c.username = username
	}
	r.detachLocked(c)
	c.roomID = roomID
	if roomID != "" {
		if r.roomSets[roomID] == nil {
			r.roomSets[roomID] = make(map[string]bool)
		}
		r.roomSets[roomID][connID] = true
	}
	return nil
}

// Lookup returns the username and room associated with connID.
// roomID is empty when the connection is not seated in a room.
func (r *Registry) Lookup(connID string) (username, roomID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	if !ok {
		return "", "", false
	}
	return c.username, c.roomID, true
}

// BeginClose marks connID as closing. A closing connection keeps its room
// until it is cleared but can no longer be seated by Register.
//
// Postcondition: Returns false if connID is unknown or was already closing.
func (r *Registry) BeginClose(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok || c.closing {
		return false
	}
	c.closing = true
	return true
}

// ClearRoom removes the room association of connID. Unknown ids are ignored.
//
// Postcondition: Lookup reports an empty room for connID.
func (r *Registry) ClearRoom(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[connID]; ok {
		r.detachLocked(c)
		c.roomID = ""
	}
}

// Unregister removes a connection and closes its outbox.
//
// Postcondition: connID is unknown to the registry. Returns ErrNotConnected if it already was.
func (r *Registry) Unregister(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("unregister %q: %w", connID, ErrNotConnected)
	}
	r.detachLocked(c)
	c.Outbox.Close()
	delete(r.conns, connID)
	return nil
}

// Get returns the connection for connID.
func (r *Registry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	return c, ok
}

// ConnIDsInRoom returns the ids of connections associated with roomID, sorted.
//
// Postcondition: Returns a slice of connection ids (may be empty).
func (r *Registry) ConnIDsInRoom(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.roomSets[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) detachLocked(c *Connection) {
	if c.roomID == "" {
		return
	}
	if set, ok := r.roomSets[c.roomID]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.roomSets, c.roomID)
		}
	}
}
