// Package gameserver glues transport connections to the room store and the
// game state machines, and decides which events reach whom.
package gameserver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/config"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// Coordinator routes inbound events for every connection. It keeps no game
// state of its own; all room and game data lives in the room.Store and is
// only touched with the room locked.
//
// There are no turn timeouts: a player who never moves stalls the room until
// someone leaves.
type Coordinator struct {
	store      *room.Store
	registry   *session.Registry
	outboxSize int
	logger     *zap.Logger
}

// NewCoordinator creates a Coordinator backed by store.
//
// Precondition: store and logger must be non-nil.
// Postcondition: Returns a Coordinator ready to accept connections.
func NewCoordinator(store *room.Store, cfg config.SessionConfig, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		registry:   store.Registry(),
		outboxSize: cfg.OutboxSize,
		logger:     logger,
	}
}

// Store returns the room store.
func (c *Coordinator) Store() *room.Store {
	return c.store
}

// Connect registers a new transport connection.
//
// Precondition: connID must be unique among live connections.
// Postcondition: Returns the Connection whose Outbox the transport must drain.
func (c *Coordinator) Connect(connID string) (*session.Connection, error) {
	conn, err := c.registry.Connect(connID, c.outboxSize)
	if err != nil {
		return nil, err
	}
	c.logger.Info("connection opened", observability.Conn(connID))
	return conn, nil
}

// Disconnect removes connID from its room, notifying the other member, and
// forgets the connection. Calling it for an unknown connection is a no-op.
// A join racing with Disconnect on the same connection is rejected.
//
// Postcondition: The connection's outbox is closed and the connection is unknown.
func (c *Coordinator) Disconnect(connID string) {
	if !c.registry.BeginClose(connID) {
		return
	}
	if err := c.leaveRoom(connID, false); err != nil && !errors.Is(err, room.ErrNotInRoom) {
		c.logger.Warn("leaving room on disconnect", observability.Conn(connID), zap.Error(err))
	}
	if err := c.registry.Unregister(connID); err != nil {
		c.logger.Debug("unregistering connection", observability.Conn(connID), zap.Error(err))
	}
	c.logger.Info("connection closed", observability.Conn(connID))
}

// send pushes ev to one connection. A connection whose outbox overflows is
// closed so its transport disconnects it instead of silently dropping state.
func (c *Coordinator) send(connID string, ev protocol.Event) {
	conn, ok := c.registry.Get(connID)
	if !ok {
		return
	}
	err := conn.Outbox.Push(ev)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrOutboxFull):
		c.logger.Warn("outbox overflow, closing connection",
			observability.Conn(connID),
			observability.Event(ev.Type),
		)
		conn.Outbox.Close()
	default:
		c.logger.Debug("dropping event for closed connection",
			observability.Conn(connID),
			observability.Event(ev.Type),
			zap.Error(err),
		)
	}
}

// broadcast sends ev to every member of r except exclude.
//
// Precondition: r must be locked by the caller.
func (c *Coordinator) broadcast(r *room.Room, exclude string, ev protocol.Event) {
	for _, id := range r.Members() {
		if id == exclude {
			continue
		}
		c.send(id, ev)
	}
}

// Reject reports err to connID as an operation_rejected event for eventType
// and returns err. A nil err is a no-op.
func (c *Coordinator) Reject(connID, eventType string, err error) error {
	if err == nil {
		return nil
	}
	code := RejectionCode(err)
	c.logger.Debug("operation rejected",
		observability.Conn(connID),
		observability.Event(eventType),
		zap.String("code", code),
		zap.Error(err),
	)
	c.send(connID, protocol.Event{
		Type: protocol.TypeOperationRejected,
		Payload: protocol.OperationRejected{
			Event:  eventType,
			Code:   code,
			Reason: err.Error(),
		},
	})
	return err
}

// withRoom runs fn with the sender's room locked.
// payloadRoomID, when set, must name the sender's current room.
func (c *Coordinator) withRoom(connID, payloadRoomID string, fn func(r *room.Room) error) error {
	_, roomID, ok := c.registry.Lookup(connID)
	if !ok {
		return fmt.Errorf("%q: %w", connID, session.ErrNotConnected)
	}
	if roomID == "" || (payloadRoomID != "" && payloadRoomID != roomID) {
		return ErrNotAMember
	}
	err := c.store.WithRoom(roomID, func(r *room.Room) error {
		if !r.IsMember(connID) {
			return ErrNotAMember
		}
		return fn(r)
	})
	if errors.Is(err, room.ErrRoomNotFound) {
		return ErrNotAMember
	}
	return err
}

// withGame is withRoom for events that need a started game.
func (c *Coordinator) withGame(connID, payloadRoomID string, fn func(r *room.Room, g room.Game) error) error {
	return c.withRoom(connID, payloadRoomID, func(r *room.Room) error {
		if !r.Started() {
			return ErrGameNotStarted
		}
		return fn(r, r.Game())
	})
}

func roomFields(r *room.Room, connID string) []zap.Field {
	return []zap.Field{
		observability.Room(r.ID),
		observability.Conn(connID),
		observability.Game(r.Type.String()),
	}
}
