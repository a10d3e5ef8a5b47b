package gameserver

import (
	"strings"

	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// Chat broadcasts a message to every member of the sender's room, sender included.
// Chat does not need a started game.
//
// Precondition: connID must be seated in a room.
// Postcondition: Returns nil after the broadcast, or the rejection error.
func (c *Coordinator) Chat(connID string, msg protocol.ChatMessage) error {
	text := strings.TrimSpace(msg.Message)
	err := c.withRoom(connID, msg.RoomID, func(r *room.Room) error {
		if text == "" {
			return ErrEmptyMessage
		}
		c.broadcast(r, "", event(protocol.TypeNewChatMessage, protocol.NewChatMessage{
			Username: r.Username(connID),
			Message:  text,
		}))
		return nil
	})
	return c.Reject(connID, protocol.TypeChatMessage, err)
}
