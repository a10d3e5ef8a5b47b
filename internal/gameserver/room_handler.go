package gameserver

import (
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

const opponentLeftMessage = "The other player disconnected. The game has ended."

// Join seats connID in a room. The sender receives room_joined, the other
// member receives player_joined, and when the room fills everyone receives
// game_start. All of it is emitted under the room lock.
//
// Postcondition: Returns nil on success; otherwise the sender has been sent a
// rejection and the error is returned.
func (c *Coordinator) Join(connID string, req protocol.CreateOrJoinRoom) error {
	_, err := c.store.Join(room.JoinRequest{
		ConnID:   connID,
		Username: req.Username,
		GameID:   req.GameID,
		RoomID:   req.RoomID,
	}, func(res room.JoinResult) {
		r := res.Room
		names := r.UsernameList()
		c.send(connID, event(protocol.TypeRoomJoined, protocol.RoomJoined{
			RoomID:         r.ID,
			GameID:         r.Type.String(),
			PlayersInRoom:  len(names),
			PlayerID:       connID,
			Username:       res.Username,
			CurrentPlayers: names,
		}))
		c.broadcast(r, connID, event(protocol.TypePlayerJoined, protocol.PlayerJoined{
			PlayerID:       connID,
			Username:       res.Username,
			PlayersInRoom:  len(names),
			CurrentPlayers: names,
		}))
		if res.Started {
			c.broadcast(r, "", event(protocol.TypeGameStart, gameStart(r)))
		}
	})
	return c.Reject(connID, protocol.TypeCreateOrJoinRoom, err)
}

// Leave removes connID from its room without closing the connection.
// Any remaining member is told and the room is torn down.
func (c *Coordinator) Leave(connID string) error {
	return c.Reject(connID, protocol.TypeLeaveRoom, c.leaveRoom(connID, true))
}

func (c *Coordinator) leaveRoom(connID string, explicit bool) error {
	_, err := c.store.Leave(connID, func(out room.LeaveOutcome) {
		left := event(protocol.TypePlayerDisconnected, protocol.PlayerDisconnected{
			PlayerID:      out.ConnID,
			Username:      out.Username,
			PlayersInRoom: remainingCount(out),
		})
		if explicit {
			c.send(connID, left)
		}
		if out.Kind == room.GameAbortedOpponentLeft {
			c.send(out.Remaining, left)
			c.send(out.Remaining, event(protocol.TypeGameEndedPlayerLeft, protocol.GameEndedPlayerLeft{
				Message: opponentLeftMessage,
			}))
		}
	})
	return err
}

func remainingCount(out room.LeaveOutcome) int {
	if out.Remaining != "" {
		return 1
	}
	return 0
}
