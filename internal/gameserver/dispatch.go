package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// Dispatch decodes env and routes it to the matching handler. Unknown types
// and undecodable payloads are rejected to the sender; nothing panics on input.
//
// Postcondition: Returns nil if the event was applied, or the rejection error.
func (c *Coordinator) Dispatch(connID string, env protocol.Envelope) error {
	switch env.Type {
	case protocol.TypeCreateOrJoinRoom:
		var p protocol.CreateOrJoinRoom
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.Join(connID, p)

	case protocol.TypeLeaveRoom:
		return c.Leave(connID)

	case protocol.TypeChatMessage:
		var p protocol.ChatMessage
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.Chat(connID, p)

	case protocol.TypeTicTacToeMove:
		var p protocol.TicTacToeMove
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		if p.CellIndex == nil {
			return c.Reject(connID, env.Type, fmt.Errorf("%w: cell_index is required", ErrMalformedPayload))
		}
		return c.GridMove(connID, p.RoomID, *p.CellIndex)

	case protocol.TypeResetTicTacToe:
		var p protocol.RoomRef
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.GridReset(connID, p.RoomID)

	case protocol.TypeRPSChoice:
		var p protocol.RPSChoice
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.Choose(connID, p.RoomID, p.Choice)

	case protocol.TypeResetRPS:
		var p protocol.RoomRef
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.ChoiceReset(connID, p.RoomID)

	case protocol.TypeHangmanSetWord:
		var p protocol.HangmanSetWord
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.SetWord(connID, p.RoomID, p.Word)

	case protocol.TypeHangmanGuess:
		var p protocol.HangmanGuess
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.Guess(connID, p.RoomID, p.Letter)

	case protocol.TypeResetHangman:
		var p protocol.RoomRef
		if err := c.decode(connID, env, &p); err != nil {
			return err
		}
		return c.WordReset(connID, p.RoomID)
	}
	return c.Reject(connID, env.Type, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type))
}

func (c *Coordinator) decode(connID string, env protocol.Envelope, v any) error {
	if err := env.Decode(v); err != nil {
		return c.Reject(connID, env.Type, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	return nil
}

// Reset resets whatever game the sender's room plays.
func (c *Coordinator) Reset(connID string) error {
	eventType := "reset"
	err := c.withGame(connID, "", func(r *room.Room, game room.Game) error {
		switch g := game.(type) {
		case *grid.Game:
			eventType = protocol.TypeResetTicTacToe
			c.resetGrid(r, g)
		case *choice.Game:
			eventType = protocol.TypeResetRPS
			c.resetChoice(r, g)
		case *wordguess.Game:
			eventType = protocol.TypeResetHangman
			c.resetWord(r, g)
		default:
			return ErrWrongGame
		}
		return nil
	})
	return c.Reject(connID, eventType, err)
}
