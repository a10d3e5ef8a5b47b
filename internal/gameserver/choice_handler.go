package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// Choose submits a rock-paper-scissors choice. Every accepted submission is
// acknowledged to the room without revealing it; the submission that
// completes the round is followed by the round result in the same critical
// section that cleared the choices.
func (c *Coordinator) Choose(connID, roomID, raw string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*choice.Game)
		if !ok {
			return ErrWrongGame
		}
		res, err := g.Submit(connID, raw)
		if err != nil {
			return err
		}
		c.broadcast(r, "", event(protocol.TypeRPSPlayerReady, protocol.RPSPlayerReady{
			PlayerID:   connID,
			ChoiceMade: true,
			RoundReady: res.Ready,
		}))
		if res.Round != nil {
			c.logger.Debug("round resolved", append(roomFields(r, connID),
				zap.Int("round", res.Round.Round),
				zap.String("winner", res.Round.Winner),
			)...)
			c.broadcast(r, "", event(protocol.TypeRPSRoundResult, rpsRoundResult(res.Round, r.Usernames())))
		}
		return nil
	})
	return c.Reject(connID, protocol.TypeRPSChoice, err)
}

// ChoiceReset zeroes the scoreboard.
func (c *Coordinator) ChoiceReset(connID, roomID string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*choice.Game)
		if !ok {
			return ErrWrongGame
		}
		c.resetChoice(r, g)
		return nil
	})
	return c.Reject(connID, protocol.TypeResetRPS, err)
}

func (c *Coordinator) resetChoice(r *room.Room, g *choice.Game) {
	g.Reset()
	c.broadcast(r, "", event(protocol.TypeRPSReset, protocol.RPSReset{
		InitialState: rpsState(g.Snapshot()),
		Usernames:    r.Usernames(),
	}))
}
