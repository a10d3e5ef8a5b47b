package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// GridMove applies a tic-tac-toe move and broadcasts the resulting board.
//
// Postcondition: Returns nil after the broadcast, or the rejection error.
func (c *Coordinator) GridMove(connID, roomID string, cell int) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*grid.Game)
		if !ok {
			return ErrWrongGame
		}
		res, err := g.Apply(connID, cell)
		if err != nil {
			return err
		}
		c.broadcast(r, "", event(protocol.TypeTicTacToeUpdate, gridUpdate(res)))
		if res.Over() {
			c.logger.Info("grid game over", append(roomFields(r, connID), zap.String("winner", res.Winner))...)
			c.broadcast(r, "", infoEvent(gridOutcome(r, res.Winner)))
		}
		return nil
	})
	return c.Reject(connID, protocol.TypeTicTacToeMove, err)
}

// GridReset starts a new board; the player who did not open the last game opens this one.
func (c *Coordinator) GridReset(connID, roomID string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*grid.Game)
		if !ok {
			return ErrWrongGame
		}
		c.resetGrid(r, g)
		return nil
	})
	return c.Reject(connID, protocol.TypeResetTicTacToe, err)
}

func (c *Coordinator) resetGrid(r *room.Room, g *grid.Game) {
	g.Reset()
	c.broadcast(r, "", event(protocol.TypeTicTacToeReset, protocol.TicTacToeReset{
		InitialState: gridState(g.Snapshot()),
		Usernames:    r.Usernames(),
	}))
}

func gridOutcome(r *room.Room, winner string) string {
	if winner == grid.Draw {
		return "It's a draw!"
	}
	return fmt.Sprintf("%s wins!", r.Username(winner))
}
