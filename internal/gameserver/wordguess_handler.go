package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

const wordSetMessage = "The secret word is set! Now it's the guesser's turn."

// SetWord stores the hangman secret and announces the masked word.
func (c *Coordinator) SetWord(connID, roomID, word string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*wordguess.Game)
		if !ok {
			return ErrWrongGame
		}
		if _, err := g.SetWord(connID, word); err != nil {
			return err
		}
		c.broadcast(r, "", event(protocol.TypeHangmanWordSet, protocol.HangmanWordSet{
			HangmanState: hangmanState(g.Snapshot()),
		}))
		c.broadcast(r, "", infoEvent(wordSetMessage))
		return nil
	})
	return c.Reject(connID, protocol.TypeHangmanSetWord, err)
}

// Guess submits a hangman letter. The secret is revealed only in the update
// that ends the game.
func (c *Coordinator) Guess(connID, roomID, letter string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*wordguess.Game)
		if !ok {
			return ErrWrongGame
		}
		res, err := g.Guess(connID, letter)
		if err != nil {
			return err
		}
		if res.Over {
			c.logger.Info("hangman game over", append(roomFields(r, connID), zap.String("winner", res.Winner))...)
			c.broadcast(r, "", infoEvent(hangmanOutcome(g, res)))
		}
		c.broadcast(r, "", event(protocol.TypeHangmanUpdate, protocol.HangmanUpdate{
			HangmanState:     hangmanState(g.Snapshot()),
			LastGuessLetter:  res.Letter,
			LastGuessCorrect: res.Hit,
			SecretWord:       res.Secret,
		}))
		return nil
	})
	return c.Reject(connID, protocol.TypeHangmanGuess, err)
}

// WordReset starts a new hangman game with the roles swapped.
func (c *Coordinator) WordReset(connID, roomID string) error {
	err := c.withGame(connID, roomID, func(r *room.Room, game room.Game) error {
		g, ok := game.(*wordguess.Game)
		if !ok {
			return ErrWrongGame
		}
		c.resetWord(r, g)
		return nil
	})
	return c.Reject(connID, protocol.TypeResetHangman, err)
}

func (c *Coordinator) resetWord(r *room.Room, g *wordguess.Game) {
	g.Reset()
	c.broadcast(r, "", event(protocol.TypeHangmanReset, protocol.HangmanReset{
		InitialState: hangmanState(g.Snapshot()),
		SetterID:     g.Setter(),
		GuesserID:    g.Guesser(),
		Usernames:    r.Usernames(),
	}))
}

func hangmanOutcome(g *wordguess.Game, res wordguess.GuessResult) string {
	if res.Winner == g.Guesser() {
		return fmt.Sprintf("Congratulations! The guesser won! The word was %q", res.Secret)
	}
	return fmt.Sprintf("Game over! The hangman is complete. The word was %q", res.Secret)
}
