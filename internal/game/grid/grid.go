// Package grid implements the turn-based 3x3 grid game (tic-tac-toe).
//
// The Game holds no I/O and no locks; callers serialize access per room.
package grid

import (
	"errors"
	"fmt"
)

// Mark is the content of a board cell.
type Mark string

const (
	// Empty marks an unoccupied cell.
	Empty Mark = ""
	// X is the starting player's mark.
	X Mark = "X"
	// O is the other player's mark.
	O Mark = "O"
)

// Draw is the winner sentinel for a full board with no line.
const Draw = "draw"

// Cells is the number of cells on the board.
const Cells = 9

var (
	// ErrGameOver is returned for a move after a win or a draw.
	ErrGameOver = errors.New("the game is already over")
	// ErrNotYourTurn is returned when the mover does not hold the turn.
	ErrNotYourTurn = errors.New("it is not your turn")
	// ErrCellOutOfRange is returned for a cell index outside 0-8.
	ErrCellOutOfRange = errors.New("cell index must be between 0 and 8")
	// ErrCellOccupied is returned when the target cell already holds a mark.
	ErrCellOccupied = errors.New("that cell is already taken")
)

// lines lists the 8 winning triples: 3 rows, 3 columns, 2 diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Game is the authoritative grid state for one room.
type Game struct {
	players [2]string
	board   [Cells]Mark
	marks   map[string]Mark
	turn    string
	winner  string
	moves   int
	starter string
}

// MoveResult describes an accepted move and the state it produced.
type MoveResult struct {
	Player string
	Cell   int
	Mark   Mark
	Board  [Cells]Mark
	// Turn is the player to move next, empty once the game is over.
	Turn string
	// Winner is a player id, Draw, or empty while play continues.
	Winner string
	Moves  int
	// Line holds the winning triple when Winner is a player.
	Line []int
}

// Over reports whether the move ended the game.
func (r MoveResult) Over() bool { return r.Winner != "" }

// Snapshot is a copy of the full grid state.
type Snapshot struct {
	Players [2]string
	Board   [Cells]Mark
	Marks   map[string]Mark
	Turn    string
	Winner  string
	Moves   int
	Starter string
}

// New creates a game where first opens with X and second plays O.
//
// Precondition: first and second must be distinct, non-empty connection ids.
// Postcondition: The board is empty and first holds the turn.
func New(first, second string) *Game {
	g := &Game{players: [2]string{first, second}}
	g.start(first)
	return g
}

func (g *Game) start(starter string) {
	g.board = [Cells]Mark{}
	g.moves = 0
	g.winner = ""
	g.starter = starter
	g.turn = starter
	g.marks = map[string]Mark{
		starter:          X,
		g.other(starter): O,
	}
}

// Apply places connID's mark on cell.
//
// Postcondition: On success the move counter has increased by exactly one and
// either the turn passed to the other player or the game ended. On error the
// state is unchanged.
func (g *Game) Apply(connID string, cell int) (MoveResult, error) {
	if g.winner != "" || g.moves == Cells {
		return MoveResult{}, ErrGameOver
	}
	if connID != g.turn {
		return MoveResult{}, ErrNotYourTurn
	}
	if cell < 0 || cell >= Cells {
		return MoveResult{}, fmt.Errorf("cell %d: %w", cell, ErrCellOutOfRange)
	}
	if g.board[cell] != Empty {
		return MoveResult{}, fmt.Errorf("cell %d: %w", cell, ErrCellOccupied)
	}

	mark := g.marks[connID]
	g.board[cell] = mark
	g.moves++

	res := MoveResult{Player: connID, Cell: cell, Mark: mark}
	if line, ok := g.winningLine(mark); ok {
		g.winner = connID
		g.turn = ""
		res.Line = line
	} else if g.moves == Cells {
		g.winner = Draw
		g.turn = ""
	} else {
		g.turn = g.other(connID)
	}

	res.Board = g.board
	res.Turn = g.turn
	res.Winner = g.winner
	res.Moves = g.moves
	return res, nil
}

// Reset starts a fresh board. The player who did not open the previous game
// opens this one and takes X, regardless of who won.
//
// Postcondition: The board is empty and the starter has alternated.
func (g *Game) Reset() {
	g.start(g.other(g.starter))
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	marks := make(map[string]Mark, len(g.marks))
	for id, m := range g.marks {
		marks[id] = m
	}
	return Snapshot{
		Players: g.players,
		Board:   g.board,
		Marks:   marks,
		Turn:    g.turn,
		Winner:  g.winner,
		Moves:   g.moves,
		Starter: g.starter,
	}
}

func (g *Game) other(connID string) string {
	if connID == g.players[0] {
		return g.players[1]
	}
	return g.players[0]
}

func (g *Game) winningLine(mark Mark) ([]int, bool) {
	for _, l := range lines {
		if g.board[l[0]] == mark && g.board[l[1]] == mark && g.board[l[2]] == mark {
			return []int{l[0], l[1], l[2]}, true
		}
	}
	return nil, false
}
