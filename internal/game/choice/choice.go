// Package choice implements the simultaneous-choice game (rock-paper-scissors).
//
// Both players submit a hidden choice; the round resolves the moment the
// second choice arrives and the pending choices are cleared in the same call.
package choice

import (
	"errors"
	"fmt"
	"strings"
)

// Choice is one of the three throws.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Draw is the winner sentinel for a round with equal choices.
const Draw = "draw"

var (
	// ErrNotAPlayer is returned when the submitter holds neither slot.
	ErrNotAPlayer = errors.New("you are not a player in this game")
	// ErrAlreadyChosen is returned for a second submission in the same round.
	ErrAlreadyChosen = errors.New("you already chose this round")
	// ErrInvalidChoice is returned for anything outside the choice set.
	ErrInvalidChoice = errors.New("choice must be rock, paper or scissors")
)

// beats maps each choice to the one it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

var aliases = map[string]Choice{
	"rock":     Rock,
	"paper":    Paper,
	"scissors": Scissors,
	"pedra":    Rock,
	"papel":    Paper,
	"tesoura":  Scissors,
}

// ParseChoice normalizes raw input into a Choice.
func ParseChoice(raw string) (Choice, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidChoice)
	}
	return c, nil
}

// Beats reports whether c defeats other.
func (c Choice) Beats(other Choice) bool {
	return beats[c] == other
}

// Game is the authoritative simultaneous-choice state for one room.
type Game struct {
	players [2]string
	choices [2]Choice
	scores  map[string]int
	ready   int
	rounds  int
}

// RoundResult reveals a resolved round.
type RoundResult struct {
	Round   int
	Players [2]string
	Choices [2]Choice
	// Winner is a player id or Draw.
	Winner string
	Scores map[string]int
}

// SubmitResult describes an accepted submission.
type SubmitResult struct {
	Player string
	// Ready is the readiness count the submission produced (1 or 2).
	Ready int
	// Round is non-nil exactly when the submission resolved the round.
	Round *RoundResult
}

// Snapshot is a copy of the scoreboard. Pending choices are reported only as flags.
type Snapshot struct {
	Players [2]string
	Chosen  [2]bool
	Scores  map[string]int
	Ready   int
	Rounds  int
}

// New creates a game with both choices unset and both scores at zero.
//
// Precondition: first and second must be distinct, non-empty connection ids.
func New(first, second string) *Game {
	return &Game{
		players: [2]string{first, second},
		scores:  map[string]int{first: 0, second: 0},
	}
}

// Submit records connID's choice for the current round.
//
// Postcondition: On error the state is unchanged. When the second choice
// arrives the round is scored and the choices and readiness are already
// cleared for the next round when Submit returns.
func (g *Game) Submit(connID, raw string) (SubmitResult, error) {
	slot := g.slot(connID)
	if slot < 0 {
		return SubmitResult{}, ErrNotAPlayer
	}
	if g.choices[slot] != "" {
		return SubmitResult{}, ErrAlreadyChosen
	}
	c, err := ParseChoice(raw)
	if err != nil {
		return SubmitResult{}, err
	}

	g.choices[slot] = c
	g.ready++
	res := SubmitResult{Player: connID, Ready: g.ready}
	if g.ready == 2 {
		res.Round = g.resolve()
	}
	return res, nil
}

func (g *Game) resolve() *RoundResult {
	g.rounds++
	round := &RoundResult{
		Round:   g.rounds,
		Players: g.players,
		Choices: g.choices,
		Winner:  Draw,
	}
	switch {
	case g.choices[0].Beats(g.choices[1]):
		round.Winner = g.players[0]
	case g.choices[1].Beats(g.choices[0]):
		round.Winner = g.players[1]
	}
	if round.Winner != Draw {
		g.scores[round.Winner]++
	}
	round.Scores = g.copyScores()

	g.choices = [2]Choice{}
	g.ready = 0
	return round
}

// Reset clears pending choices and zeroes both scores and the round counter.
func (g *Game) Reset() {
	g.choices = [2]Choice{}
	g.ready = 0
	g.rounds = 0
	g.scores = map[string]int{g.players[0]: 0, g.players[1]: 0}
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Players: g.players,
		Chosen:  [2]bool{g.choices[0] != "", g.choices[1] != ""},
		Scores:  g.copyScores(),
		Ready:   g.ready,
		Rounds:  g.rounds,
	}
}

func (g *Game) slot(connID string) int {
	for i, p := range g.players {
		if p == connID {
			return i
		}
	}
	return -1
}

func (g *Game) copyScores() map[string]int {
	out := make(map[string]int, len(g.scores))
	for id, s := range g.scores {
		out[id] = s
	}
	return out
}
