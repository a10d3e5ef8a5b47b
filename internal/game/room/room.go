// Package room owns every Room and its game state.
//
// The Store keeps rooms in a map guarded by its own lock; each Room carries a
// mutex that serializes all events for that room. The store lock is never held
// while waiting for a room lock that another goroutine could hold.
package room

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
)

// MaxMembers is the room capacity.
const MaxMembers = 2

// GameType selects the game a room plays. It is fixed at room creation.
type GameType string

const (
	TicTacToe         GameType = "tic-tac-toe"
	RockPaperScissors GameType = "rock-paper-scissors"
	Hangman           GameType = "hangman"
)

// ErrUnknownGameType is returned for a tag outside the supported games.
var ErrUnknownGameType = errors.New("unknown game type")

// GameTypes lists the supported games in display order.
func GameTypes() []GameType {
	return []GameType{TicTacToe, RockPaperScissors, Hangman}
}

// ParseGameType validates a game tag.
func ParseGameType(tag string) (GameType, error) {
	switch gt := GameType(tag); gt {
	case TicTacToe, RockPaperScissors, Hangman:
		return gt, nil
	}
	return "", fmt.Errorf("%q: %w", tag, ErrUnknownGameType)
}

func (t GameType) String() string { return string(t) }

// Game is the room's game state: one of *grid.Game, *choice.Game or
// *wordguess.Game, selected by the room's GameType.
type Game interface {
	Reset()
}

var (
	_ Game = (*grid.Game)(nil)
	_ Game = (*choice.Game)(nil)
	_ Game = (*wordguess.Game)(nil)
)

func newGame(t GameType, first, second string) Game {
	switch t {
	case TicTacToe:
		return grid.New(first, second)
	case RockPaperScissors:
		return choice.New(first, second)
	case Hangman:
		return wordguess.New(first, second)
	}
	panic(fmt.Sprintf("room: no game for type %q", t))
}

// Room pairs up to two connections around one game.
// Methods other than ID and Type must be called with the room locked,
// which is the case inside WithRoom and the Join/Leave notify callbacks.
type Room struct {
	ID   string
	Type GameType

	mu        sync.Mutex
	members   []string
	usernames map[string]string
	game      Game
	closed    bool
}

func newRoom(id string, t GameType) *Room {
	return &Room{
		ID:        id,
		Type:      t,
		usernames: make(map[string]string),
	}
}

// Members returns the member connection ids in join order.
func (r *Room) Members() []string {
	return append([]string(nil), r.members...)
}

// Usernames returns a copy of the connection id to username map.
func (r *Room) Usernames() map[string]string {
	out := make(map[string]string, len(r.usernames))
	for id, name := range r.usernames {
		out[id] = name
	}
	return out
}

// UsernameList returns member usernames in join order.
func (r *Room) UsernameList() []string {
	out := make([]string, 0, len(r.members))
	for _, id := range r.members {
		out = append(out, r.usernames[id])
	}
	return out
}

// Username returns the username of a member, or "" for a non-member.
func (r *Room) Username(connID string) string {
	return r.usernames[connID]
}

// IsMember reports whether connID sits in the room.
func (r *Room) IsMember(connID string) bool {
	_, ok := r.usernames[connID]
	return ok
}

// Other returns the member that is not connID, or "" if there is none.
func (r *Room) Other(connID string) string {
	for _, id := range r.members {
		if id != connID {
			return id
		}
	}
	return ""
}

// Started reports whether both players are present and the game exists.
func (r *Room) Started() bool {
	return r.game != nil
}

// Game returns the room's game state, or nil before the second player joins.
func (r *Room) Game() Game {
	return r.game
}

// Info is a value snapshot of a room.
type Info struct {
	ID        string            `json:"room_id"`
	GameType  GameType          `json:"game_id"`
	Members   []string          `json:"players_sids"`
	Usernames map[string]string `json:"usernames"`
	Started   bool              `json:"started"`
}

func (r *Room) info() Info {
	return Info{
		ID:        r.ID,
		GameType:  r.Type,
		Members:   r.Members(),
		Usernames: r.Usernames(),
		Started:   r.Started(),
	}
}
