package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/parlor/internal/frontend/telnet"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// roomView remembers what a text client needs to name players and cells.
// Only the session's event pump touches it.
type roomView struct {
	self  string
	names map[string]string
}

func newRoomView(self string) *roomView {
	return &roomView{self: self, names: make(map[string]string)}
}

func (v *roomView) name(connID string) string {
	if connID == v.self {
		return "You"
	}
	if n, ok := v.names[connID]; ok {
		return n
	}
	return "someone"
}

func (v *roomView) learn(usernames map[string]string) {
	for id, n := range usernames {
		v.names[id] = n
	}
}

// Render formats one outbound event as Telnet text. Multi-line renders use "\n".
func (v *roomView) Render(ev protocol.Event) string {
	switch p := ev.Payload.(type) {
	case protocol.RoomJoined:
		v.names = map[string]string{v.self: p.Username}
		return telnet.Green.Paintf("Joined room %s (%s). Players: %s", p.RoomID, p.GameID, strings.Join(p.CurrentPlayers, ", "))
	case protocol.PlayerJoined:
		v.names[p.PlayerID] = p.Username
		return telnet.Green.Paintf("%s joined the room.", p.Username)
	case protocol.PlayerDisconnected:
		if p.PlayerID == v.self {
			return telnet.Yellow.Paint("You left the room.")
		}
		return telnet.Yellow.Paintf("%s left the room.", p.Username)
	case protocol.GameEndedPlayerLeft:
		return telnet.Yellow.Paint(p.Message)
	case protocol.GameStart:
		v.learn(p.Usernames)
		return v.renderStart(p)
	case protocol.NewChatMessage:
		return telnet.White.Paintf("%s: %s", p.Username, p.Message)
	case protocol.GameInfoMessage:
		return telnet.Cyan.Paint(p.Message)
	case protocol.OperationRejected:
		return telnet.Red.Paintf("Rejected: %s", p.Reason)

	case protocol.TicTacToeUpdate:
		return RenderBoard(p.Board) + "\n" + v.gridStatus(p.CurrentTurn, p.Winner)
	case protocol.TicTacToeReset:
		v.learn(p.Usernames)
		st := p.InitialState
		return telnet.Bold.Paint("New board.") + "\n" + RenderBoard(st.Board) + "\n" + v.gridStatus(st.CurrentTurn, nil)

	case protocol.RPSPlayerReady:
		if p.PlayerID == v.self {
			return telnet.Dim.Paint("Choice locked in.")
		}
		return telnet.Dim.Paintf("%s has chosen.", v.name(p.PlayerID))
	case protocol.RPSRoundResult:
		return v.renderRound(p)
	case protocol.RPSReset:
		v.learn(p.Usernames)
		return telnet.Bold.Paint("Scores reset. Choose rock, paper or scissors.")

	case protocol.HangmanWordSet:
		return v.renderHangman(p.HangmanState)
	case protocol.HangmanUpdate:
		mark := telnet.Red.Paintf("%s is not in the word.", p.LastGuessLetter)
		if p.LastGuessCorrect {
			mark = telnet.Green.Paintf("%s is in the word!", p.LastGuessLetter)
		}
		return mark + "\n" + v.renderHangman(p.HangmanState)
	case protocol.HangmanReset:
		v.learn(p.Usernames)
		return telnet.Bold.Paintf("New round: %s set(s) the word, %s guess(es).", v.name(p.SetterID), v.name(p.GuesserID))
	}
	return fmt.Sprintf("[%s]", ev.Type)
}

func (v *roomView) renderStart(p protocol.GameStart) string {
	banner := telnet.Bold.Paintf("Game on: %s!", p.GameID)
	switch st := p.InitialState.(type) {
	case protocol.TicTacToeState:
		roles := make([]string, 0, len(p.Players))
		for _, id := range p.Players {
			roles = append(roles, fmt.Sprintf("%s (%s)", v.names[id], p.PlayerRoles[id]))
		}
		return banner + "\n" + strings.Join(roles, " vs ") + "\n" + RenderBoard(st.Board) + "\n" + v.gridStatus(st.CurrentTurn, nil)
	case protocol.RPSState:
		return banner + "\nChoose rock, paper or scissors."
	case protocol.HangmanState:
		out := banner + fmt.Sprintf("\n%s set(s) the word, %s guess(es).", v.name(p.SetterID), v.name(p.GuesserID))
		if p.SetterID == v.self {
			out += "\n" + telnet.Cyan.Paint("Pick a secret word (word <secret>).")
		}
		return out
	}
	return banner
}

func (v *roomView) gridStatus(turn, winner *string) string {
	switch {
	case winner != nil && *winner == "draw":
		return telnet.Yellow.Paint("Draw.")
	case winner != nil:
		return telnet.Green.Paintf("%s won.", v.name(*winner))
	case turn != nil && *turn == v.self:
		return telnet.Cyan.Paint("Your move (move <0-8>).")
	case turn != nil:
		return telnet.Dim.Paintf("Waiting for %s.", v.name(*turn))
	}
	return ""
}

func (v *roomView) renderRound(p protocol.RPSRoundResult) string {
	v.learn(p.Usernames)
	line := fmt.Sprintf("Round %d: %s played %s, %s played %s.",
		p.Round, v.name(p.Player1ID), p.Player1Choice, v.name(p.Player2ID), p.Player2Choice)
	outcome := telnet.Yellow.Paint("Draw.")
	if p.WinnerID != "draw" {
		outcome = telnet.Green.Paintf("%s won the round.", v.name(p.WinnerID))
	}
	return line + "\n" + outcome + "\n" + v.renderScores(p.Scores)
}

func (v *roomView) renderScores(scores map[string]int) string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s %d", v.name(id), scores[id]))
	}
	return "Score: " + strings.Join(parts, ", ")
}

func (v *roomView) renderHangman(st protocol.HangmanState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s", telnet.Bold.Paint(st.WordDisplay))
	fmt.Fprintf(&b, "\nMisses: %d/%d", st.WrongGuesses, st.MaxWrongGuesses)
	if len(st.GuessedLetters) > 0 {
		fmt.Fprintf(&b, "  Guessed: %s", strings.Join(st.GuessedLetters, " "))
	}
	if !st.GameOver && st.GuesserID == v.self {
		b.WriteString("\n" + telnet.Cyan.Paint("Your guess (guess <letter>)."))
	}
	return b.String()
}

// RenderBoard draws a tic-tac-toe board. Empty cells show their index so
// players know what to type.
func RenderBoard(board [9]string) string {
	rows := make([]string, 0, 5)
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			switch board[i] {
			case "":
				cells[c] = telnet.Dim.Paint(strconv.Itoa(i))
			case "X":
				cells[c] = telnet.Red.Paint("X")
			default:
				cells[c] = telnet.Blue.Paint(board[i])
			}
		}
		rows = append(rows, " "+strings.Join(cells, " | ")+" ")
		if r < 2 {
			rows = append(rows, "---+---+---")
		}
	}
	return strings.Join(rows, "\n")
}
