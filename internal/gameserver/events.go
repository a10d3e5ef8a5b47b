package gameserver

import (
	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

func event(eventType string, payload any) protocol.Event {
	return protocol.Event{Type: eventType, Payload: payload}
}

func infoEvent(msg string) protocol.Event {
	return event(protocol.TypeGameInfoMessage, protocol.GameInfoMessage{Message: msg})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func gridState(s grid.Snapshot) protocol.TicTacToeState {
	st := protocol.TicTacToeState{
		CurrentTurn: optional(s.Turn),
		PlayersMap:  make(map[string]string, len(s.Marks)),
		Winner:      optional(s.Winner),
		MovesCount:  s.Moves,
	}
	for i, m := range s.Board {
		st.Board[i] = string(m)
	}
	for id, m := range s.Marks {
		st.PlayersMap[id] = string(m)
	}
	return st
}

func gridUpdate(res grid.MoveResult) protocol.TicTacToeUpdate {
	u := protocol.TicTacToeUpdate{
		CurrentTurn: optional(res.Turn),
		PlayerMark:  string(res.Mark),
		CellIndex:   res.Cell,
		Winner:      optional(res.Winner),
	}
	for i, m := range res.Board {
		u.Board[i] = string(m)
	}
	return u
}

func rpsState(s choice.Snapshot) protocol.RPSState {
	return protocol.RPSState{
		Player1ID:  s.Players[0],
		Player2ID:  s.Players[1],
		Scores:     s.Scores,
		RoundReady: s.Ready,
		Rounds:     s.Rounds,
	}
}

func rpsRoundResult(round *choice.RoundResult, usernames map[string]string) protocol.RPSRoundResult {
	return protocol.RPSRoundResult{
		Round:         round.Round,
		Player1ID:     round.Players[0],
		Player2ID:     round.Players[1],
		Player1Choice: string(round.Choices[0]),
		Player2Choice: string(round.Choices[1]),
		WinnerID:      round.Winner,
		Scores:        round.Scores,
		Usernames:     usernames,
	}
}

func hangmanState(s wordguess.Snapshot) protocol.HangmanState {
	return protocol.HangmanState{
		WordDisplay:     s.Display,
		WordLength:      s.Length,
		GuessedLetters:  s.Guessed,
		WrongGuesses:    s.Wrong,
		MaxWrongGuesses: s.MaxWrong,
		GameOver:        s.Over,
		GameWinner:      s.Winner,
		SetterID:        s.Setter,
		GuesserID:       s.Guesser,
	}
}

// gameStart builds the game_start payload for a freshly started room.
//
// Precondition: r must be locked and started.
func gameStart(r *room.Room) protocol.GameStart {
	gs := protocol.GameStart{
		RoomID:    r.ID,
		GameID:    r.Type.String(),
		Players:   r.Members(),
		Usernames: r.Usernames(),
	}
	switch g := r.Game().(type) {
	case *grid.Game:
		st := gridState(g.Snapshot())
		gs.InitialState = st
		gs.PlayerRoles = st.PlayersMap
	case *choice.Game:
		gs.InitialState = rpsState(g.Snapshot())
	case *wordguess.Game:
		st := hangmanState(g.Snapshot())
		gs.InitialState = st
		gs.SetterID = st.SetterID
		gs.GuesserID = st.GuesserID
	}
	return gs
}
