package protocol

// RoomJoined confirms a successful join to the joining connection.
type RoomJoined struct {
	RoomID         string   `json:"room_id"`
	GameID         string   `json:"game_id"`
	PlayersInRoom  int      `json:"players_in_room"`
	PlayerID       string   `json:"player_sid"`
	Username       string   `json:"username"`
	CurrentPlayers []string `json:"current_players"`
}

// PlayerJoined tells existing members that someone joined.
type PlayerJoined struct {
	PlayerID       string   `json:"player_sid"`
	Username       string   `json:"username"`
	PlayersInRoom  int      `json:"players_in_room"`
	CurrentPlayers []string `json:"current_players"`
}

// PlayerDisconnected tells the room that a member left.
type PlayerDisconnected struct {
	PlayerID      string `json:"sid"`
	Username      string `json:"username"`
	PlayersInRoom int    `json:"players_in_room"`
}

// GameEndedPlayerLeft tells the remaining member that the room was torn down.
type GameEndedPlayerLeft struct {
	Message string `json:"message"`
}

// GameStart announces that the second player arrived and the game began.
// InitialState holds a TicTacToeState, RPSState or HangmanState.
type GameStart struct {
	RoomID       string            `json:"room_id"`
	GameID       string            `json:"game_id"`
	InitialState any               `json:"initial_state"`
	Players      []string          `json:"players_sids"`
	PlayerRoles  map[string]string `json:"player_roles,omitempty"`
	SetterID     string            `json:"setter_sid,omitempty"`
	GuesserID    string            `json:"guesser_sid,omitempty"`
	Usernames    map[string]string `json:"usernames"`
}

// NewChatMessage is a chat line broadcast to the room.
type NewChatMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// TicTacToeState is a full grid snapshot.
type TicTacToeState struct {
	Board       [9]string         `json:"board"`
	CurrentTurn *string           `json:"current_turn"`
	PlayersMap  map[string]string `json:"players_map"`
	Winner      *string           `json:"winner"`
	MovesCount  int               `json:"moves_count"`
}

// TicTacToeUpdate follows every accepted move. Winner is a player id or "draw".
type TicTacToeUpdate struct {
	Board       [9]string `json:"board"`
	CurrentTurn *string   `json:"current_turn"`
	PlayerMark  string    `json:"player_mark"`
	CellIndex   int       `json:"cell_index"`
	Winner      *string   `json:"winner,omitempty"`
}

// TicTacToeReset carries the fresh grid after a reset.
type TicTacToeReset struct {
	InitialState TicTacToeState    `json:"initial_state"`
	Usernames    map[string]string `json:"usernames"`
}

// RPSState is a rock-paper-scissors snapshot. Pending choices are never included.
type RPSState struct {
	Player1ID  string         `json:"player1_sid"`
	Player2ID  string         `json:"player2_sid"`
	Scores     map[string]int `json:"scores"`
	RoundReady int            `json:"round_ready"`
	Rounds     int            `json:"rounds"`
}

// RPSPlayerReady acknowledges a submitted choice without revealing it.
type RPSPlayerReady struct {
	PlayerID   string `json:"player_sid"`
	ChoiceMade bool   `json:"choice_made"`
	RoundReady int    `json:"round_ready"`
}

// RPSRoundResult reveals both choices once a round resolves. WinnerID is a player id or "draw".
type RPSRoundResult struct {
	Round         int               `json:"round"`
	Player1ID     string            `json:"player1_sid"`
	Player2ID     string            `json:"player2_sid"`
	Player1Choice string            `json:"player1_choice"`
	Player2Choice string            `json:"player2_choice"`
	WinnerID      string            `json:"winner_sid"`
	Scores        map[string]int    `json:"scores"`
	Usernames     map[string]string `json:"usernames"`
}

// RPSReset carries the zeroed scoreboard after a reset.
type RPSReset struct {
	InitialState RPSState          `json:"initial_state"`
	Usernames    map[string]string `json:"usernames"`
}

// HangmanState is a word-guess snapshot. The secret word is never included.
type HangmanState struct {
	WordDisplay     string   `json:"word_display"`
	WordLength      int      `json:"word_length"`
	GuessedLetters  []string `json:"guessed_letters"`
	WrongGuesses    int      `json:"wrong_guesses"`
	MaxWrongGuesses int      `json:"max_wrong_guesses"`
	GameOver        bool     `json:"game_over"`
	GameWinner      string   `json:"game_winner,omitempty"`
	SetterID        string   `json:"setter_sid"`
	GuesserID       string   `json:"guesser_sid"`
}

// HangmanWordSet announces that the setter chose a word.
type HangmanWordSet struct {
	HangmanState
}

// HangmanUpdate follows every accepted guess. SecretWord is set only once the game is over.
type HangmanUpdate struct {
	HangmanState
	LastGuessLetter  string `json:"last_guess_letter"`
	LastGuessCorrect bool   `json:"last_guess_correct"`
	SecretWord       string `json:"secret_word,omitempty"`
}

// HangmanReset carries the fresh game with swapped roles.
type HangmanReset struct {
	InitialState HangmanState      `json:"initial_state"`
	SetterID     string            `json:"setter_sid"`
	GuesserID    string            `json:"guesser_sid"`
	Usernames    map[string]string `json:"usernames"`
}

// GameInfoMessage is a human-readable room announcement.
type GameInfoMessage struct {
	Message string `json:"message"`
}

// OperationRejected is sent only to the connection whose event was refused.
// Code is a stable snake_case identifier; Reason is for humans.
type OperationRejected struct {
	Event  string `json:"event"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
