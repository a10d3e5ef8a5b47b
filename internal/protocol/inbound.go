package protocol

// CreateOrJoinRoom asks to seat the sender in a room. RoomID defaults to GameID.
type CreateOrJoinRoom struct {
	GameID   string `json:"gameId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId,omitempty"`
}

// RoomRef carries only the optional room id. Used by leave and reset events.
type RoomRef struct {
	RoomID string `json:"room_id,omitempty"`
}

// ChatMessage is a chat line sent to the sender's room.
type ChatMessage struct {
	RoomID  string `json:"room_id,omitempty"`
	Message string `json:"message"`
}

// TicTacToeMove places the sender's mark. CellIndex is a pointer so a
// missing index is distinguishable from cell 0.
type TicTacToeMove struct {
	RoomID    string `json:"room_id,omitempty"`
	CellIndex *int   `json:"cell_index"`
}

// RPSChoice submits the sender's choice for the current round.
type RPSChoice struct {
	RoomID string `json:"room_id,omitempty"`
	Choice string `json:"choice"`
}

// HangmanSetWord sets the secret word. Only the setter may send it.
type HangmanSetWord struct {
	RoomID string `json:"room_id,omitempty"`
	Word   string `json:"word"`
}

// HangmanGuess guesses a single letter. Only the guesser may send it.
type HangmanGuess struct {
	RoomID string `json:"room_id,omitempty"`
	Letter string `json:"letter"`
}
