package gameserver

import (
	"errors"

	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
)

var (
	// ErrNotAMember is returned when the sender is not seated in the addressed room.
	ErrNotAMember = errors.New("you are not a member of this room")
	// ErrGameNotStarted is returned for game events before both players are present.
	ErrGameNotStarted = errors.New("not enough players in the room")
	// ErrWrongGame is returned for an event that belongs to another game type.
	ErrWrongGame = errors.New("this room plays a different game")
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrUnknownEvent is returned for an unrecognised event type.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMalformedPayload is returned when a payload cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
)

// rejectionCodes maps rule errors to stable client-facing codes.
// Order matters only where one sentinel wraps another.
var rejectionCodes = []struct {
	err  error
	code string
}{
	{room.ErrUsernameRequired, "username_required"},
	{room.ErrUnknownGameType, "unknown_game_type"},
	{room.ErrAlreadyMember, "already_member"},
	{room.ErrAlreadyInRoom, "already_in_room"},
	{room.ErrGameTypeMismatch, "game_type_mismatch"},
	{room.ErrRoomFull, "room_full"},
	{room.ErrNotInRoom, "not_in_room"},
	{room.ErrRoomNotFound, "room_not_found"},
	{session.ErrNotConnected, "not_connected"},
	{ErrNotAMember, "not_a_member"},
	{ErrGameNotStarted, "game_not_started"},
	{ErrWrongGame, "wrong_game"},
	{ErrEmptyMessage, "empty_message"},
	{ErrUnknownEvent, "unknown_event"},
	{ErrMalformedPayload, "malformed_payload"},
	{grid.ErrGameOver, "game_over"},
	{grid.ErrNotYourTurn, "not_your_turn"},
	{grid.ErrCellOutOfRange, "cell_out_of_range"},
	{grid.ErrCellOccupied, "cell_occupied"},
	{choice.ErrNotAPlayer, "not_a_player"},
	{choice.ErrAlreadyChosen, "already_chosen"},
	{choice.ErrInvalidChoice, "invalid_choice"},
	{wordguess.ErrNotSetter, "not_setter"},
	{wordguess.ErrWordAlreadySet, "word_already_set"},
	{wordguess.ErrInvalidWord, "invalid_word"},
	{wordguess.ErrNotGuesser, "not_guesser"},
	{wordguess.ErrWordNotSet, "word_not_set"},
	{wordguess.ErrGameAlreadyOver, "game_already_over"},
	{wordguess.ErrInvalidLetter, "invalid_letter"},
	{wordguess.ErrLetterAlreadyGuessed, "letter_already_guessed"},
}

// RejectionCode returns the stable code for err, or "rejected" for errors
// outside the known taxonomy.
func RejectionCode(err error) string {
	for _, rc := range rejectionCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "rejected"
}
