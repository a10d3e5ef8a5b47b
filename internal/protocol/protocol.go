// Package protocol defines the parlor wire vocabulary: event type names,
// the envelope every transport carries, and the inbound and outbound payloads.
//
// Transports differ only in framing. The websocket frontend exchanges the
// envelope as JSON text frames; the gRPC session service carries the same
// object as a google.protobuf.Struct.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event types.
const (
	TypeCreateOrJoinRoom = "create_or_join_room"
	TypeLeaveRoom        = "leave_room"
	TypeChatMessage      = "chat_message"
	TypeTicTacToeMove    = "tic_tac_toe_move"
	TypeResetTicTacToe   = "reset_tic_tac_toe"
	TypeRPSChoice        = "rps_choice"
	TypeResetRPS         = "reset_rps"
	TypeHangmanSetWord   = "hangman_set_word"
	TypeHangmanGuess     = "hangman_guess"
	TypeResetHangman     = "reset_hangman"
)

// Outbound event types.
const (
	TypeRoomJoined          = "room_joined"
	TypePlayerJoined        = "player_joined"
	TypePlayerDisconnected  = "player_disconnected"
	TypeGameEndedPlayerLeft = "game_ended_player_left"
	TypeGameStart           = "game_start"
	TypeNewChatMessage      = "new_chat_message"
	TypeTicTacToeUpdate     = "tic_tac_toe_update"
	TypeTicTacToeReset      = "tic_tac_toe_reset"
	TypeRPSPlayerReady      = "rps_player_ready"
	TypeRPSRoundResult      = "rps_round_result"
	TypeRPSReset            = "rps_reset"
	TypeHangmanWordSet      = "hangman_word_set"
	TypeHangmanUpdate       = "hangman_update"
	TypeHangmanReset        = "hangman_reset"
	TypeGameInfoMessage     = "game_info_message"
	TypeOperationRejected   = "operation_rejected"
)

// ErrEmptyType is returned when an envelope carries no event type.
var ErrEmptyType = errors.New("envelope has no type")

// Envelope is an inbound message as received from a transport.
// Payload is decoded lazily once the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is an outbound message addressed to one connection.
// Payload holds one of the outbound payload structs in this package.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewEnvelope builds an inbound envelope by encoding payload as JSON.
// A nil payload yields an envelope without a payload.
//
// Postcondition: Returns an Envelope with Type set, or a non-nil error.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	if eventType == "" {
		return Envelope{}, ErrEmptyType
	}
	env := Envelope{Type: eventType}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", eventType, err)
	}
	env.Payload = raw
	return env, nil
}

// DecodeEnvelope parses a JSON-encoded envelope.
//
// Postcondition: Returns an Envelope with a non-empty Type, or a non-nil error.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrEmptyType
	}
	return env, nil
}

// Decode unmarshals the envelope payload into v. An absent or null payload
// decodes as an empty object so events without fields need no payload.
//
// Precondition: v must be a non-nil pointer.
func (e Envelope) Decode(v any) error {
	raw := bytes.TrimSpace(e.Payload)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}
