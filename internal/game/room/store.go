package room

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/observability"
)

var (
	// ErrUsernameRequired is returned for a join without a username.
	ErrUsernameRequired = errors.New("please enter a username")
	// ErrAlreadyMember is returned when the connection already sits in the room.
	ErrAlreadyMember = errors.New("you are already in this room")
	// ErrAlreadyInRoom is returned when the connection sits in a different room.
	ErrAlreadyInRoom = errors.New("you are already in another room")
	// ErrGameTypeMismatch is returned when the room plays a different game.
	ErrGameTypeMismatch = errors.New("this room plays a different game")
	// ErrRoomFull is returned when the room already holds two players.
	ErrRoomFull = errors.New("this room is full, try another room or create a new one")
	// ErrNotInRoom is returned by Leave for a connection without a room.
	ErrNotInRoom = errors.New("you are not in a room")
	// ErrRoomNotFound is returned for an unknown or torn-down room.
	ErrRoomNotFound = errors.New("room not found")
)

// JoinRequest asks to seat a connection in a room.
// An empty RoomID defaults to the game tag, giving one lobby per game.
type JoinRequest struct {
	ConnID   string
	Username string
	GameID   string
	RoomID   string
}

// JoinResult describes an accepted join.
// Room is locked for the duration of the notify callback only.
type JoinResult struct {
	Room     *Room
	ConnID   string
	Username string
	Created  bool
	// Started is true when this join seated the second player and created the game.
	Started bool
}

// LeaveKind distinguishes the two ways a leave tears a room down.
type LeaveKind int

const (
	// RoomClosed means the last member left.
	RoomClosed LeaveKind = iota
	// GameAbortedOpponentLeft means one member remains and the game cannot continue.
	GameAbortedOpponentLeft
)

func (k LeaveKind) String() string {
	switch k {
	case RoomClosed:
		return "room_closed"
	case GameAbortedOpponentLeft:
		return "game_aborted_opponent_left"
	}
	return fmt.Sprintf("LeaveKind(%d)", int(k))
}

// LeaveOutcome describes a completed leave. The room no longer exists.
type LeaveOutcome struct {
	Kind     LeaveKind
	RoomID   string
	GameType GameType
	ConnID   string
	Username string
	// Remaining is the member left behind on GameAbortedOpponentLeft.
	Remaining string
}

// Stats reports live counts for health endpoints.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Store maps room identifiers to rooms. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	registry *session.Registry
	logger   *zap.Logger
}

// NewStore creates an empty Store that records room membership in registry.
//
// Precondition: registry and logger must be non-nil.
func NewStore(registry *session.Registry, logger *zap.Logger) *Store {
	return &Store{
		rooms:    make(map[string]*Room),
		registry: registry,
		logger:   logger,
	}
}

// Registry returns the connection registry the store keeps in sync.
func (s *Store) Registry() *session.Registry {
	return s.registry
}

// Join seats req.ConnID in the requested room, creating the room if absent.
// When the join seats the second player the room's game is created.
// notify, if non-nil, runs with the room locked so anything it emits is
// ordered before every later event in the room.
//
// Postcondition: On success the connection is a member and the registry
// records its room. On error nothing changed.
func (s *Store) Join(req JoinRequest, notify func(JoinResult)) (JoinResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return JoinResult{}, ErrUsernameRequired
	}
	gt, err := ParseGameType(req.GameID)
	if err != nil {
		return JoinResult{}, err
	}
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		roomID = gt.String()
	}

	_, current, ok := s.registry.Lookup(req.ConnID)
	if !ok {
		return JoinResult{}, fmt.Errorf("join %q: %w", req.ConnID, session.ErrNotConnected)
	}
	if current == roomID {
		return JoinResult{}, ErrAlreadyMember
	}
	if current != "" {
		return JoinResult{}, fmt.Errorf("%w (%s)", ErrAlreadyInRoom, current)
	}

	for {
		r, created := s.acquire(roomID, gt)
		if r.closed {
			r.mu.Unlock()
			continue
		}
		res, err := s.joinLocked(r, gt, created, req.ConnID, username)
		if err == nil && notify != nil {
			notify(res)
		}
		r.mu.Unlock()
		return res, err
	}
}

// acquire returns the room for roomID locked, creating it when absent.
// A fresh room is locked before it is published so no one else can see it empty.
func (s *Store) acquire(roomID string, gt GameType) (*Room, bool) {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	if !ok {
		r = newRoom(roomID, gt)
		r.mu.Lock()
		s.rooms[roomID] = r
		s.mu.Unlock()
		return r, true
	}
	s.mu.Unlock()
	r.mu.Lock()
	return r, false
}

func (s *Store) joinLocked(r *Room, gt GameType, created bool, connID, username string) (JoinResult, error) {
	if r.Type != gt {
		return JoinResult{}, fmt.Errorf("%w: room %q plays %s", ErrGameTypeMismatch, r.ID, r.Type)
	}
	if r.IsMember(connID) {
		return JoinResult{}, ErrAlreadyMember
	}
	if len(r.members) >= MaxMembers {
		return JoinResult{}, ErrRoomFull
	}
	if err := s.registry.Register(connID, username, r.ID); err != nil {
		if created {
			s.removeLocked(r)
		}
		return JoinResult{}, err
	}
	// The registry keeps a connection's first username.
	if stored, _, ok := s.registry.Lookup(connID); ok && stored != "" {
		username = stored
	}

	r.members = append(r.members, connID)
	r.usernames[connID] = username
	res := JoinResult{Room: r, ConnID: connID, Username: username, Created: created}

	fields := []zap.Field{observability.Room(r.ID), observability.Conn(connID), observability.Game(r.Type.String())}
	if created {
		s.logger.Info("room created", fields...)
	}
	s.logger.Info("player joined", append(fields, zap.String("username", username), zap.Int("players", len(r.members)))...)

	if len(r.members) == MaxMembers {
		r.game = newGame(r.Type, r.members[0], r.members[1])
		res.Started = true
		s.logger.Info("game started", fields...)
	}
	return res, nil
}

// Leave removes connID from its room and tears the room down: a room whose
// last member left is closed, and a room left with one member is aborted.
// notify, if non-nil, runs with the room locked after the member is removed
// and before the room disappears from the store.
//
// Postcondition: The room no longer exists and no former member is associated
// with it in the registry. Returns ErrNotInRoom when connID has no room.
func (s *Store) Leave(connID string, notify func(LeaveOutcome)) (LeaveOutcome, error) {
	_, roomID, ok := s.registry.Lookup(connID)
	if !ok || roomID == "" {
		return LeaveOutcome{}, ErrNotInRoom
	}
	r := s.lookup(roomID)
	if r == nil {
		s.registry.ClearRoom(connID)
		return LeaveOutcome{}, ErrNotInRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.IsMember(connID) {
		return LeaveOutcome{}, ErrNotInRoom
	}

	out := LeaveOutcome{
		Kind:     RoomClosed,
		RoomID:   r.ID,
		GameType: r.Type,
		ConnID:   connID,
		Username: r.usernames[connID],
	}
	r.members = removeID(r.members, connID)
	delete(r.usernames, connID)
	s.registry.ClearRoom(connID)
	if len(r.members) > 0 {
		out.Kind = GameAbortedOpponentLeft
		out.Remaining = r.members[0]
	}

	fields := []zap.Field{observability.Room(r.ID), observability.Conn(connID), observability.Game(r.Type.String())}
	s.logger.Info("player left", fields...)

	if notify != nil {
		notify(out)
	}

	for _, id := range s.registry.ConnIDsInRoom(r.ID) {
		s.registry.ClearRoom(id)
	}
	s.removeLocked(r)
	if out.Kind == GameAbortedOpponentLeft {
		s.logger.Info("game aborted, opponent left", append(fields, zap.String("remaining", out.Remaining))...)
	} else {
		s.logger.Info("room closed", fields...)
	}
	return out, nil
}

// removeLocked marks r closed and deletes it from the map.
// The caller holds r.mu; acquiring the store lock here is safe because no
// store lock holder waits on a published room's lock.
func (s *Store) removeLocked(r *Room) {
	r.closed = true
	r.members = nil
	r.game = nil
	s.mu.Lock()
	if s.rooms[r.ID] == r {
		delete(s.rooms, r.ID)
	}
	s.mu.Unlock()
}

// WithRoom runs fn with the room locked.
//
// Postcondition: Returns ErrRoomNotFound if the room does not exist or was torn
// down; otherwise returns fn's error.
func (s *Store) WithRoom(roomID string, fn func(*Room) error) error {
	r := s.lookup(roomID)
	if r == nil {
		return fmt.Errorf("%q: %w", roomID, ErrRoomNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("%q: %w", roomID, ErrRoomNotFound)
	}
	return fn(r)
}

// Get returns a snapshot of the room.
func (s *Store) Get(roomID string) (Info, bool) {
	var info Info
	err := s.WithRoom(roomID, func(r *Room) error {
		info = r.info()
		return nil
	})
	return info, err == nil
}

// Stats returns the number of rooms and live connections.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	rooms := len(s.rooms)
	s.mu.RUnlock()
	return Stats{Rooms: rooms, Connections: s.registry.Count()}
}

func (s *Store) lookup(roomID string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[roomID]
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
