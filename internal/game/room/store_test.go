package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/parlor/internal/game/choice"
	"github.com/cory-johannsen/parlor/internal/game/grid"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/game/wordguess"
)

func newTestStore(t zaptest.TestingT, conns ...string) *Store {
	reg := session.NewRegistry()
	for _, id := range conns {
		_, err := reg.Connect(id, 8)
		require.NoError(t, err)
	}
	return NewStore(reg, zaptest.NewLogger(t))
}

func join(s *Store, conn, user, game, roomID string) (JoinResult, error) {
	return s.Join(JoinRequest{ConnID: conn, Username: user, GameID: game, RoomID: roomID}, nil)
}

func TestParseGameType(t *testing.T) {
	for _, gt := range GameTypes() {
		got, err := ParseGameType(gt.String())
		require.NoError(t, err)
		assert.Equal(t, gt, got)
	}
	_, err := ParseGameType("chess")
	assert.ErrorIs(t, err, ErrUnknownGameType)
}

func TestJoin_CreatesRoomAndStartsOnSecond(t *testing.T) {
	s := newTestStore(t, "c1", "c2")

	res, err := join(s, "c1", "Ana", "tic-tac-toe", "t1")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.Started)

	info, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, info.Members)
	assert.False(t, info.Started)

	res, err = join(s, "c2", "Bea", "tic-tac-toe", "t1")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Started)

	info, _ = s.Get("t1")
	assert.Equal(t, []string{"c1", "c2"}, info.Members)
	assert.Equal(t, map[string]string{"c1": "Ana", "c2": "Bea"}, info.Usernames)
	assert.True(t, info.Started)

	require.NoError(t, s.WithRoom("t1", func(r *Room) error {
		g, ok := r.Game().(*grid.Game)
		require.True(t, ok)
		assert.Equal(t, "c1", g.Snapshot().Turn)
		assert.Equal(t, "c2", r.Other("c1"))
		assert.Equal(t, []string{"Ana", "Bea"}, r.UsernameList())
		return nil
	}))

	_, roomID, _ := s.Registry().Lookup("c2")
	assert.Equal(t, "t1", roomID)
}

func TestJoin_GameVariantPerType(t *testing.T) {
	cases := map[GameType]func(Game) bool{
		TicTacToe:         func(g Game) bool { _, ok := g.(*grid.Game); return ok },
		RockPaperScissors: func(g Game) bool { _, ok := g.(*choice.Game); return ok },
		Hangman:           func(g Game) bool { _, ok := g.(*wordguess.Game); return ok },
	}
	for gt, check := range cases {
		s := newTestStore(t, "c1", "c2")
		_, err := join(s, "c1", "Ana", gt.String(), "")
		require.NoError(t, err)
		_, err = join(s, "c2", "Bea", gt.String(), "")
		require.NoError(t, err)
		require.NoError(t, s.WithRoom(gt.String(), func(r *Room) error {
			assert.True(t, check(r.Game()), "game type %s", gt)
			return nil
		}))
	}
}

func TestJoin_DefaultsRoomIDToGameTag(t *testing.T) {
	s := newTestStore(t, "c1")
	_, err := join(s, "c1", "Ana", "hangman", "  ")
	require.NoError(t, err)
	info, ok := s.Get("hangman")
	require.True(t, ok)
	assert.Equal(t, Hangman, info.GameType)
}

func TestJoin_Rejections(t *testing.T) {
	s := newTestStore(t, "c1", "c2", "c3")

	_, err := join(s, "c1", "  ", "tic-tac-toe", "t1")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = join(s, "c1", "Ana", "chess", "t1")
	assert.ErrorIs(t, err, ErrUnknownGameType)

	_, err = join(s, "ghost", "Gus", "tic-tac-toe", "t1")
	assert.ErrorIs(t, err, session.ErrNotConnected)
	assert.Equal(t, 0, s.Stats().Rooms)

	_, err = join(s, "c1", "Ana", "tic-tac-toe", "t1")
	require.NoError(t, err)

	_, err = join(s, "c1", "Ana", "tic-tac-toe", "t1")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = join(s, "c1", "Ana", "hangman", "h1")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	_, err = join(s, "c2", "Bea", "hangman", "t1")
	assert.ErrorIs(t, err, ErrGameTypeMismatch)

	_, err = join(s, "c2", "Bea", "tic-tac-toe", "t1")
	require.NoError(t, err)

	_, err = join(s, "c3", "Cid", "tic-tac-toe", "t1")
	assert.ErrorIs(t, err, ErrRoomFull)

	info, _ := s.Get("t1")
	assert.Equal(t, []string{"c1", "c2"}, info.Members, "rejected join keeps order")
	_, roomID, _ := s.Registry().Lookup("c3")
	assert.Empty(t, roomID)
}

func TestJoin_NotifyRunsUnderRoomLock(t *testing.T) {
	s := newTestStore(t, "c1", "c2")
	_, err := join(s, "c1", "Ana", "rock-paper-scissors", "r1")
	require.NoError(t, err)

	var seen JoinResult
	_, err = s.Join(JoinRequest{ConnID: "c2", Username: "Bea", GameID: "rock-paper-scissors", RoomID: "r1"}, func(res JoinResult) {
		seen = res
		assert.False(t, res.Room.mu.TryLock(), "room must be locked during notify")
		assert.Equal(t, []string{"c1", "c2"}, res.Room.Members())
		assert.NotNil(t, res.Room.Game())
	})
	require.NoError(t, err)
	assert.True(t, seen.Started)
	assert.Equal(t, "Bea", seen.Username)
}

func TestJoin_NotifyNotCalledOnError(t *testing.T) {
	s := newTestStore(t, "c1")
	called := false
	_, err := s.Join(JoinRequest{ConnID: "c1", GameID: "hangman"}, func(JoinResult) { called = true })
	assert.Error(t, err)
	assert.False(t, called)
}

func TestLeave_LastMemberClosesRoom(t *testing.T) {
	s := newTestStore(t, "c1")
	_, err := join(s, "c1", "Ana", "hangman", "h1")
	require.NoError(t, err)

	out, err := s.Leave("c1", nil)
	require.NoError(t, err)
	assert.Equal(t, RoomClosed, out.Kind)
	assert.Equal(t, "h1", out.RoomID)
	assert.Equal(t, "Ana", out.Username)
	assert.Empty(t, out.Remaining)

	_, ok := s.Get("h1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().Rooms)
}

func TestLeave_MidGameAbortsRoom(t *testing.T) {
	s := newTestStore(t, "c1", "c2")
	_, _ = join(s, "c1", "Ana", "tic-tac-toe", "t1")
	_, _ = join(s, "c2", "Bea", "tic-tac-toe", "t1")

	var notified LeaveOutcome
	out, err := s.Leave("c1", func(o LeaveOutcome) {
		notified = o
		// The room is still reachable while the remaining member is told.
		assert.Equal(t, []string{"c2"}, s.Registry().ConnIDsInRoom("t1"))
	})
	require.NoError(t, err)
	assert.Equal(t, GameAbortedOpponentLeft, out.Kind)
	assert.Equal(t, "c2", out.Remaining)
	assert.Equal(t, out, notified)

	_, ok := s.Get("t1")
	assert.False(t, ok)
	for _, id := range []string{"c1", "c2"} {
		_, roomID, ok := s.Registry().Lookup(id)
		require.True(t, ok)
		assert.Empty(t, roomID, "%s must be unseated", id)
	}

	_, err = s.Leave("c2", nil)
	assert.ErrorIs(t, err, ErrNotInRoom)

	// Both can start over in a fresh room with the same id.
	_, err = join(s, "c2", "Bea", "tic-tac-toe", "t1")
	require.NoError(t, err)
	info, _ := s.Get("t1")
	assert.Equal(t, []string{"c2"}, info.Members)
}

func TestLeave_NotInRoom(t *testing.T) {
	s := newTestStore(t, "c1")
	_, err := s.Leave("c1", nil)
	assert.ErrorIs(t, err, ErrNotInRoom)
	_, err = s.Leave("ghost", nil)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestJoin_RejoinKeepsFirstUsername(t *testing.T) {
	s := newTestStore(t, "c1", "c2")
	_, err := join(s, "c1", "Ana", "tic-tac-toe", "r1")
	require.NoError(t, err)
	_, err = s.Leave("c1", nil)
	require.NoError(t, err)

	res, err := join(s, "c1", "Zed", "tic-tac-toe", "r2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.Username)

	_, err = join(s, "c2", "Bea", "tic-tac-toe", "r2")
	require.NoError(t, err)

	name, _, ok := s.Registry().Lookup("c1")
	require.True(t, ok)
	info, ok := s.Get("r2")
	require.True(t, ok)
	assert.Equal(t, name, info.Usernames["c1"])
	assert.Equal(t, map[string]string{"c1": "Ana", "c2": "Bea"}, info.Usernames)
}

func TestJoin_ClosingConnectionRejected(t *testing.T) {
	s := newTestStore(t, "c1", "c2")
	_, err := join(s, "c2", "Bea", "hangman", "h1")
	require.NoError(t, err)

	require.True(t, s.Registry().BeginClose("c1"))
	_, err = join(s, "c1", "Ana", "hangman", "fresh")
	assert.ErrorIs(t, err, session.ErrNotConnected)
	_, ok := s.Get("fresh")
	assert.False(t, ok, "a room created for the failed join must not survive")

	_, err = join(s, "c1", "Ana", "hangman", "h1")
	assert.ErrorIs(t, err, session.ErrNotConnected)
	info, ok := s.Get("h1")
	require.True(t, ok)
	assert.Equal(t, []string{"c2"}, info.Members)
	assert.False(t, info.Started)
}

func TestWithRoom_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.WithRoom("nope", func(*Room) error { return nil })
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStats(t *testing.T) {
	s := newTestStore(t, "c1", "c2", "c3")
	_, _ = join(s, "c1", "Ana", "hangman", "a")
	_, _ = join(s, "c2", "Bea", "hangman", "b")
	assert.Equal(t, Stats{Rooms: 2, Connections: 3}, s.Stats())
}

func TestLeaveKindString(t *testing.T) {
	assert.Equal(t, "room_closed", RoomClosed.String())
	assert.Equal(t, "game_aborted_opponent_left", GameAbortedOpponentLeft.String())
}

func TestConcurrentJoinNeverOverfills(t *testing.T) {
	const n = 20
	conns := make([]string, n)
	for i := range conns {
		conns[i] = fmt.Sprintf("c%d", i)
	}
	s := newTestStore(t, conns...)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	wg.Add(n)
	for _, id := range conns {
		go func(id string) {
			defer wg.Done()
			if _, err := join(s, id, "P"+id, "rock-paper-scissors", "lobby"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrRoomFull)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, MaxMembers, accepted)
	info, ok := s.Get("lobby")
	require.True(t, ok)
	assert.Len(t, info.Members, MaxMembers)
	assert.True(t, info.Started)
}

func TestConcurrentJoinLeaveAcrossRooms(t *testing.T) {
	const n = 40
	conns := make([]string, n)
	for i := range conns {
		conns[i] = fmt.Sprintf("c%d", i)
	}
	s := newTestStore(t, conns...)

	var wg sync.WaitGroup
	wg.Add(n)
	for i, id := range conns {
		go func(i int, id string) {
			defer wg.Done()
			roomID := fmt.Sprintf("room%d", i%4)
			for k := 0; k < 10; k++ {
				_, _ = join(s, id, "P", "tic-tac-toe", roomID)
				_, _ = s.Leave(id, nil)
			}
		}(i, id)
	}
	wg.Wait()

	assert.Equal(t, 0, s.Stats().Rooms)
	for _, id := range conns {
		_, roomID, _ := s.Registry().Lookup(id)
		assert.Empty(t, roomID)
	}
}

// Random join/leave sequences keep every room at or under capacity, keep
// join order stable, and keep the registry in agreement with the store.
func TestPropertyMembershipBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "conns")
		conns := make([]string, n)
		for i := range conns {
			conns[i] = fmt.Sprintf("c%d", i)
		}
		s := newTestStore(t, conns...)
		rooms := []string{"r1", "r2"}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(conns).Draw(t, "conn")
			roomID := rapid.SampledFrom(rooms).Draw(t, "room")
			if rapid.Bool().Draw(t, "join") {
				before, existed := s.Get(roomID)
				_, err := join(s, id, "P"+id, "tic-tac-toe", roomID)
				after, _ := s.Get(roomID)
				if err != nil && existed {
					if fmt.Sprint(before.Members) != fmt.Sprint(after.Members) {
						t.Fatalf("rejected join changed members %v -> %v", before.Members, after.Members)
					}
				}
			} else {
				_, _ = s.Leave(id, nil)
			}

			for _, r := range rooms {
				info, ok := s.Get(r)
				if !ok {
					if got := s.Registry().ConnIDsInRoom(r); len(got) != 0 {
						t.Fatalf("registry seats %v in missing room %s", got, r)
					}
					continue
				}
				if len(info.Members) == 0 || len(info.Members) > MaxMembers {
					t.Fatalf("room %s has %d members", r, len(info.Members))
				}
				if info.Started != (len(info.Members) == MaxMembers) {
					t.Fatalf("room %s started=%v with %d members", r, info.Started, len(info.Members))
				}
				got := s.Registry().ConnIDsInRoom(r)
				if len(got) != len(info.Members) {
					t.Fatalf("registry %v disagrees with members %v", got, info.Members)
				}
			}
		}
	})
}
