package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(cfg Config) *RoomStore {
	rng := rand.New(rand.NewSource(42))
	codes := NewCodeGenerator(DefaultCodeAlphabet, CodeLength, rng)
	return NewRoomStore(cfg, &seqIDGenerator{}, codes, zerolog.Nop())
}

func testSettings() RoomSettings {
	return RoomSettings{Rounds: 10, RoundSeconds: 60}
}

func TestCreateRoom(t *testing.T) {
	s := newTestStore(DefaultConfig())

	room, host, err := s.CreateRoom("Ada", testSettings())
	require.NoError(t, err)

	assert.Len(t, room.Code(), CodeLength)
	assert.Equal(t, PhaseLobby, room.Phase())
	assert.Equal(t, host.ID, room.HostID())
	assert.True(t, host.Connected)
	assert.Equal(t, 1, s.Count())

	got, gotPlayer, ok := s.RoomByPlayer(host.ID)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Same(t, host, gotPlayer)
}

func TestCreateRoomRejectsDuplicatePlayerID(t *testing.T) {
	gen := new(MockIDGenerator)
	gen.On("Generate").Return("same-id")

	rng := rand.New(rand.NewSource(42))
	s := NewRoomStore(DefaultConfig(), gen, NewCodeGenerator(DefaultCodeAlphabet, CodeLength, rng), zerolog.Nop())

	_, _, err := s.CreateRoom("Ada", testSettings())
	require.NoError(t, err)

	_, _, err = s.CreateRoom("Bo", testSettings())
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestJoinRoom(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, _, err := s.CreateRoom("Ada", testSettings())
	require.NoError(t, err)

	joined, p, err := s.JoinRoom(room.Code(), "Bo")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Len(t, room.Players(), 2)
	assert.Equal(t, "Bo", p.Name)

	_, _, ok := s.RoomByPlayer(p.ID)
	assert.True(t, ok)
}

func TestJoinRoomBetweenRounds(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, _, _ := s.CreateRoom("Ada", testSettings())
	room.phase = PhaseWaiting

	_, p, err := s.JoinRoom(room.Code(), "Bo")
	require.NoError(t, err)
	assert.Len(t, room.Players(), 2)

	_, _, ok := s.RoomByPlayer(p.ID)
	assert.True(t, ok)
}

func TestJoinRoomRejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 2

	t.Run("unknown code", func(t *testing.T) {
		s := newTestStore(cfg)
		_, _, err := s.JoinRoom("ZZZZZZ", "Bo")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("full room", func(t *testing.T) {
		s := newTestStore(cfg)
		room, _, _ := s.CreateRoom("Ada", testSettings())
		_, _, err := s.JoinRoom(room.Code(), "Bo")
		require.NoError(t, err)

		_, _, err = s.JoinRoom(room.Code(), "Cy")
		assert.ErrorIs(t, err, ErrRoomFull)
	})

	t.Run("game in progress", func(t *testing.T) {
		s := newTestStore(DefaultConfig())
		room, _, _ := s.CreateRoom("Ada", testSettings())
		room.phase = PhaseGivingClue

		_, _, err := s.JoinRoom(room.Code(), "Bo")
		assert.ErrorIs(t, err, ErrGameInProgress)
	})

	t.Run("finished game", func(t *testing.T) {
		s := newTestStore(DefaultConfig())
		room, _, _ := s.CreateRoom("Ada", testSettings())
		room.phase = PhaseFinished

		_, _, err := s.JoinRoom(room.Code(), "Bo")
		assert.ErrorIs(t, err, ErrGameInProgress)
	})

	t.Run("duplicate name case-insensitive", func(t *testing.T) {
		s := newTestStore(DefaultConfig())
		room, _, _ := s.CreateRoom("Ada", testSettings())

		_, _, err := s.JoinRoom(room.Code(), "ADA")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestLeaveReassignsHostToEarliestJoined(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, host, _ := s.CreateRoom("Ada", testSettings())
	_, second, _ := s.JoinRoom(room.Code(), "Bo")
	_, _, err := s.JoinRoom(room.Code(), "Cy")
	require.NoError(t, err)

	out, err := s.Leave(host.ID)
	require.NoError(t, err)

	assert.Equal(t, second.ID, out.NewHostID)
	assert.Equal(t, second.ID, room.HostID())
	assert.False(t, out.RoomDeleted)
	assert.Len(t, room.Players(), 2)

	_, _, ok := s.RoomByPlayer(host.ID)
	assert.False(t, ok, "reverse index entry must be removed")
}

func TestLeaveNonHostKeepsHost(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, host, _ := s.CreateRoom("Ada", testSettings())
	_, second, _ := s.JoinRoom(room.Code(), "Bo")

	out, err := s.Leave(second.ID)
	require.NoError(t, err)

	assert.Empty(t, out.NewHostID)
	assert.Equal(t, host.ID, room.HostID())
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, host, _ := s.CreateRoom("Ada", testSettings())
	code := room.Code()

	out, err := s.Leave(host.ID)
	require.NoError(t, err)

	assert.True(t, out.RoomDeleted)
	assert.Equal(t, 0, s.Count())

	_, _, err = s.JoinRoom(code, "Bo")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveFlagsClueGiverDeparture(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, host, _ := s.CreateRoom("Ada", testSettings())
	_, _, err := s.JoinRoom(room.Code(), "Bo")
	require.NoError(t, err)

	room.phase = PhaseGuessing
	room.round.clueGiverID = host.ID

	out, err := s.Leave(host.ID)
	require.NoError(t, err)
	assert.True(t, out.WasClueGiver)
}

func TestLeaveUnknownPlayer(t *testing.T) {
	s := newTestStore(DefaultConfig())
	_, err := s.Leave("ghost")
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestUpdatePlayerConnectionKeepsMembership(t *testing.T) {
	s := newTestStore(DefaultConfig())
	room, host, _ := s.CreateRoom("Ada", testSettings())
	host.Score = 42

	got, p, ok := s.UpdatePlayerConnection(host.ID, false)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.False(t, p.Connected)
	assert.Equal(t, 42, p.Score, "score survives transport loss")
	assert.Len(t, room.Players(), 1)
	assert.Equal(t, host.ID, room.HostID())

	_, back, ok := s.UpdatePlayerConnection(host.ID, true)
	require.True(t, ok)
	assert.True(t, back.Connected)

	_, _, ok = s.UpdatePlayerConnection("ghost", false)
	assert.False(t, ok)
}

func TestSweepRemovesIdleRooms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoomIdleTTL = 10 * time.Minute
	s := newTestStore(cfg)

	idle, idleHost, _ := s.CreateRoom("Ada", testSettings())
	fresh, _, _ := s.CreateRoom("Bo", testSettings())

	idle.lastActive = time.Now().Add(-time.Hour)

	swept := s.Sweep(time.Now())

	require.Len(t, swept, 1)
	assert.Same(t, idle, swept[0])
	assert.Equal(t, 1, s.Count())

	_, ok := s.RoomByID(fresh.ID())
	assert.True(t, ok)

	_, _, ok = s.RoomByPlayer(idleHost.ID)
	assert.False(t, ok, "swept room members must leave the reverse index")
}
