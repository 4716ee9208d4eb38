package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/MaLoskins/SpectrumGame/internal/metrics"
)

// RoomStore owns every live room and the player -> room reverse index.
// All methods run on the router loop; nothing here locks.
type RoomStore struct {
	cfg    Config
	ids    IDGenerator
	codes  *CodeGenerator
	log    zerolog.Logger
	rooms  map[string]*Room
	byCode map[string]*Room
	// players maps player id -> room id so leave/disconnect never scans.
	players map[string]string
	now     func() time.Time
}

func NewRoomStore(cfg Config, ids IDGenerator, codes *CodeGenerator, log zerolog.Logger) *RoomStore {
	return &RoomStore{
		cfg:     cfg,
		ids:     ids,
		codes:   codes,
		log:     log,
		rooms:   make(map[string]*Room),
		byCode:  make(map[string]*Room),
		players: make(map[string]string),
		now:     time.Now,
	}
}

// LeaveOutcome tells the caller what a departure changed so it can emit
// the right broadcasts.
type LeaveOutcome struct {
	Left         *Player
	In           *Room
	NewHostID    string
	RoomDeleted  bool
	WasClueGiver bool
}

// CreateRoom allocates a room with the caller as host. Name and
// settings arrive already validated.
func (s *RoomStore) CreateRoom(hostName string, settings RoomSettings) (*Room, *Player, error) {
	hostID := s.ids.Generate()
	if _, exists := s.players[hostID]; exists {
		return nil, nil, ErrAlreadyInRoom
	}

	code, err := s.codes.Generate(func(c string) bool {
		_, taken := s.byCode[c]
		return taken
	})
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	host := &Player{ID: hostID, Name: hostName, Connected: true, JoinedAt: now}
	room := &Room{
		id:         s.ids.Generate(),
		code:       code,
		hostID:     hostID,
		phase:      PhaseLobby,
		settings:   settings,
		createdAt:  now,
		lastActive: now,
	}
	room.addPlayer(host)

	s.rooms[room.id] = room
	s.byCode[room.code] = room
	s.players[hostID] = room.id
	metrics.ActiveRooms.Inc()

	s.log.Info().Str("room", room.id).Str("code", room.code).Str("host", hostID).Msg("room created")
	return room, host, nil
}

// JoinRoom adds a named player to the room with the given code. Players
// may enter in the lobby or between rounds, never while a round is live
// or after the game finished.
func (s *RoomStore) JoinRoom(code, playerName string) (*Room, *Player, error) {
	room, ok := s.byCode[code]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	if !room.phase.joinable() {
		return nil, nil, ErrGameInProgress
	}
	if len(room.players) >= s.cfg.MaxPlayers {
		return nil, nil, ErrRoomFull
	}
	if room.hasName(playerName) {
		return nil, nil, ErrDuplicateName
	}

	id := s.ids.Generate()
	if _, exists := s.players[id]; exists {
		return nil, nil, ErrAlreadyInRoom
	}

	p := &Player{ID: id, Name: playerName, Connected: true, JoinedAt: s.now()}
	room.addPlayer(p)
	s.players[id] = room.id
	s.Touch(room)

	s.log.Info().Str("room", room.id).Str("player", id).Msg("player joined")
	return room, p, nil
}

// Leave removes the player from their room, reassigning the host to the
// earliest-joined survivor and deleting the room when it empties.
func (s *RoomStore) Leave(playerID string) (*LeaveOutcome, error) {
	roomID, ok := s.players[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	room := s.rooms[roomID]

	p, _ := room.removePlayer(playerID)
	delete(s.players, playerID)

	out := &LeaveOutcome{
		Left:         p,
		In:           room,
		WasClueGiver: room.phase.roundActive() && room.round.clueGiverID == playerID,
	}

	if len(room.players) == 0 {
		s.removeRoom(room, "emptied")
		out.RoomDeleted = true
		return out, nil
	}

	if room.hostID == playerID {
		room.hostID = room.players[0].ID
		out.NewHostID = room.hostID
		s.log.Info().Str("room", room.id).Str("host", room.hostID).Msg("host reassigned")
	}
	s.Touch(room)
	return out, nil
}

// UpdatePlayerConnection marks presence without removing the player: a
// disconnected member keeps their seat, name, and score under the same
// id.
func (s *RoomStore) UpdatePlayerConnection(playerID string, connected bool) (*Room, *Player, bool) {
	room, p, ok := s.RoomByPlayer(playerID)
	if !ok {
		return nil, nil, false
	}
	p.Connected = connected
	s.Touch(room)
	s.log.Info().Str("room", room.id).Str("player", playerID).Bool("connected", connected).Msg("presence changed")
	return room, p, true
}

// RoomByPlayer resolves the caller's room through the reverse index.
func (s *RoomStore) RoomByPlayer(playerID string) (*Room, *Player, bool) {
	roomID, ok := s.players[playerID]
	if !ok {
		return nil, nil, false
	}
	room := s.rooms[roomID]
	p, ok := room.player(playerID)
	return room, p, ok
}

func (s *RoomStore) RoomByID(id string) (*Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

// Touch marks the room active, deferring the idle sweep.
func (s *RoomStore) Touch(room *Room) {
	room.lastActive = s.now()
}

// Sweep deletes rooms idle past the TTL and returns them so the caller
// can drop their sessions.
func (s *RoomStore) Sweep(now time.Time) []*Room {
	var swept []*Room
	for _, room := range s.rooms {
		if now.Sub(room.lastActive) > s.cfg.RoomIdleTTL {
			swept = append(swept, room)
		}
	}
	for _, room := range swept {
		for _, p := range room.players {
			delete(s.players, p.ID)
		}
		s.removeRoom(room, "idle")
		metrics.RoomsSwept.Inc()
	}
	return swept
}

func (s *RoomStore) Count() int { return len(s.rooms) }

// removeRoom is the single deletion path: timers die with the room.
func (s *RoomStore) removeRoom(room *Room, reason string) {
	room.timers.cancelAll()
	delete(s.rooms, room.id)
	delete(s.byCode, room.code)
	metrics.ActiveRooms.Dec()
	s.log.Info().Str("room", room.id).Str("reason", reason).Msg("room destroyed")
}
