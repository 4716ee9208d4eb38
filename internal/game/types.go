package game

import (
	"sort"
	"strings"
	"time"
)

// Coordinate is a point in the shared 0..100 guessing space.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Axis is one spectrum with two labeled extremes.
type Axis struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// AxisPair is the two perpendicular spectrums a round is played on.
type AxisPair struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// RoomSettings are the per-room knobs the creator may narrow within the
// validated bounds.
type RoomSettings struct {
	Rounds       int `json:"rounds"`
	RoundSeconds int `json:"roundSeconds"`
}

// Config carries the gameplay constants the engine runs on. cmd/server
// maps the process configuration onto it; tests build small ones inline.
type Config struct {
	MinPlayers    int
	MaxPlayers    int
	DefaultRounds int
	RoundSeconds  int

	BonusThreshold float64
	BonusPoints    int

	ResultsDelay    time.Duration
	InterRoundDelay time.Duration
	GuessGrace      time.Duration

	AutoClueSeconds int
	TargetMargin    float64

	RoomIdleTTL   time.Duration
	SweepInterval time.Duration
}

// DefaultConfig returns the stock ruleset.
func DefaultConfig() Config {
	return Config{
		MinPlayers:      2,
		MaxPlayers:      6,
		DefaultRounds:   10,
		RoundSeconds:    60,
		BonusThreshold:  15,
		BonusPoints:     25,
		ResultsDelay:    8 * time.Second,
		InterRoundDelay: 5 * time.Second,
		GuessGrace:      2 * time.Second,
		AutoClueSeconds: 10,
		TargetMargin:    10,
		RoomIdleTTL:     30 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

// Player is one member of a room. Fields are mutated on the router loop
// only.
type Player struct {
	ID        string
	Name      string
	Connected bool
	Ready     bool
	Score     int
	JoinedAt  time.Time
}

// roundState is the ephemeral per-round data. It is reset wholesale at
// every round start.
type roundState struct {
	number      int
	clueGiverID string
	axes        AxisPair
	target      Coordinate
	clue        string
	clueAuto    bool
	guesses     map[string]Coordinate
	guessOrder  []string
	timeLeft    int
	timerOn     bool
}

// Room is the authoritative state of one game. Only code running on the
// router loop may touch it.
type Room struct {
	id         string
	code       string
	hostID     string
	phase      Phase
	settings   RoomSettings
	players    []*Player // join order, drives host reassignment and tie-breaks
	round      roundState
	lastGiver  string   // rotation anchor, survives between rounds
	usedAxes   []string // spectrum ids in order of use
	startedAt  time.Time
	createdAt  time.Time
	lastActive time.Time
	timers     roomTimers
}

func (r *Room) ID() string             { return r.id }
func (r *Room) Code() string           { return r.code }
func (r *Room) Phase() Phase           { return r.phase }
func (r *Room) HostID() string         { return r.hostID }
func (r *Room) Settings() RoomSettings { return r.settings }

// Players returns the join-ordered member list. Callers must not mutate.
func (r *Room) Players() []*Player { return r.players }

func (r *Room) player(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) addPlayer(p *Player) {
	r.players = append(r.players, p)
}

// removePlayer drops the player and reports whether they were present.
func (r *Room) removePlayer(id string) (*Player, bool) {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

func (r *Room) hasName(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// guessers are the players expected to submit a guess this round.
func (r *Room) guessers() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.ID != r.round.clueGiverID {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) allGuessed() bool {
	gs := r.guessers()
	if len(gs) == 0 {
		return false
	}
	for _, p := range gs {
		if _, ok := r.round.guesses[p.ID]; !ok {
			return false
		}
	}
	return true
}

// nextClueGiver walks the sorted-id ring starting after the previous
// clue-giver. The anchor id may belong to a player who already left; the
// successor scan still works off it.
func (r *Room) nextClueGiver() string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	if r.lastGiver == "" {
		return ids[0]
	}
	for _, id := range ids {
		if id > r.lastGiver {
			return id
		}
	}
	return ids[0]
}
