package game

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/MaLoskins/SpectrumGame/internal/metrics"
)

// autoCluePlaceholder is submitted on the clue-giver's behalf when the
// countdown nears zero with no clue, so a round can never stall.
const autoCluePlaceholder = "(no clue)"

// Broadcaster is the outbound capability handed to the engine. The
// SessionRouter implements it over live sessions; tests record it.
type Broadcaster interface {
	ToPlayer(playerID string, evt Event)
	ToRoom(room *Room, evt Event)
	ToRoomExcept(room *Room, exceptID string, evt Event)
	ToRoomEach(room *Room, build func(playerID string) Event)
}

// RoundEngine drives the round state machine. Every method must be
// called from the router loop; timers re-enter through the Scheduler.
type RoundEngine struct {
	cfg     Config
	b       Broadcaster
	sched   Scheduler
	rng     *rand.Rand
	catalog []Spectrum
	log     zerolog.Logger
}

func NewRoundEngine(cfg Config, b Broadcaster, sched Scheduler, rng *rand.Rand, log zerolog.Logger) *RoundEngine {
	return &RoundEngine{
		cfg:     cfg,
		b:       b,
		sched:   sched,
		rng:     rng,
		catalog: DefaultSpectrums(),
		log:     log,
	}
}

// StartGame begins the first round from the lobby, or lets the host
// skip the remaining inter-round wait.
func (e *RoundEngine) StartGame(room *Room, callerID string) error {
	if callerID != room.hostID {
		return ErrNotHost
	}
	switch room.phase {
	case PhaseLobby:
		if len(room.players) < e.cfg.MinPlayers {
			return ErrNotEnoughPlayers.WithDetails(map[string]any{"min": e.cfg.MinPlayers})
		}
		room.startedAt = time.Now()
		e.log.Info().Str("room", room.id).Int("players", len(room.players)).Msg("game started")
		e.startRound(room)
		return nil
	case PhaseWaiting:
		e.startRound(room)
		return nil
	default:
		return ErrWrongPhase
	}
}

// SubmitClue accepts the clue-giver's clue and opens guessing.
func (e *RoundEngine) SubmitClue(room *Room, callerID, clue string) error {
	if room.phase != PhaseGivingClue {
		return ErrWrongPhase
	}
	if callerID != room.round.clueGiverID {
		return ErrNotClueGiver
	}
	e.applyClue(room, clue, false)
	return nil
}

// SubmitGuess records a guesser's single guess. The first submission
// wins; the countdown keeps running until everyone is in.
func (e *RoundEngine) SubmitGuess(room *Room, callerID string, c Coordinate) error {
	if room.phase != PhaseGuessing {
		return ErrWrongPhase
	}
	if callerID == room.round.clueGiverID {
		return ErrClueGiverCannotGuess
	}
	if _, dup := room.round.guesses[callerID]; dup {
		return ErrAlreadyGuessed
	}

	room.round.guesses[callerID] = c
	room.round.guessOrder = append(room.round.guessOrder, callerID)

	e.b.ToRoom(room, Event{Type: EventGuessSubmitted, Data: GuessSubmittedPayload{
		PlayerID:      callerID,
		GuessedCount:  len(room.round.guessOrder),
		TotalGuessers: len(room.guessers()),
	}})

	if room.allGuessed() {
		e.scheduleGraceEnd(room)
	}
	return nil
}

// HandleDeparture applies round-side effects after the store removed a
// player. The clue-giver leaving kills the round on the spot; a guesser
// leaving may complete the round.
func (e *RoundEngine) HandleDeparture(room *Room, out *LeaveOutcome) {
	if !room.phase.roundActive() {
		return
	}
	if out.WasClueGiver || len(room.guessers()) == 0 {
		e.endRound(room)
		return
	}
	if room.phase == PhaseGuessing && room.allGuessed() {
		e.scheduleGraceEnd(room)
	}
}

// startRound transitions into giving-clue. It is reached from StartGame,
// the next-round timer, and host fast-forwarding out of waiting.
func (e *RoundEngine) startRound(room *Room) {
	room.timers.cancelAll()

	if len(room.players) < e.cfg.MinPlayers {
		e.endGame(room)
		return
	}

	giver := room.nextClueGiver()
	if room.lastGiver == "" {
		giver = room.players[e.rng.Intn(len(room.players))].ID
	}
	room.lastGiver = giver

	pair, used := pickAxisPair(e.rng, e.catalog, room.usedAxes)
	room.usedAxes = used

	room.round = roundState{
		number:      room.round.number + 1,
		clueGiverID: giver,
		axes:        pair,
		target:      e.randomTarget(),
		guesses:     make(map[string]Coordinate),
		timeLeft:    room.settings.RoundSeconds,
		timerOn:     true,
	}
	room.phase = PhaseGivingClue

	e.log.Info().
		Str("room", room.id).
		Int("round", room.round.number).
		Str("clueGiver", giver).
		Msg("round started")

	e.announcePhase(room)
	e.b.ToRoomEach(room, func(playerID string) Event {
		return Event{Type: EventRoundStart, Data: roundStartPayload(room, playerID)}
	})
	e.armTick(room)
}

func (e *RoundEngine) applyClue(room *Room, clue string, auto bool) {
	room.round.clue = clue
	room.round.clueAuto = auto
	room.phase = PhaseGuessing

	e.log.Debug().Str("room", room.id).Bool("auto", auto).Msg("clue submitted")
	e.announcePhase(room)
	e.b.ToRoom(room, Event{Type: EventClueSubmitted, Data: ClueSubmittedPayload{Clue: clue}})
}

// armTick schedules the next one-second countdown step. The round
// number is captured so a stale tick that raced a transition is a
// no-op.
func (e *RoundEngine) armTick(room *Room) {
	n := room.round.number
	room.timers.round = e.sched.AfterFunc(time.Second, func() { e.tick(room, n) })
}

func (e *RoundEngine) tick(room *Room, round int) {
	if room.round.number != round || !room.round.timerOn || !room.phase.roundActive() {
		return
	}

	room.round.timeLeft--

	if room.phase == PhaseGivingClue && room.round.clue == "" && room.round.timeLeft <= e.cfg.AutoClueSeconds {
		e.applyClue(room, autoCluePlaceholder, true)
	}

	e.b.ToRoom(room, Event{Type: EventTimerUpdate, Data: TimerUpdatePayload{
		TimeRemaining: room.round.timeLeft,
		Phase:         room.phase,
	}})

	if room.round.timeLeft <= 0 {
		e.endRound(room)
		return
	}
	e.armTick(room)
}

// scheduleGraceEnd arms the short pause between the last guess and the
// reveal.
func (e *RoundEngine) scheduleGraceEnd(room *Room) {
	n := room.round.number
	room.timers.transition = e.sched.AfterFunc(e.cfg.GuessGrace, func() {
		if room.round.number == n && room.phase == PhaseGuessing {
			e.endRound(room)
		}
	})
}

// endRound resolves the live round. Multiple triggers can race onto the
// loop (timer expiry, final guess, clue-giver departure); every extra
// call lands on the idempotence guard.
func (e *RoundEngine) endRound(room *Room) {
	if !room.phase.roundActive() {
		return
	}
	room.timers.cancelAll()
	room.round.timerOn = false

	scores, bonus := ScoreRound(
		room.round.target,
		room.round.guesses,
		room.round.clueGiverID,
		e.cfg.BonusThreshold,
		e.cfg.BonusPoints,
	)
	for _, p := range room.players {
		p.Score += scores[p.ID]
	}
	room.phase = PhaseResults

	e.log.Info().
		Str("room", room.id).
		Int("round", room.round.number).
		Int("guesses", len(room.round.guesses)).
		Bool("bonus", bonus).
		Msg("round ended")

	guesses := make([]GuessView, 0, len(room.round.guessOrder))
	var best *BestGuessView
	for _, id := range room.round.guessOrder {
		c := room.round.guesses[id]
		guesses = append(guesses, GuessView{PlayerID: id, Coordinate: c})
		if best == nil || scores[id] > best.Score {
			best = &BestGuessView{PlayerID: id, Coordinate: c, Score: scores[id]}
		}
	}
	totals := make(map[string]int, len(room.players))
	for _, p := range room.players {
		totals[p.ID] = p.Score
	}

	e.announcePhase(room)
	e.b.ToRoom(room, Event{Type: EventRoundEnd, Data: RoundEndPayload{
		RoundNumber:      room.round.number,
		TargetCoordinate: room.round.target,
		Guesses:          guesses,
		RoundScores:      scores,
		TotalScores:      totals,
		BonusAwarded:     bonus,
		BestGuess:        best,
	}})

	n := room.round.number
	if n >= room.settings.Rounds {
		room.timers.transition = e.sched.AfterFunc(e.cfg.ResultsDelay, func() {
			if room.phase == PhaseResults && room.round.number == n {
				e.endGame(room)
			}
		})
		return
	}
	room.timers.transition = e.sched.AfterFunc(e.cfg.ResultsDelay, func() {
		e.toWaiting(room, n)
	})
}

// toWaiting opens the short buffer between rounds and arms the next
// round start.
func (e *RoundEngine) toWaiting(room *Room, round int) {
	if room.phase != PhaseResults || room.round.number != round {
		return
	}
	room.phase = PhaseWaiting
	e.announcePhase(room)

	room.timers.nextRound = e.sched.AfterFunc(e.cfg.InterRoundDelay, func() {
		if room.phase == PhaseWaiting {
			e.startRound(room)
		}
	})
}

// endGame finishes the game and announces the winner. The room itself
// survives until everyone leaves or the idle sweep takes it.
func (e *RoundEngine) endGame(room *Room) {
	if room.phase == PhaseFinished {
		return
	}
	room.timers.cancelAll()
	room.round.timerOn = false
	room.phase = PhaseFinished

	finals := make(map[string]int, len(room.players))
	var winner *Player
	for _, p := range room.players {
		finals[p.ID] = p.Score
		if winner == nil || p.Score > winner.Score {
			winner = p
		}
	}
	winnerID := ""
	if winner != nil {
		winnerID = winner.ID
	}

	stats := GameStats{
		RoundsPlayed:  room.round.number,
		AxisPairsUsed: len(room.usedAxes) / 2,
	}
	if !room.startedAt.IsZero() {
		stats.DurationSeconds = int(time.Since(room.startedAt).Seconds())
	}

	e.log.Info().
		Str("room", room.id).
		Str("winner", winnerID).
		Int("rounds", stats.RoundsPlayed).
		Msg("game finished")

	e.announcePhase(room)
	e.b.ToRoom(room, Event{Type: EventGameFinished, Data: GameFinishedPayload{
		FinalScores: finals,
		WinnerID:    winnerID,
		Stats:       stats,
	}})
	metrics.GamesCompleted.Inc()
}

func (e *RoundEngine) announcePhase(room *Room) {
	e.b.ToRoom(room, Event{Type: EventPhaseChange, Data: PhaseChangePayload{Phase: room.phase}})
}

func (e *RoundEngine) randomTarget() Coordinate {
	m := e.cfg.TargetMargin
	span := coordinateMax - 2*m
	return Coordinate{
		X: m + e.rng.Float64()*span,
		Y: m + e.rng.Float64()*span,
	}
}
