package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/MaLoskins/SpectrumGame/internal/metrics"
)

// Conn is the transport handle the router talks through. Send must not
// block; a full buffer returns ErrSendBufferFull and the router drops
// the session.
type Conn interface {
	Send(data []byte) error
	Close(reason string)
}

// session is the loop-side state of one socket.
type session struct {
	conn     Conn
	playerID string
	name     string
	roomID   string
}

// knownInbound caps the metrics label space for event types.
var knownInbound = map[string]bool{
	EventRoomCreate:   true,
	EventRoomJoin:     true,
	EventPlayerLeave:  true,
	EventPlayerReady:  true,
	EventGameStart:    true,
	EventSubmitClue:   true,
	EventSubmitGuess:  true,
	EventRequestState: true,
	EventChatSend:     true,
}

// SessionRouter owns the single goroutine all room and round state is
// touched on. Transport goroutines and timer callbacks enter through
// post; everything downstream of Run is free of locks.
type SessionRouter struct {
	cfg      Config
	store    *RoomStore
	engine   *RoundEngine
	log      zerolog.Logger
	inbox    chan func()
	sessions map[Conn]*session
	byPlayer map[string]*session
}

// NewSessionRouter wires the router and its engine. A nil sched selects
// real timers delivered through the loop; tests pass a manual one.
func NewSessionRouter(cfg Config, store *RoomStore, sched Scheduler, rng *rand.Rand, log zerolog.Logger) *SessionRouter {
	r := &SessionRouter{
		cfg:      cfg,
		store:    store,
		log:      log,
		inbox:    make(chan func(), 256),
		sessions: make(map[Conn]*session),
		byPlayer: make(map[string]*session),
	}
	if sched == nil {
		sched = NewLoopScheduler(r.post)
	}
	r.engine = NewRoundEngine(cfg, r, sched, rng, log)
	return r
}

// Run consumes the loop until ctx is cancelled. The idle-room sweep
// shares the same goroutine.
func (r *SessionRouter) Run(ctx context.Context) {
	sweep := time.NewTicker(r.cfg.SweepInterval)
	defer sweep.Stop()
	for {
		select {
		case fn := <-r.inbox:
			fn()
		case now := <-sweep.C:
			r.sweep(now)
		case <-ctx.Done():
			r.log.Info().Msg("router stopped")
			return
		}
	}
}

func (r *SessionRouter) post(fn func()) {
	r.inbox <- fn
}

// Connect registers a fresh socket. No player is bound until it creates
// or joins a room.
func (r *SessionRouter) Connect(c Conn) {
	r.post(func() {
		r.sessions[c] = &session{conn: c}
		metrics.ConnectedSessions.Inc()
	})
}

// Receive hands one raw frame to the loop.
func (r *SessionRouter) Receive(c Conn, raw []byte) {
	r.post(func() { r.handleFrame(c, raw) })
}

// Disconnect marks the player disconnected and forgets the socket.
func (r *SessionRouter) Disconnect(c Conn) {
	r.post(func() { r.handleDisconnect(c) })
}

func (r *SessionRouter) handleFrame(c Conn, raw []byte) {
	sess, ok := r.sessions[c]
	if !ok {
		return
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.fail(sess, ErrMalformedEvent)
		return
	}

	label := env.Type
	if !knownInbound[label] {
		label = "unknown"
	}
	metrics.InboundEvents.WithLabelValues(label).Inc()

	if err := r.dispatch(sess, env); err != nil {
		r.fail(sess, err)
	}
}

func (r *SessionRouter) dispatch(sess *session, env Envelope) error {
	switch env.Type {
	case EventRoomCreate:
		return r.handleCreate(sess, env.Data)
	case EventRoomJoin:
		return r.handleJoin(sess, env.Data)
	case EventPlayerLeave:
		return r.handleLeave(sess)
	case EventPlayerReady:
		return r.handleReady(sess, env.Data)
	case EventGameStart:
		return r.handleStart(sess)
	case EventSubmitClue:
		return r.handleClue(sess, env.Data)
	case EventSubmitGuess:
		return r.handleGuess(sess, env.Data)
	case EventRequestState:
		return r.handleState(sess)
	case EventChatSend:
		return r.handleChat(sess, env.Data)
	default:
		return ErrUnknownEvent.WithDetails(map[string]any{"type": env.Type})
	}
}

func (r *SessionRouter) handleCreate(sess *session, data json.RawMessage) error {
	if sess.playerID != "" {
		return ErrAlreadyInRoom
	}
	var req CreateRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	name, err := ValidatePlayerName(req.PlayerName)
	if err != nil {
		return err
	}
	settings, err := ValidateSettings(req.Settings, r.cfg)
	if err != nil {
		return err
	}

	room, host, err := r.store.CreateRoom(name, settings)
	if err != nil {
		return err
	}
	r.bind(sess, host, room)

	r.ToPlayer(host.ID, Event{Type: EventRoomCreated, Data: RoomCreatedPayload{
		PlayerID: host.ID,
		Room:     BuildRoomView(room, host.ID),
	}})
	return nil
}

func (r *SessionRouter) handleJoin(sess *session, data json.RawMessage) error {
	if sess.playerID != "" {
		return ErrAlreadyInRoom
	}
	var req JoinRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	name, err := ValidatePlayerName(req.PlayerName)
	if err != nil {
		return err
	}
	code, err := ValidateRoomCode(req.RoomCode)
	if err != nil {
		return err
	}

	room, p, err := r.store.JoinRoom(code, name)
	if err != nil {
		return err
	}
	r.bind(sess, p, room)

	r.ToPlayer(p.ID, Event{Type: EventRoomJoined, Data: RoomJoinedPayload{
		PlayerID: p.ID,
		Room:     BuildRoomView(room, p.ID),
	}})
	r.ToRoomExcept(room, p.ID, Event{Type: EventPlayerJoined, Data: PlayerJoinedPayload{
		Player: PlayerView{ID: p.ID, Name: p.Name, Connected: true, IsHost: false},
	}})
	return nil
}

func (r *SessionRouter) handleLeave(sess *session) error {
	if sess.playerID == "" {
		return ErrNotInRoom
	}
	r.depart(sess)
	return nil
}

func (r *SessionRouter) handleReady(sess *session, data json.RawMessage) error {
	room, p, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	if room.Phase() != PhaseLobby {
		return ErrWrongPhase
	}
	var req ReadyRequest
	if err := decode(data, &req); err != nil {
		return err
	}

	p.Ready = req.Ready
	r.store.Touch(room)
	r.ToRoom(room, Event{Type: EventRoomReady, Data: PlayerReadyPayload{
		PlayerID: p.ID,
		Ready:    p.Ready,
	}})
	return nil
}

func (r *SessionRouter) handleStart(sess *session) error {
	room, _, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	if err := r.engine.StartGame(room, sess.playerID); err != nil {
		return err
	}
	r.store.Touch(room)
	return nil
}

func (r *SessionRouter) handleClue(sess *session, data json.RawMessage) error {
	room, _, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	var req SubmitClueRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	clue, err := ValidateClue(req.Clue)
	if err != nil {
		return err
	}
	if err := r.engine.SubmitClue(room, sess.playerID, clue); err != nil {
		return err
	}
	r.store.Touch(room)
	return nil
}

func (r *SessionRouter) handleGuess(sess *session, data json.RawMessage) error {
	room, _, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	var req SubmitGuessRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if err := ValidateCoordinate(req.Coordinate); err != nil {
		return err
	}
	if err := r.engine.SubmitGuess(room, sess.playerID, req.Coordinate); err != nil {
		return err
	}
	r.store.Touch(room)
	return nil
}

func (r *SessionRouter) handleState(sess *session) error {
	room, _, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	r.ToPlayer(sess.playerID, Event{Type: EventGameState, Data: GameStatePayload{
		PlayerID: sess.playerID,
		Room:     BuildRoomView(room, sess.playerID),
	}})
	return nil
}

func (r *SessionRouter) handleChat(sess *session, data json.RawMessage) error {
	room, p, err := r.memberOf(sess)
	if err != nil {
		return err
	}
	var req ChatSendRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	msg, err := ValidateChatMessage(req.Message)
	if err != nil {
		return err
	}

	r.store.Touch(room)
	r.ToRoom(room, Event{Type: EventChatMessage, Data: ChatMessagePayload{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Message:    msg,
		SentAt:     time.Now().Unix(),
	}})
	return nil
}

// handleDisconnect forgets the socket but keeps the player's seat:
// transport loss marks them disconnected so their score and identity
// survive under the same id. Only an explicit leave removes a player.
func (r *SessionRouter) handleDisconnect(c Conn) {
	sess, ok := r.sessions[c]
	if !ok {
		return
	}
	if sess.playerID != "" {
		id := sess.playerID
		r.unbind(sess)
		if room, p, present := r.store.UpdatePlayerConnection(id, false); present {
			r.ToRoom(room, Event{Type: EventPlayerLeft, Data: PlayerLeftPayload{
				PlayerID:       p.ID,
				IsDisconnected: true,
			}})
		}
	}
	delete(r.sessions, c)
	metrics.ConnectedSessions.Dec()
}

// depart runs the explicit-leave flow: store removal, member
// broadcasts, round side effects, session unbinding.
func (r *SessionRouter) depart(sess *session) {
	out, err := r.store.Leave(sess.playerID)
	if err != nil {
		r.unbind(sess)
		return
	}

	if !out.RoomDeleted {
		room := out.In
		r.ToRoom(room, Event{Type: EventPlayerLeft, Data: PlayerLeftPayload{
			PlayerID:       out.Left.ID,
			IsDisconnected: false,
		}})
		if out.NewHostID != "" {
			r.ToRoom(room, Event{Type: EventHostChanged, Data: HostChangedPayload{HostID: out.NewHostID}})
		}
		r.engine.HandleDeparture(room, out)
	}
	r.unbind(sess)
}

func (r *SessionRouter) bind(sess *session, p *Player, room *Room) {
	sess.playerID = p.ID
	sess.name = p.Name
	sess.roomID = room.ID()
	r.byPlayer[p.ID] = sess
}

func (r *SessionRouter) unbind(sess *session) {
	delete(r.byPlayer, sess.playerID)
	sess.playerID = ""
	sess.name = ""
	sess.roomID = ""
}

// memberOf resolves the caller's room or fails with not-in-room.
func (r *SessionRouter) memberOf(sess *session) (*Room, *Player, error) {
	if sess.playerID == "" {
		return nil, nil, ErrNotInRoom
	}
	room, p, ok := r.store.RoomByPlayer(sess.playerID)
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	return room, p, nil
}

// fail reports one error event to the originator and nothing else.
func (r *SessionRouter) fail(sess *session, err error) {
	ge := AsGameError(err)
	metrics.RejectedEvents.WithLabelValues(ge.Code).Inc()

	if ge.Kind == KindInfra {
		r.log.Warn().Str("code", ge.Code).Str("player", sess.playerID).Msg("request failed")
	} else {
		r.log.Debug().Str("code", ge.Code).Str("player", sess.playerID).Msg("request rejected")
	}

	if data, ok := r.encode(Event{Type: EventError, Data: ErrorPayload{
		Code:    ge.Code,
		Message: ge.Message,
		Details: ge.Details,
	}}); ok {
		r.deliver(sess.conn, data)
	}
}

// sweep reclaims idle rooms and closes their sockets.
func (r *SessionRouter) sweep(now time.Time) {
	for _, room := range r.store.Sweep(now) {
		for _, p := range room.Players() {
			if sess, ok := r.byPlayer[p.ID]; ok {
				r.unbind(sess)
				sess.conn.Close("room-idle")
			}
		}
	}
}

// --- Broadcaster ---

func (r *SessionRouter) ToPlayer(playerID string, evt Event) {
	sess, ok := r.byPlayer[playerID]
	if !ok {
		return
	}
	if data, encoded := r.encode(evt); encoded {
		r.deliver(sess.conn, data)
	}
}

func (r *SessionRouter) ToRoom(room *Room, evt Event) {
	data, ok := r.encode(evt)
	if !ok {
		return
	}
	for _, p := range room.Players() {
		if sess, bound := r.byPlayer[p.ID]; bound {
			r.deliver(sess.conn, data)
		}
	}
}

func (r *SessionRouter) ToRoomExcept(room *Room, exceptID string, evt Event) {
	data, ok := r.encode(evt)
	if !ok {
		return
	}
	for _, p := range room.Players() {
		if p.ID == exceptID {
			continue
		}
		if sess, bound := r.byPlayer[p.ID]; bound {
			r.deliver(sess.conn, data)
		}
	}
}

func (r *SessionRouter) ToRoomEach(room *Room, build func(playerID string) Event) {
	for _, p := range room.Players() {
		sess, bound := r.byPlayer[p.ID]
		if !bound {
			continue
		}
		if data, ok := r.encode(build(p.ID)); ok {
			r.deliver(sess.conn, data)
		}
	}
}

func (r *SessionRouter) encode(evt Event) ([]byte, bool) {
	data, err := evt.Encode()
	if err != nil {
		r.log.Error().Err(err).Str("event", evt.Type).Msg("encode failed")
		return nil, false
	}
	return data, true
}

// deliver pushes bytes at a session; a full buffer drops the transport
// rather than blocking the loop.
func (r *SessionRouter) deliver(c Conn, data []byte) {
	if err := c.Send(data); err != nil {
		r.log.Warn().Err(err).Msg("dropping slow consumer")
		c.Close(ErrSendBufferFull.Code)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrMalformedEvent
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrMalformedEvent
	}
	return nil
}
