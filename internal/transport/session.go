package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/MaLoskins/SpectrumGame/internal/game"
	"github.com/MaLoskins/SpectrumGame/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBufferSize = 256

	// inbound frames per second, with headroom for short UI flurries
	inboundRate  = 1
	inboundBurst = 5
)

// Router is the loop the transport feeds. *game.SessionRouter
// satisfies it.
type Router interface {
	Connect(c game.Conn)
	Receive(c game.Conn, raw []byte)
	Disconnect(c game.Conn)
}

// Session pairs one websocket with its read and write pumps. The write
// pump is the only goroutine writing data frames; the rest of the
// process talks to the socket through Send and Close only.
type Session struct {
	socket  *websocket.Conn
	router  Router
	send    chan []byte
	limiter *rate.Limiter
	once    sync.Once
	log     zerolog.Logger
}

func NewSession(socket *websocket.Conn, router Router, log zerolog.Logger) *Session {
	return &Session{
		socket:  socket,
		router:  router,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
		log:     log,
	}
}

// Send queues one frame without blocking. A full queue means the other
// end is not draining and the caller should drop the session.
func (s *Session) Send(data []byte) error {
	select {
	case s.send <- data:
		return nil
	default:
		return game.ErrSendBufferFull
	}
}

// Close sends a close frame and tears the socket down. Safe to call
// from any goroutine, any number of times.
func (s *Session) Close(reason string) {
	s.once.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		_ = s.socket.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = s.socket.Close()
	})
}

// run starts both pumps and releases the caller's goroutine.
func (s *Session) run() {
	go s.writePump()
	go s.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.router.Disconnect(s)
		_ = s.socket.Close()
	}()

	s.socket.SetReadLimit(maxMessageSize)
	_ = s.socket.SetReadDeadline(time.Now().Add(pongWait))
	s.socket.SetPongHandler(func(string) error {
		return s.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("socket closed unexpectedly")
			}
			return
		}
		if !s.limiter.Allow() {
			s.throttle()
			continue
		}
		s.router.Receive(s, raw)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.socket.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// throttle answers a dropped frame without involving the loop.
func (s *Session) throttle() {
	metrics.RejectedEvents.WithLabelValues(game.ErrRateLimited.Code).Inc()
	evt := game.Event{Type: game.EventError, Data: game.ErrorPayload{
		Code:    game.ErrRateLimited.Code,
		Message: game.ErrRateLimited.Message,
	}}
	if data, err := evt.Encode(); err == nil {
		_ = s.Send(data)
	}
}
