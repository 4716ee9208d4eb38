package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaLoskins/SpectrumGame/internal/game"
)

// fakeRouter records what the transport hands to the loop.
type fakeRouter struct {
	mu        sync.Mutex
	connected []game.Conn
	frames    [][]byte
	gone      int
}

func (f *fakeRouter) Connect(c game.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = append(f.connected, c)
}

func (f *fakeRouter) Receive(_ game.Conn, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, append([]byte(nil), raw...))
}

func (f *fakeRouter) Disconnect(_ game.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gone++
}

func (f *fakeRouter) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeRouter) goneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gone
}

func (f *fakeRouter) firstConn() game.Conn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.connected) == 0 {
		return nil
	}
	return f.connected[0]
}

func newWSServer(t *testing.T, router Router, origins []string) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(router, origins, zerolog.Nop()).Register(engine)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	NewHandler(&fakeRouter{}, nil, zerolog.Nop()).Register(engine)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	res := httptest.NewRecorder()
	engine.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "ok")
}

func TestUpgradeRejectedWithoutHandshake(t *testing.T) {
	t.Parallel()

	server, _ := newWSServer(t, &fakeRouter{}, nil)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	_, wsURL := newWSServer(t, router, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame := []byte(`{"type":"game.requestState"}`)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	assert.Eventually(t, func() bool { return router.frameCount() == 1 }, time.Second, 10*time.Millisecond)
	router.mu.Lock()
	got := router.frames[0]
	router.mu.Unlock()
	assert.Equal(t, frame, got)

	// reply through the recorded handle, read it off the wire
	sess := router.firstConn()
	require.NotNil(t, sess)
	require.NoError(t, sess.Send([]byte(`{"type":"chat.message"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat.message"}`, string(reply))
}

func TestClientCloseNotifiesRouter(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	_, wsURL := newWSServer(t, router, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()

	assert.Eventually(t, func() bool { return router.goneCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServerCloseReachesClient(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	_, wsURL := newWSServer(t, router, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return router.firstConn() != nil }, time.Second, 10*time.Millisecond)
	router.firstConn().Close("room-idle")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, "room-idle", closeErr.Text)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"http://localhost:3000"})

	cases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"no origin header", "", true},
		{"allowed origin", "http://localhost:3000", true},
		{"other origin", "http://evil.example", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.allowed, check(req))
		})
	}
}

func TestDisallowedOriginFailsHandshake(t *testing.T) {
	t.Parallel()

	_, wsURL := newWSServer(t, &fakeRouter{}, []string{"http://localhost:3000"})

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendBufferFull(t *testing.T) {
	t.Parallel()

	s := &Session{send: make(chan []byte, 1)}

	require.NoError(t, s.Send([]byte("a")))
	assert.ErrorIs(t, s.Send([]byte("b")), game.ErrSendBufferFull)
}

func TestInboundThrottle(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	_, wsURL := newWSServer(t, router, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < inboundBurst+5; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat.send"}`)))
	}

	// the only traffic the fake ever sends back is the throttle notice
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string            `json:"type"`
		Data game.ErrorPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, game.EventError, env.Type)
	assert.Equal(t, "rate-limited", env.Data.Code)

	assert.Less(t, router.frameCount(), inboundBurst+5, "throttled frames never reach the loop")
}
