package transport

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler owns the HTTP surface: the upgrade endpoint and health.
type Handler struct {
	router   Router
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(router Router, allowedOrigins []string, log zerolog.Logger) *Handler {
	return &Handler{
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// originChecker admits non-browser clients (no Origin header) and
// browsers coming from an allowed origin.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ws", h.Serve)
}

func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Serve upgrades the request and hands the socket to the loop.
func (h *Handler) Serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	sess := NewSession(conn, h.router, h.log)
	h.router.Connect(sess)
	sess.run()
}
