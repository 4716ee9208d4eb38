package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MaLoskins/SpectrumGame/internal/config"
	"github.com/MaLoskins/SpectrumGame/internal/game"
	"github.com/MaLoskins/SpectrumGame/internal/logger"
	"github.com/MaLoskins/SpectrumGame/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		lg := logger.New("main")
		lg.Fatal().Err(err).Msg("bad configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.New("main")

	gin.SetMode(cfg.GinMode)

	allowedOrigins := []string{cfg.FrontendOrigin}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	store := game.NewRoomStore(
		gameConfig(cfg),
		game.NewUUIDGenerator(),
		game.NewCodeGenerator(game.DefaultCodeAlphabet, game.CodeLength, rng),
		logger.New("store"),
	)
	router := game.NewSessionRouter(gameConfig(cfg), store, nil, rng, logger.New("router"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go router.Run(ctx)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{"Content-Type", "Origin"},
	}))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	transport.NewHandler(router, allowedOrigins, logger.New("transport")).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server exited")
}

// gameConfig maps the environment-facing configuration onto the
// engine's ruleset.
func gameConfig(cfg *config.Config) game.Config {
	gc := game.DefaultConfig()
	gc.MinPlayers = cfg.MinPlayers
	gc.MaxPlayers = cfg.MaxPlayers
	gc.DefaultRounds = cfg.DefaultRounds
	gc.RoundSeconds = cfg.RoundSeconds
	gc.BonusThreshold = cfg.BonusThreshold
	gc.BonusPoints = cfg.BonusPoints
	gc.ResultsDelay = cfg.ResultsDelay
	gc.InterRoundDelay = cfg.InterRoundDelay
	gc.GuessGrace = cfg.GuessGrace
	gc.RoomIdleTTL = cfg.RoomIdleTTL
	gc.SweepInterval = cfg.SweepInterval
	return gc
}
