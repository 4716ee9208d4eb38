package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process reads from its environment.
// Gameplay values here are the server-wide defaults; rooms may narrow
// them per game within the validated bounds.
type Config struct {
	Addr           string
	FrontendOrigin string
	GinMode        string
	LogLevel       string
	LogPretty      bool

	DefaultRounds int
	RoundSeconds  int
	MinPlayers    int
	MaxPlayers    int

	BonusThreshold float64
	BonusPoints    int

	ResultsDelay    time.Duration
	InterRoundDelay time.Duration
	GuessGrace      time.Duration

	RoomIdleTTL   time.Duration
	SweepInterval time.Duration
}

// Load reads a .env file when present, then the process environment.
// Missing keys fall back to defaults; the result is always validated.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           getEnv("ADDR", ":8080"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnv("LOG_FORMAT", "json") != "json",

		DefaultRounds: getEnvInt("GAME_DEFAULT_ROUNDS", 10),
		RoundSeconds:  getEnvInt("GAME_ROUND_SECONDS", 60),
		MinPlayers:    getEnvInt("GAME_MIN_PLAYERS", 2),
		MaxPlayers:    getEnvInt("GAME_MAX_PLAYERS", 6),

		BonusThreshold: getEnvFloat("GAME_BONUS_THRESHOLD", 15),
		BonusPoints:    getEnvInt("GAME_BONUS_POINTS", 25),

		ResultsDelay:    getEnvDuration("GAME_RESULTS_DELAY", 8*time.Second),
		InterRoundDelay: getEnvDuration("GAME_INTERROUND_DELAY", 5*time.Second),
		GuessGrace:      getEnvDuration("GAME_GUESS_GRACE", 2*time.Second),

		RoomIdleTTL:   getEnvDuration("ROOM_IDLE_TTL", 30*time.Minute),
		SweepInterval: getEnvDuration("ROOM_SWEEP_INTERVAL", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot honor.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: ADDR must not be empty")
	}
	if c.DefaultRounds < 1 || c.DefaultRounds > 10 {
		return fmt.Errorf("config: GAME_DEFAULT_ROUNDS must be 1..10, got %d", c.DefaultRounds)
	}
	if c.RoundSeconds < 30 || c.RoundSeconds > 180 {
		return fmt.Errorf("config: GAME_ROUND_SECONDS must be 30..180, got %d", c.RoundSeconds)
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("config: GAME_MIN_PLAYERS must be at least 2, got %d", c.MinPlayers)
	}
	if c.MaxPlayers < c.MinPlayers || c.MaxPlayers > 16 {
		return fmt.Errorf("config: GAME_MAX_PLAYERS must be %d..16, got %d", c.MinPlayers, c.MaxPlayers)
	}
	if c.BonusThreshold <= 0 || c.BonusThreshold > 100 {
		return fmt.Errorf("config: GAME_BONUS_THRESHOLD must be in (0,100], got %g", c.BonusThreshold)
	}
	if c.BonusPoints < 0 {
		return fmt.Errorf("config: GAME_BONUS_POINTS must not be negative, got %d", c.BonusPoints)
	}
	if c.ResultsDelay <= 0 || c.InterRoundDelay <= 0 || c.GuessGrace <= 0 {
		return fmt.Errorf("config: game delays must be positive")
	}
	if c.RoomIdleTTL <= 0 {
		return fmt.Errorf("config: ROOM_IDLE_TTL must be positive, got %s", c.RoomIdleTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: ROOM_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
