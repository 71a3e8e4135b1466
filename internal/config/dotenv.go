package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sketchparty/internal/db"
	"sketchparty/internal/game"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     string
	LogLevel                 string
	LogPretty                bool
	MaxParticipants          int
	MinParticipants          int
	ScoringRounds            int
	RewardSequence           []int
	DrawBatchesPerSecond     int
	IntentsPerSecond         int
	IntentBurst              int
	ThemeSelectionSeconds    int
	TurnSeconds              int
	FakeVoteSeconds          int
	ImpostorGuessSeconds     int
	CorrectnessVoteSeconds   int
	WinScore                 int
	ThemeMenuSize            int
	ThemePoolSize            int
	SweepIntervalSeconds     int
	ContentPath              string
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		LogLevel:                 "info",
		MaxParticipants:          12,
		MinParticipants:          3,
		ScoringRounds:            4,
		RewardSequence:           []int{4, 3, 3, 2, 2, 2, 1, 1},
		DrawBatchesPerSecond:     60,
		IntentsPerSecond:         120,
		IntentBurst:              240,
		ThemeSelectionSeconds:    20,
		TurnSeconds:              60,
		FakeVoteSeconds:          30,
		ImpostorGuessSeconds:     30,
		CorrectnessVoteSeconds:   15,
		WinScore:                 5,
		ThemeMenuSize:            12,
		ThemePoolSize:            5,
		SweepIntervalSeconds:     300,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("LOG_PRETTY"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogPretty = value
		}
	}
	if raw := os.Getenv("REWARD_SEQUENCE"); raw != "" {
		if sequence, ok := parseSequence(raw); ok {
			cfg.RewardSequence = sequence
		}
	}
	cfg.MaxParticipants = positiveFromEnv("MAX_PARTICIPANTS", cfg.MaxParticipants)
	cfg.MinParticipants = positiveFromEnv("MIN_PARTICIPANTS", cfg.MinParticipants)
	cfg.ScoringRounds = positiveFromEnv("SCORING_ROUNDS", cfg.ScoringRounds)
	cfg.DrawBatchesPerSecond = positiveFromEnv("DRAW_BATCHES_PER_SECOND", cfg.DrawBatchesPerSecond)
	cfg.IntentsPerSecond = positiveFromEnv("INTENTS_PER_SECOND", cfg.IntentsPerSecond)
	cfg.IntentBurst = positiveFromEnv("INTENT_BURST", cfg.IntentBurst)
	cfg.ThemeSelectionSeconds = positiveFromEnv("THEME_SELECTION_SECONDS", cfg.ThemeSelectionSeconds)
	cfg.TurnSeconds = positiveFromEnv("TURN_SECONDS", cfg.TurnSeconds)
	cfg.FakeVoteSeconds = positiveFromEnv("FAKE_VOTE_SECONDS", cfg.FakeVoteSeconds)
	cfg.ImpostorGuessSeconds = positiveFromEnv("IMPOSTOR_GUESS_SECONDS", cfg.ImpostorGuessSeconds)
	cfg.CorrectnessVoteSeconds = positiveFromEnv("CORRECTNESS_VOTE_SECONDS", cfg.CorrectnessVoteSeconds)
	cfg.WinScore = positiveFromEnv("WIN_SCORE", cfg.WinScore)
	cfg.ThemeMenuSize = positiveFromEnv("THEME_MENU_SIZE", cfg.ThemeMenuSize)
	cfg.ThemePoolSize = positiveFromEnv("THEME_POOL_SIZE", cfg.ThemePoolSize)
	cfg.SweepIntervalSeconds = positiveFromEnv("SWEEP_INTERVAL_SECONDS", cfg.SweepIntervalSeconds)
	if raw := os.Getenv("CONTENT_PATH"); raw != "" {
		cfg.ContentPath = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	cfg.DBMaxOpenConns = positiveFromEnv("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = positiveFromEnv("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetimeSeconds = positiveFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", cfg.DBConnMaxLifetimeSeconds)
	cfg.DBConnMaxIdleTimeSeconds = positiveFromEnv("DB_CONN_MAX_IDLE_SECONDS", cfg.DBConnMaxIdleTimeSeconds)
	return cfg
}

// RoomSettings converts the loaded configuration into room rules.
func (c Config) RoomSettings() game.Settings {
	return game.Settings{
		MaxParticipants:      c.MaxParticipants,
		MinParticipants:      c.MinParticipants,
		ScoringRounds:        c.ScoringRounds,
		RewardSequence:       append([]int(nil), c.RewardSequence...),
		DrawBatchesPerSecond: c.DrawBatchesPerSecond,
		ThemeSelection:       seconds(c.ThemeSelectionSeconds),
		Turn:                 seconds(c.TurnSeconds),
		FakeVote:             seconds(c.FakeVoteSeconds),
		ImpostorGuess:        seconds(c.ImpostorGuessSeconds),
		CorrectnessVote:      seconds(c.CorrectnessVoteSeconds),
		WinScore:             c.WinScore,
		ThemeMenuSize:        c.ThemeMenuSize,
		ThemePoolSize:        c.ThemePoolSize,
		SweepInterval:        seconds(c.SweepIntervalSeconds),
	}
}

// DBPool returns the connection pool limits for db.Open.
func (c Config) DBPool() db.PoolConfig {
	return db.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: seconds(c.DBConnMaxLifetimeSeconds),
		ConnMaxIdleTime: seconds(c.DBConnMaxIdleTimeSeconds),
	}
}

func positiveFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseSequence(raw string) ([]int, bool) {
	parts := strings.Split(raw, ",")
	sequence := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			return nil, false
		}
		sequence = append(sequence, value)
	}
	return sequence, len(sequence) > 0
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}
