package main

import (
	"errors"
	"flag"

	"sketchparty/internal/config"
	"sketchparty/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	source := flag.String("source", "file://db/migrations", "migration source url")
	flag.Parse()

	envErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New(*source, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("migration setup failed")
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Bool("down", *down).Msg("database migration failed")
	}
	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrations applied")
}
