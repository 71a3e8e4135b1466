package main

import (
	"context"
	"flag"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/content"
	"sketchparty/internal/db"
	"sketchparty/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "content.yaml", "path to a YAML content dataset")
	builtin := flag.Bool("builtin", false, "import the builtin dataset instead of a file")
	autoMigrate := flag.Bool("migrate", false, "auto-migrate content tables before importing")
	flag.Parse()

	envErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env")
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBPool())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if *autoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("auto-migration failed")
		}
	}

	var dataset content.Dataset
	if *builtin {
		dataset = content.BuiltinDataset()
	} else {
		dataset, err = content.LoadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *filePath).Msg("failed to read content")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	stats, err := content.Import(ctx, conn, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to import content")
	}
	log.Info().
		Int("cards", stats.Cards).
		Int("themes", stats.Themes).
		Int("skipped", stats.Skipped).
		Msg("content loaded")
}
