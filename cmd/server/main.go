package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/content"
	"sketchparty/internal/db"
	"sketchparty/internal/logging"
	"sketchparty/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg, contentProvider(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", httpServer.Addr).Msg("sketchparty server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

// contentProvider prefers the database, then a YAML file, then the builtin
// dataset.
func contentProvider(cfg config.Config) content.Provider {
	var static content.Provider = content.Builtin()
	if cfg.ContentPath != "" {
		dataset, err := content.LoadFile(cfg.ContentPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ContentPath).Msg("failed to load content file")
		}
		static = content.NewStatic(dataset)
		log.Info().Str("path", cfg.ContentPath).Msg("serving content from file")
	}
	if cfg.DatabaseURL == "" {
		return static
	}
	conn, err := db.Open(cfg.DatabaseURL, cfg.DBPool())
	if err != nil {
		log.Error().Err(err).Msg("database connection failed, serving static content")
		return static
	}
	log.Info().Msg("serving content from database")
	return content.Fallback{Primary: content.NewDatabase(conn), Secondary: static}
}
