package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/QChat/internal/adapters/http"
	ws "github.com/dkeye/QChat/internal/adapters/signal"
	"github.com/dkeye/QChat/internal/app/chat"
	"github.com/dkeye/QChat/internal/config"
	"github.com/dkeye/QChat/internal/storage"
	"github.com/dkeye/QChat/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.BaseURL+"/uploads")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload dir")
	}

	sessions := chat.New(db, db, db)
	ctrl := ws.NewChatWSController(sessions, cfg)

	handlers := &router.Handlers{
		Store:     db,
		Chat:      sessions,
		Files:     files,
		MaxUpload: cfg.MaxUploadSize,
		BaseURL:   cfg.BaseURL,
	}

	r := router.SetupRouter(ctx, cfg, handlers, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("QChat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
