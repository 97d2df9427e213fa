package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/audioscribe/internal/audio/httpapi"
	"github.com/romariotrain/audioscribe/internal/audio/service"
	"github.com/romariotrain/audioscribe/internal/audio/storage"
	"github.com/romariotrain/audioscribe/internal/config"
	pg "github.com/romariotrain/audioscribe/internal/storage/postgres"
)

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := zerolog.New(os.Stderr).Level(cfg.LogLevel).With().Timestamp().Logger()

	db, err := pg.Connect(ctx, cfg.DatabaseURL, pg.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	// Dependencies
	repo := pg.NewAudioRepo(db)
	store := storage.New(cfg.UploadDir, logger)

	var outboxRepo *pg.OutboxRepo
	if cfg.QueueEnabled {
		outboxRepo = pg.NewOutboxRepo(db)
	}

	svc := service.New(repo, store, outboxRepo, logger)
	h := httpapi.New(svc, cfg, logger)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
