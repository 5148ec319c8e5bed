// Command server runs the jukebox socket server: a TCP listener speaking
// newline-delimited JSON, a periodic autosave and synthetic-release
// scheduler, and an admin HTTP surface for probes and metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tunegrid/jukebox/internal/admin"
	"github.com/tunegrid/jukebox/internal/broadcast"
	"github.com/tunegrid/jukebox/internal/core/store"
	"github.com/tunegrid/jukebox/internal/infrastructure/config"
	"github.com/tunegrid/jukebox/internal/infrastructure/persistence"
	"github.com/tunegrid/jukebox/internal/scheduler"
	"github.com/tunegrid/jukebox/internal/server"
	"github.com/tunegrid/jukebox/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("configuration error")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	st := store.New(cfg.JWTSecret, log)
	files := persistence.NewFileStore(cfg.DataPath, log)

	snap, found, err := files.Load()
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DataPath).Msg("failed to load snapshot, starting fresh")
	} else if found {
		st.Restore(snap)
		users, songs, comments := st.Stats()
		log.Info().Int("users", users).Int("songs", songs).Int("comments", comments).Msg("state restored from disk")
	}
	if !st.HasData() {
		st.Seed()
		if err := files.Save(st.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("failed to persist seeded state")
		}
	}

	registry := broadcast.NewRegistry(log)

	sched := scheduler.New(st, st, files, registry, cfg.AutosaveInterval, cfg.ReleaseInterval, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	srv := server.New(cfg.ListenAddr, st, st, registry, log)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start socket server")
	}

	adminSrv := admin.NewRouter(st, files, registry)
	go func() {
		if err := adminSrv.Start(cfg.AdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("admin server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	sched.Stop()
	_ = srv.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	_ = adminSrv.Shutdown(shutdownCtx)

	// Final snapshot so a clean stop never loses state.
	if err := files.Save(st.Snapshot()); err != nil {
		log.Error().Err(err).Msg("final snapshot failed")
	}
}
