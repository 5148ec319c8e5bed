// Package scheduler runs the two periodic background tasks: autosave of the
// domain store and generation of synthetic new releases. Both run on a single
// cron runner, take the same store lock as interactive requests when they
// mutate, and swallow their own failures — a broken disk or a bad tick must
// never take the server down.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/broadcast"
	"github.com/tunegrid/jukebox/internal/core/ports"
)

// Saver persists a snapshot to stable storage.
type Saver interface {
	Save(ports.Snapshot) error
}

// Broadcaster pushes an event to all connected clients.
type Broadcaster interface {
	Broadcast(broadcast.Event)
}

// Scheduler owns the cron runner and its two entries.
type Scheduler struct {
	catalog  ports.CatalogService
	state    ports.StateExporter
	saver    Saver
	caster   Broadcaster
	autosave time.Duration
	release  time.Duration
	cron     *cron.Cron
	log      zerolog.Logger
}

func New(catalog ports.CatalogService, state ports.StateExporter, saver Saver, caster Broadcaster,
	autosave, release time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		catalog:  catalog,
		state:    state,
		saver:    saver,
		caster:   caster,
		autosave: autosave,
		release:  release,
		cron:     cron.New(),
		log:      log,
	}
}

// Start registers both tasks and launches the runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.autosave), s.runAutosave); err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.release), s.runRelease); err != nil {
		return fmt.Errorf("schedule release: %w", err)
	}
	s.cron.Start()
	s.log.Info().Dur("autosave", s.autosave).Dur("release", s.release).Msg("background scheduler started")
	return nil
}

// Stop halts the runner and waits for an in-flight task to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runAutosave persists the store when anything changed since the last save.
// On failure the dirty flag is re-armed so the next tick retries; there is no
// early retry.
func (s *Scheduler) runAutosave() {
	if !s.state.ConsumeDirty() {
		return
	}
	if err := s.saver.Save(s.state.Snapshot()); err != nil {
		s.state.MarkDirty()
		s.log.Warn().Err(err).Msg("autosave failed")
	}
}

// runRelease inserts a synthetic song, persists, and pushes a new_release
// event to every connected client.
func (s *Scheduler) runRelease() {
	song := randomSong(s.catalog.Categories())
	s.catalog.AddSong(song)

	if s.state.ConsumeDirty() {
		if err := s.saver.Save(s.state.Snapshot()); err != nil {
			s.state.MarkDirty()
			s.log.Warn().Err(err).Msg("post-release save failed")
		}
	}

	s.caster.Broadcast(broadcast.Event{Event: "new_release", Song: song.View()})
	s.log.Info().Str("song_id", song.ID).Str("title", song.Title).Str("category", song.Category).Msg("synthetic release published")
}
