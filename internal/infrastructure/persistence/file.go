package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/core/ports"
	"github.com/tunegrid/jukebox/internal/metrics"
)

// FileStore reads and writes the snapshot document at a fixed path. Saves go
// through a temp file in the same directory followed by a rename, so a reader
// (or a crash mid-save) never observes a half-written document.
type FileStore struct {
	path string
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Save encodes the snapshot and atomically replaces the data file.
func (f *FileStore) Save(snap ports.Snapshot) error {
	start := time.Now()

	data, err := Encode(snap)
	if err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".jukebox-snapshot-*")
	if err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("replace snapshot: %w", err)
	}

	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	f.log.Debug().Int("bytes", len(data)).Str("path", f.path).Msg("snapshot saved")
	return nil
}

// Load reads and decodes the data file. The second return value is false when
// the file does not exist, which is not an error: the caller seeds instead.
func (f *FileStore) Load() (ports.Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.Snapshot{}, false, nil
		}
		return ports.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := Decode(data, f.log)
	if err != nil {
		return ports.Snapshot{}, true, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Check verifies the data file's directory is writable. Used by the
// readiness probe.
func (f *FileStore) Check() error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".jukebox-probe-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	tmp.Close()
	os.Remove(tmp.Name())
	return nil
}
