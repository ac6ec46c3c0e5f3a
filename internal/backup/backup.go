// Package backup periodically snapshots the stored documents into a
// directory and prunes old snapshots.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salon/internal/metrics"
	"salon/internal/storage"

	"github.com/rs/zerolog"
)

const snapshotExt = ".json"

type Config struct {
	Enabled   bool
	Dir       string
	Interval  time.Duration
	Retention time.Duration
}

type Service struct {
	source    storage.Backend
	documents []string
	config    Config
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(source storage.Backend, documents []string, cfg Config, logger *zerolog.Logger) *Service {
	return &Service{
		source:    source,
		documents: documents,
		config:    cfg,
		logger:    logger.With().Str("component", "backup").Logger(),
		now:       time.Now,
	}
}

// Start runs a backup immediately and then on every interval until ctx is done.
func (s *Service) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	s.logger.Info().Dur("interval", s.config.Interval).Str("dir", s.config.Dir).Msg("backup service started")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("backup failed")
		metrics.IncBackup("error")
		return
	}
	metrics.IncBackup("ok")
	s.CleanupOldBackups()
}

// PerformBackup copies every existing document into the backup directory
// and returns the written paths. Missing documents are skipped.
func (s *Service) PerformBackup(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := s.now().Format("20060102_150405")
	var written []string
	for _, name := range s.documents {
		data, err := s.source.Read(ctx, name)
		if errors.Is(err, storage.ErrNotExist) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("read %s: %w", name, err)
		}

		path := filepath.Join(s.config.Dir, fmt.Sprintf("%s_%s%s", name, timestamp, snapshotExt))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	s.logger.Info().Int("documents", len(written)).Str("timestamp", timestamp).Msg("backup completed")
	return written, nil
}

// CleanupOldBackups removes snapshots older than the retention period.
func (s *Service) CleanupOldBackups() {
	if s.config.Retention <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.Dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := s.now().Add(-s.config.Retention)
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), snapshotExt) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			if err := os.Remove(filepath.Join(s.config.Dir, file.Name())); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("failed to delete old backup")
			}
		}
	}
}
