package library

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
)

const lastBackupKey = "last_backup_at"

// BackupService writes the library export to disk on a cron schedule
type BackupService struct {
	library *Service
	kv      interfaces.KeyValueStorage
	config  *common.BackupConfig
	cron    *cron.Cron
	logger  arbor.ILogger
	running bool
}

// NewBackupService creates a new backup service
func NewBackupService(library *Service, kv interfaces.KeyValueStorage, config *common.BackupConfig, logger arbor.ILogger) *BackupService {
	return &BackupService{
		library: library,
		kv:      kv,
		config:  config,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the backup job and begins the scheduler
func (s *BackupService) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Scheduled backups disabled")
		return nil
	}
	if s.running {
		return fmt.Errorf("backup scheduler already running")
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 3 * * *" // Default: daily at 03:00
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(); err != nil {
			s.logger.Warn().Err(err).Msg("Scheduled backup failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", schedule).Str("dir", s.config.Dir).Msg("Backup scheduler started")
	return nil
}

// RunOnce writes a single export file to the backup directory
func (s *BackupService) RunOnce() error {
	data, filename, err := s.library.ExportJSON()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(s.config.Dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	if err := s.kv.Set(lastBackupKey, time.Now().Format(time.RFC3339)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record backup timestamp")
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Library backup written")
	return nil
}

// LastBackup returns the timestamp of the most recent backup, or zero time
func (s *BackupService) LastBackup() time.Time {
	value, err := s.kv.Get(lastBackupKey)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Stop halts the scheduler, waiting for a running backup to finish
func (s *BackupService) Stop() {
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Backup scheduler stopped")
}
