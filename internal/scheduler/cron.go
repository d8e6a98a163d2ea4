package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/transfer"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler writes periodic JSON snapshots of the collection and prunes old
// ones, so a corrupted or fat-fingered vault can be restored via import.
type Scheduler struct {
	cron          *cron.Cron
	store         *library.Store
	backupDir     string
	intervalHours int
	keep          int
	logger        *logrus.Logger
}

// NewScheduler creates a new backup scheduler
func NewScheduler(store *library.Store, backupDir string, intervalHours, keep int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		store:         store,
		backupDir:     backupDir,
		intervalHours: intervalHours,
		keep:          keep,
		logger:        logger,
	}
}

// Start starts the scheduler. An interval of zero disables backups.
func (s *Scheduler) Start() error {
	if s.intervalHours <= 0 {
		s.logger.Info("Scheduled backups disabled")
		return nil
	}

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	spec := fmt.Sprintf("@every %dh", s.intervalHours)
	if _, err := s.cron.AddFunc(spec, func() {
		s.runBackup()
	}); err != nil {
		return fmt.Errorf("failed to add backup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("interval_hours", s.intervalHours).Info("Backup scheduler started")

	// Take an initial snapshot right away
	go s.runBackup()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping backup scheduler")
	s.cron.Stop()
}

// runBackup exports the collection to a timestamped snapshot file
func (s *Scheduler) runBackup() {
	data, err := s.store.ExportAll()
	if err != nil {
		s.logger.WithError(err).Error("Backup export failed")
		return
	}

	path := filepath.Join(s.backupDir, transfer.ExportFilename(time.Now()))
	if err := transfer.WriteFileAtomic(path, data); err != nil {
		s.logger.WithError(err).Error("Backup write failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(data),
	}).Info("Backup written")

	s.prune()
}

// prune keeps only the newest snapshots
func (s *Scheduler) prune() {
	matches, err := filepath.Glob(filepath.Join(s.backupDir, "xstreamify-library-*.json"))
	if err != nil || len(matches) <= s.keep {
		return
	}

	// Timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	for _, path := range matches[s.keep:] {
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("Failed to prune backup")
		} else {
			s.logger.WithField("path", path).Debug("Pruned old backup")
		}
	}
}
