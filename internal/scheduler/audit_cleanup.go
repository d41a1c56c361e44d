// Package scheduler runs the periodic maintenance jobs. The import pipeline
// itself has no background work; the only scheduled job prunes the audit
// trail past its retention window.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/partbridge/partbridge/internal/database/runs"
)

// AuditCleanupScheduler deletes import runs older than the retention window
// on a cron schedule.
type AuditCleanupScheduler struct {
	repo      *runs.Repository
	retention time.Duration
	schedule  string
	log       *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler pruning runs older than
// retentionDays on the given cron schedule.
func NewAuditCleanupScheduler(repo *runs.Repository, retentionDays int, schedule string, log *zap.Logger) *AuditCleanupScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditCleanupScheduler{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		log:       log,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. A nil repository or non-positive retention
// disables it silently.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.repo == nil || s.retention <= 0 {
		s.log.Info("audit cleanup scheduler disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	s.log.Info("audit cleanup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Duration("retention", s.retention))
	return nil
}

// Stop stops the scheduler and waits for a running cleanup to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

func (s *AuditCleanupScheduler) runCleanup() {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.repo.DeleteOldRuns(cutoff)
	if err != nil {
		s.log.Error("audit cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("audit cleanup removed old runs", zap.Int64("deleted", deleted))
	}
}
