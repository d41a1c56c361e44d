// Package audit records pipeline invocations in the import-run trail.
// Recording is best-effort and asynchronous: a failed audit write never
// fails an import.
package audit

import (
	"time"

	"go.uber.org/zap"

	"github.com/partbridge/partbridge/internal/database/runs"
	"github.com/partbridge/partbridge/internal/entities"
)

// Service provides high-level audit logging. A nil *Service is valid and
// records nothing, so callers need no enablement checks.
type Service struct {
	repo *runs.Repository
	log  *zap.Logger
}

// NewService creates a new audit service.
func NewService(repo *runs.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// RecordPreview records one preview run.
func (s *Service) RecordPreview(supplier entities.Supplier, partNumber string, err error, duration time.Duration) {
	run := &entities.ImportRun{
		Operation:  entities.RunOperationPreview,
		Supplier:   string(supplier),
		PartNumber: partNumber,
		Outcome:    entities.RunOutcomeReady,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		run.Outcome = entities.RunOutcomeError
		run.ErrorMsg = truncate(err.Error(), 500)
	}
	s.record(run)
}

// RecordImport records one import run and its destination identifiers.
func (s *Service) RecordImport(supplier entities.Supplier, partNumber string, result *entities.ImportResult, err error, duration time.Duration) {
	run := &entities.ImportRun{
		Operation:  entities.RunOperationImport,
		Supplier:   string(supplier),
		PartNumber: partNumber,
		DurationMS: duration.Milliseconds(),
	}

	switch {
	case err != nil:
		run.Outcome = entities.RunOutcomeError
		run.ErrorMsg = truncate(err.Error(), 500)
	case result != nil && result.Outcome == entities.OutcomePartial:
		run.Outcome = entities.RunOutcomePartial
	default:
		run.Outcome = entities.RunOutcomeSuccess
	}

	if result != nil {
		run.PartID = result.PartID
		run.SupplierPartID = result.SupplierPartID
	}

	s.record(run)
}

// record persists the run in the background (non-blocking).
func (s *Service) record(run *entities.ImportRun) {
	if s == nil || s.repo == nil {
		return
	}
	go func() {
		if err := s.repo.LogRun(run); err != nil {
			s.log.Error("failed to record import run", zap.Error(err))
		}
	}()
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
