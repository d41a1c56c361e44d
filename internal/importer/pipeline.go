package importer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/partbridge/partbridge/internal/audit"
	"github.com/partbridge/partbridge/internal/entities"
)

// Pipeline sequences the two importer operations. Every call is a fresh
// run: no state is shared between invocations beyond the process-wide
// Digi-Key token cache inside the supplier adapter.
type Pipeline struct {
	preview *PreviewBuilder
	writer  *Writer
	audit   *audit.Service
	log     *zap.Logger
}

// NewPipeline creates the pipeline orchestrator.
func NewPipeline(preview *PreviewBuilder, writer *Writer, auditService *audit.Service, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		preview: preview,
		writer:  writer,
		audit:   auditService,
		log:     log,
	}
}

// Preview runs the read-only pipeline: fetch, normalize, match. No write is
// issued to the destination system.
func (p *Pipeline) Preview(ctx context.Context, supplier entities.Supplier, partNumber string) (*entities.ImportPreview, error) {
	started := time.Now()

	preview, err := p.preview.Build(ctx, supplier, partNumber)
	p.audit.RecordPreview(supplier, partNumber, err, time.Since(started))
	if err != nil {
		return nil, err
	}

	p.log.Info("preview ready",
		zap.String("supplier", string(supplier)),
		zap.String("part_number", partNumber),
		zap.Int("match_count", preview.MatchCount))
	return preview, nil
}

// Import re-runs the fetch-and-match of the preview operation, merges the
// operator overrides and commits to the destination. Canonical data supplied
// by the client is never trusted; only the overrides are. An explicit category override
// replaces the heuristic match entirely.
func (p *Pipeline) Import(ctx context.Context, req entities.ImportRequest) (*entities.ImportResult, error) {
	started := time.Now()

	preview, err := p.preview.Build(ctx, req.Supplier, req.PartNumber)
	if err != nil {
		p.audit.RecordImport(req.Supplier, req.PartNumber, nil, err, time.Since(started))
		return nil, err
	}

	merged := Merge(preview.Part, req.Overrides)

	var categoryPath []string
	switch {
	case req.Overrides != nil && len(req.Overrides.CategoryPath) > 0:
		categoryPath = req.Overrides.CategoryPath
	case preview.MatchedCategory != nil:
		categoryPath = preview.MatchedCategory.Path
	}

	result, err := p.writer.Commit(ctx, merged, categoryPath)
	p.audit.RecordImport(req.Supplier, req.PartNumber, &result, err, time.Since(started))
	if err != nil {
		return &result, err
	}

	p.log.Info("import committed",
		zap.String("supplier", string(req.Supplier)),
		zap.String("part_number", req.PartNumber),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("part_id", result.PartID))
	return &result, nil
}
