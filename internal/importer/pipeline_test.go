package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/suppliers"
)

func newTestPipeline(adapter suppliers.Adapter, dest *fakeDestination, autoCreate bool) *Pipeline {
	builder := NewPreviewBuilder(registryWith(adapter), dest, "EUR")
	writer := NewWriter(dest, autoCreate, nil)
	return NewPipeline(builder, writer, nil, nil)
}

func TestImportUsesHeuristicMatch(t *testing.T) {
	adapter := &fakeAdapter{supplier: entities.SupplierMouser, part: previewPart()}
	dest := newFakeDestination(testTree()...)
	pipeline := newTestPipeline(adapter, dest, false)

	result, err := pipeline.Import(context.Background(), entities.ImportRequest{
		Supplier:   entities.SupplierMouser,
		PartNumber: "RC0603FR-0710KL",
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Outcome != entities.OutcomeSuccess {
		t.Errorf("Outcome = %s", result.Outcome)
	}
	// The hint "Passive Components / Resistors" resolves under Electronics.
	if result.CategoryID != 3 {
		t.Errorf("CategoryID = %d", result.CategoryID)
	}
}

func TestImportCategoryOverrideWinsOverMatch(t *testing.T) {
	adapter := &fakeAdapter{supplier: entities.SupplierMouser, part: previewPart()}
	dest := newFakeDestination(testTree()...)
	pipeline := newTestPipeline(adapter, dest, false)

	result, err := pipeline.Import(context.Background(), entities.ImportRequest{
		Supplier:   entities.SupplierMouser,
		PartNumber: "RC0603FR-0710KL",
		Overrides: &entities.PartOverrides{
			CategoryPath: []string{"Electronics", "Connectors"},
		},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// The operator's explicit path replaces the heuristic suggestion (id 3).
	if result.CategoryID != 4 {
		t.Errorf("CategoryID = %d", result.CategoryID)
	}
}

func TestImportAppliesFieldOverrides(t *testing.T) {
	adapter := &fakeAdapter{supplier: entities.SupplierMouser, part: previewPart()}
	dest := newFakeDestination(testTree()...)
	pipeline := newTestPipeline(adapter, dest, false)

	result, err := pipeline.Import(context.Background(), entities.ImportRequest{
		Supplier:   entities.SupplierMouser,
		PartNumber: "RC0603FR-0710KL",
		Overrides: &entities.PartOverrides{
			Description: strPtr("10k resistor, general stock"),
		},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Outcome != entities.OutcomeSuccess {
		t.Errorf("Outcome = %s", result.Outcome)
	}
	if len(dest.createdParts) != 1 || dest.createdParts[0].Description != "10k resistor, general stock" {
		t.Errorf("createdParts = %+v", dest.createdParts)
	}
}

func TestImportReFetchesInsteadOfTrustingTheClient(t *testing.T) {
	adapter := &fakeAdapter{supplier: entities.SupplierMouser, part: previewPart()}
	dest := newFakeDestination(testTree()...)
	pipeline := newTestPipeline(adapter, dest, false)

	if _, err := pipeline.Preview(context.Background(), entities.SupplierMouser, "RC0603FR-0710KL"); err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if _, err := pipeline.Import(context.Background(), entities.ImportRequest{
		Supplier:   entities.SupplierMouser,
		PartNumber: "RC0603FR-0710KL",
	}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if adapter.fetches != 2 {
		t.Errorf("expected one fetch per operation, got %d", adapter.fetches)
	}
}

func TestImportFetchErrorYieldsNoWrites(t *testing.T) {
	adapter := &fakeAdapter{supplier: entities.SupplierMouser, err: suppliers.ErrNotFound}
	dest := newFakeDestination(testTree()...)
	pipeline := newTestPipeline(adapter, dest, false)

	result, err := pipeline.Import(context.Background(), entities.ImportRequest{
		Supplier:   entities.SupplierMouser,
		PartNumber: "NOPE",
	})
	if !errors.Is(err, suppliers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if result != nil {
		t.Errorf("result = %+v", result)
	}
	if len(dest.createdParts) != 0 {
		t.Error("part created despite the failed fetch")
	}
}
