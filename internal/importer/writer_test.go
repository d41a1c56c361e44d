package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/inventree"
)

// fakeDestination implements Destination in memory and records every write.
type fakeDestination struct {
	categories []inventree.Category
	nextID     int

	categoriesErr   error
	createPartErr   error
	supplierPartErr error
	parameterErrFor string
	priceErrFor     int

	createdParts         []inventree.CreatePartRequest
	createdSupplierParts []inventree.CreateSupplierPartRequest
	createdParameters    []string
	createdPrices        []int
	createdCategories    []string
}

func newFakeDestination(categories ...inventree.Category) *fakeDestination {
	return &fakeDestination{categories: categories, nextID: 100}
}

func (f *fakeDestination) allocID() int {
	f.nextID++
	return f.nextID
}

func (f *fakeDestination) Categories(ctx context.Context) ([]inventree.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeDestination) CreateCategory(ctx context.Context, name string, parent *int) (inventree.Category, error) {
	created := inventree.Category{ID: f.allocID(), Name: name, Parent: parent}
	f.categories = append(f.categories, created)
	f.createdCategories = append(f.createdCategories, name)
	return created, nil
}

func (f *fakeDestination) CreatePart(ctx context.Context, req inventree.CreatePartRequest) (int, error) {
	if f.createPartErr != nil {
		return 0, f.createPartErr
	}
	f.createdParts = append(f.createdParts, req)
	return f.allocID(), nil
}

func (f *fakeDestination) CreateSupplierPart(ctx context.Context, req inventree.CreateSupplierPartRequest) (int, error) {
	if f.supplierPartErr != nil {
		return 0, f.supplierPartErr
	}
	f.createdSupplierParts = append(f.createdSupplierParts, req)
	return f.allocID(), nil
}

func (f *fakeDestination) CreateParameter(ctx context.Context, partID int, name, value string) (int, error) {
	if f.parameterErrFor != "" && name == f.parameterErrFor {
		return 0, fmt.Errorf("parameter %q rejected", name)
	}
	f.createdParameters = append(f.createdParameters, name)
	return f.allocID(), nil
}

func (f *fakeDestination) CreateInternalPrice(ctx context.Context, partID, quantity int, price decimal.Decimal) (int, error) {
	if f.priceErrFor != 0 && quantity == f.priceErrFor {
		return 0, fmt.Errorf("price break for quantity %d rejected", quantity)
	}
	f.createdPrices = append(f.createdPrices, quantity)
	return f.allocID(), nil
}

var _ Destination = (*fakeDestination)(nil)

func commitPart() entities.CanonicalPart {
	return entities.CanonicalPart{
		Name:              "RC0603FR-0710KL",
		Description:       "RES SMD 10K OHM 1% 1/10W 0603",
		MPN:               "RC0603FR-0710KL",
		Supplier:          entities.SupplierMouser,
		SupplierCompanyID: 3,
		SupplierSKU:       "603-RC0603FR-0710KL",
		Parameters: []entities.Parameter{
			{Name: "Resistance", Value: "10 kOhms"},
			{Name: "Tolerance", Value: "1%"},
		},
		PriceBreaks: []entities.PriceBreak{
			{Quantity: 1, Price: decimal.RequireFromString("0.10"), Currency: "EUR"},
			{Quantity: 100, Price: decimal.RequireFromString("0.05"), Currency: "EUR"},
		},
	}
}

func resistorTree() []inventree.Category {
	return []inventree.Category{
		{ID: 1, Name: "Electronics", Parent: nil},
		{ID: 2, Name: "Resistors", Parent: intPtr(1)},
	}
}

func TestCommitSuccess(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, false, nil)

	result, err := writer.Commit(context.Background(), commitPart(), []string{"Electronics", "Resistors"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if result.Outcome != entities.OutcomeSuccess {
		t.Errorf("Outcome = %s", result.Outcome)
	}
	if result.CategoryID != 2 {
		t.Errorf("CategoryID = %d", result.CategoryID)
	}
	if result.PartID == 0 || result.SupplierPartID == 0 {
		t.Errorf("missing identifiers: %+v", result)
	}
	// supplier link + 2 parameters + 2 price breaks
	if len(result.SubResources) != 5 {
		t.Errorf("SubResources = %v", result.SubResources)
	}
	if len(dest.createdParameters) != 2 || len(dest.createdPrices) != 2 {
		t.Errorf("writes: parameters=%v prices=%v", dest.createdParameters, dest.createdPrices)
	}
}

func TestCommitPartialOnSubResourceFailure(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	dest.parameterErrFor = "Tolerance"
	writer := NewWriter(dest, false, nil)

	result, err := writer.Commit(context.Background(), commitPart(), []string{"Electronics", "Resistors"})
	if err != nil {
		t.Fatalf("a sub-resource failure must not fail the commit: %v", err)
	}

	if result.Outcome != entities.OutcomePartial {
		t.Fatalf("Outcome = %s", result.Outcome)
	}
	failed := entities.FailedSubResources(result.SubResources)
	if len(failed) != 1 {
		t.Fatalf("failed = %v", failed)
	}
	if failed[0].Kind != entities.SubResourceParameter || failed[0].Name != "Tolerance" {
		t.Errorf("failed sub-resource = %+v", failed[0])
	}
	// The remaining sub-resources were still attempted.
	if len(dest.createdPrices) != 2 {
		t.Errorf("price breaks after the failed parameter were skipped: %v", dest.createdPrices)
	}
}

func TestCommitPartialWhenCompanyIDMissing(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, false, nil)

	part := commitPart()
	part.SupplierCompanyID = 0

	result, err := writer.Commit(context.Background(), part, []string{"Electronics", "Resistors"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Outcome != entities.OutcomePartial {
		t.Fatalf("Outcome = %s", result.Outcome)
	}
	failed := entities.FailedSubResources(result.SubResources)
	if len(failed) != 1 || failed[0].Kind != entities.SubResourceSupplierLink {
		t.Fatalf("failed = %v", failed)
	}
	if !strings.Contains(failed[0].Error, "no destination company id") {
		t.Errorf("Error = %q", failed[0].Error)
	}
	if len(dest.createdSupplierParts) != 0 {
		t.Errorf("supplier link created without a company id")
	}
}

func TestCommitFailsWithoutOrphansOnPartError(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	dest.createPartErr = errors.New("destination rejected the part")
	writer := NewWriter(dest, false, nil)

	result, err := writer.Commit(context.Background(), commitPart(), []string{"Electronics", "Resistors"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if result.Outcome != entities.OutcomeFailed {
		t.Errorf("Outcome = %s", result.Outcome)
	}
	if len(dest.createdSupplierParts) != 0 || len(dest.createdParameters) != 0 || len(dest.createdPrices) != 0 {
		t.Error("sub-resources written after a failed part creation")
	}
}

func TestCommitCategoryNotFound(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, false, nil)

	_, err := writer.Commit(context.Background(), commitPart(), []string{"Electronics", "Capacitors"})
	if !IsCategoryNotFound(err) {
		t.Fatalf("expected CategoryNotFoundError, got %v", err)
	}
	if len(dest.createdParts) != 0 {
		t.Error("part created despite the unresolved category")
	}
}

func TestCommitEmptyCategoryPath(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, true, nil)

	_, err := writer.Commit(context.Background(), commitPart(), nil)
	if !IsCategoryNotFound(err) {
		t.Fatalf("expected CategoryNotFoundError, got %v", err)
	}
	if !strings.Contains(err.Error(), "no destination category selected") {
		t.Errorf("error = %v", err)
	}
}

func TestCommitAutoCreatesMissingSegments(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, true, nil)

	result, err := writer.Commit(context.Background(), commitPart(), []string{"Electronics", "Capacitors", "Ceramic"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Outcome != entities.OutcomeSuccess {
		t.Errorf("Outcome = %s", result.Outcome)
	}
	if len(dest.createdCategories) != 2 {
		t.Fatalf("createdCategories = %v", dest.createdCategories)
	}
	if dest.createdCategories[0] != "Capacitors" || dest.createdCategories[1] != "Ceramic" {
		t.Errorf("createdCategories = %v", dest.createdCategories)
	}
}

func TestResolveCategoryIsCaseInsensitive(t *testing.T) {
	dest := newFakeDestination(resistorTree()...)
	writer := NewWriter(dest, false, nil)

	result, err := writer.Commit(context.Background(), commitPart(), []string{"electronics", "RESISTORS"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.CategoryID != 2 {
		t.Errorf("CategoryID = %d", result.CategoryID)
	}
	if len(dest.createdCategories) != 0 {
		t.Errorf("existing categories recreated: %v", dest.createdCategories)
	}
}
