package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/inventree"
)

// Writer commits a merged canonical part to the destination system.
//
// The destination has no transaction primitive spanning these calls, so the
// writer never rolls back: a failure before the base part exists aborts with
// outcome "failed" and no orphan sub-resources; failures after it produce
// outcome "partial" with every failed sub-resource enumerated so the
// operator can complete them by hand.
type Writer struct {
	destination Destination
	autoCreate  bool
	log         *zap.Logger
}

// NewWriter creates a destination writer. With autoCreate enabled, missing
// category path segments are created on demand; disabled, an unresolved
// segment aborts the import.
func NewWriter(destination Destination, autoCreate bool, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{destination: destination, autoCreate: autoCreate, log: log}
}

// Commit creates the part and its sub-resources in order: category, base
// part, supplier link, parameters, price breaks. The returned error is
// non-nil only when the outcome is "failed".
func (w *Writer) Commit(ctx context.Context, part entities.CanonicalPart, categoryPath []string) (entities.ImportResult, error) {
	result := entities.ImportResult{Outcome: entities.OutcomeFailed}

	categoryID, err := w.resolveCategory(ctx, categoryPath)
	if err != nil {
		return result, err
	}
	result.CategoryID = categoryID
	result.CategoryPath = categoryPath

	partID, err := w.destination.CreatePart(ctx, inventree.CreatePartRequest{
		Name:         part.Name,
		Description:  part.Description,
		CategoryID:   categoryID,
		Purchaseable: true,
		Trackable:    false,
		Link:         part.DatasheetURL,
	})
	if err != nil {
		return result, fmt.Errorf("failed to create part: %w", err)
	}
	result.PartID = partID

	result.SubResources = append(result.SubResources, w.createSupplierLink(ctx, partID, part, &result))

	for _, param := range part.Parameters {
		sub := entities.SubResourceResult{Kind: entities.SubResourceParameter, Name: param.Name}
		if id, err := w.destination.CreateParameter(ctx, partID, param.Name, param.Value); err != nil {
			sub.Error = err.Error()
		} else {
			sub.ID = id
		}
		result.SubResources = append(result.SubResources, sub)
	}

	for _, pb := range part.PriceBreaks {
		sub := entities.SubResourceResult{
			Kind: entities.SubResourcePriceBreak,
			Name: fmt.Sprintf("quantity %d", pb.Quantity),
		}
		if id, err := w.destination.CreateInternalPrice(ctx, partID, pb.Quantity, pb.Price); err != nil {
			sub.Error = err.Error()
		} else {
			sub.ID = id
		}
		result.SubResources = append(result.SubResources, sub)
	}

	failed := entities.FailedSubResources(result.SubResources)
	if len(failed) == 0 {
		result.Outcome = entities.OutcomeSuccess
	} else {
		result.Outcome = entities.OutcomePartial
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, string(f.Kind)+" "+f.Name)
		}
		w.log.Warn("part created with failed sub-resources",
			zap.Int("part_id", partID),
			zap.Strings("failed", names))
	}

	return result, nil
}

func (w *Writer) createSupplierLink(ctx context.Context, partID int, part entities.CanonicalPart, result *entities.ImportResult) entities.SubResourceResult {
	sub := entities.SubResourceResult{Kind: entities.SubResourceSupplierLink, Name: part.SupplierSKU}

	switch {
	case part.SupplierCompanyID <= 0:
		sub.Error = fmt.Sprintf("no destination company id configured for supplier %s", part.Supplier)
	case part.SupplierSKU == "":
		sub.Error = "supplier did not report a SKU"
	default:
		id, err := w.destination.CreateSupplierPart(ctx, inventree.CreateSupplierPartRequest{
			PartID:            partID,
			SupplierCompanyID: part.SupplierCompanyID,
			SKU:               part.SupplierSKU,
			MPN:               part.MPN,
			Link:              part.SupplierLink,
		})
		if err != nil {
			sub.Error = err.Error()
		} else {
			sub.ID = id
			result.SupplierPartID = id
		}
	}
	return sub
}

// resolveCategory walks the requested path through the destination tree,
// creating missing segments when auto-creation is enabled. Returns the id of
// the deepest category.
func (w *Writer) resolveCategory(ctx context.Context, path []string) (int, error) {
	if len(path) == 0 {
		return 0, &CategoryNotFoundError{}
	}

	categories, err := w.destination.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list destination categories: %w", err)
	}

	// Deterministic child lookup: lowest id wins for duplicate names.
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	children := make(map[string]inventree.Category)
	for _, category := range categories {
		key := childKey(category.Parent, category.Name)
		if _, exists := children[key]; !exists {
			children[key] = category
		}
	}

	var parent *int
	currentID := 0
	for _, segment := range path {
		if existing, ok := children[childKey(parent, segment)]; ok {
			id := existing.ID
			parent = &id
			currentID = id
			continue
		}

		if !w.autoCreate {
			return 0, &CategoryNotFoundError{Path: path, Segment: segment}
		}

		created, err := w.destination.CreateCategory(ctx, segment, parent)
		if err != nil {
			return 0, fmt.Errorf("failed to create category %q: %w", segment, err)
		}
		w.log.Info("created destination category",
			zap.String("name", segment),
			zap.Int("id", created.ID))

		id := created.ID
		children[childKey(parent, segment)] = created
		parent = &id
		currentID = id
	}

	return currentID, nil
}

func childKey(parent *int, name string) string {
	if parent == nil {
		return "/" + strings.ToLower(name)
	}
	return fmt.Sprintf("%d/%s", *parent, strings.ToLower(name))
}
