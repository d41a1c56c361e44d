package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/suppliers"
)

// PreviewBuilder composes a supplier fetch and a category match into a
// reviewable proposal. It performs no writes: the destination system is only
// read for its category listing.
type PreviewBuilder struct {
	suppliers       *suppliers.Registry
	destination     CategorySource
	defaultCurrency string
}

// NewPreviewBuilder creates a preview builder.
func NewPreviewBuilder(registry *suppliers.Registry, destination CategorySource, defaultCurrency string) *PreviewBuilder {
	return &PreviewBuilder{
		suppliers:       registry,
		destination:     destination,
		defaultCurrency: defaultCurrency,
	}
}

// Build fetches the part from the supplier, normalizes it and proposes a
// destination category. Warnings accumulate from both stages; a failed
// category listing degrades to "no suggestion" rather than failing the
// preview.
func (b *PreviewBuilder) Build(ctx context.Context, supplier entities.Supplier, partNumber string) (*entities.ImportPreview, error) {
	partNumber = strings.TrimSpace(partNumber)
	if partNumber == "" {
		return nil, ErrEmptyPartNumber
	}

	adapter, err := b.suppliers.Get(supplier)
	if err != nil {
		return nil, err
	}

	part, err := adapter.Fetch(ctx, partNumber)
	if err != nil {
		return nil, err
	}

	warnings := part.Finalize()
	warnings = append(warnings, b.fieldWarnings(part)...)

	preview := &entities.ImportPreview{
		Supplier:     supplier,
		SupplierName: adapter.DisplayName(),
		PartNumber:   partNumber,
		Part:         *part,
	}

	categories, err := b.destination.Categories(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("destination category listing unavailable: %v", err))
	} else {
		match := MatchCategory(part.CategoryHint, categories)
		preview.MatchCount = match.Considered
		preview.MatchedCategory = match.Match
		warnings = append(warnings, match.Warnings...)
	}

	preview.Warnings = warnings
	return preview, nil
}

func (b *PreviewBuilder) fieldWarnings(part *entities.CanonicalPart) []string {
	var warnings []string
	if part.DatasheetURL == "" {
		warnings = append(warnings, "no datasheet found")
	}
	if part.ImageURL == "" {
		warnings = append(warnings, "no product image found")
	}
	if part.Stock == nil {
		warnings = append(warnings, "supplier did not report stock")
	}
	if len(part.PriceBreaks) > 0 && b.defaultCurrency != "" && part.PriceBreaks[0].Currency != b.defaultCurrency {
		warnings = append(warnings, fmt.Sprintf("prices reported in %s; no conversion to %s is performed",
			part.PriceBreaks[0].Currency, b.defaultCurrency))
	}
	return warnings
}
