package importer

import (
	"github.com/partbridge/partbridge/internal/entities"
)

// Merge applies operator overrides onto a freshly re-fetched canonical part.
// Any field present in the overrides replaces the canonical value; absent
// fields keep the fetched value. The part name is never overridable: it is
// re-derived from the (possibly overridden) MPN, and an override carrying a
// name is ignored, not rejected.
//
// The category path override is deliberately not merged here: the
// operator's explicit category replaces the heuristic match at commit time,
// not the supplier's hint.
func Merge(part entities.CanonicalPart, overrides *entities.PartOverrides) entities.CanonicalPart {
	merged := part

	if overrides != nil {
		if overrides.Description != nil {
			merged.Description = *overrides.Description
		}
		if overrides.Manufacturer != nil {
			merged.Manufacturer = *overrides.Manufacturer
		}
		if overrides.MPN != nil {
			merged.MPN = *overrides.MPN
		}
		if overrides.SupplierSKU != nil {
			merged.SupplierSKU = *overrides.SupplierSKU
		}
		if overrides.SupplierLink != nil {
			merged.SupplierLink = *overrides.SupplierLink
		}
		if overrides.DatasheetURL != nil {
			merged.DatasheetURL = *overrides.DatasheetURL
		}
		if overrides.ImageURL != nil {
			merged.ImageURL = *overrides.ImageURL
		}
		if len(overrides.Parameters) > 0 {
			merged.Parameters = overrides.Parameters
		}
		if len(overrides.PriceBreaks) > 0 {
			merged.PriceBreaks = overrides.PriceBreaks
		}
	}

	// Re-derives the name and re-sorts overridden price breaks.
	_ = merged.Finalize()

	return merged
}
