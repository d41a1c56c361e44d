package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Supplier identifies a supported parts supplier.
type Supplier string

const (
	SupplierMouser  Supplier = "mouser"
	SupplierDigiKey Supplier = "digikey"
)

// Valid reports whether the supplier is one of the supported values.
func (s Supplier) Valid() bool {
	return s == SupplierMouser || s == SupplierDigiKey
}

// DisplayName returns the human-readable supplier name.
func (s Supplier) DisplayName() string {
	switch s {
	case SupplierMouser:
		return "Mouser"
	case SupplierDigiKey:
		return "Digi-Key"
	default:
		return string(s)
	}
}

// Parameter is a single technical attribute reported by a supplier.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PriceBreak is one quantity/price step of a supplier's price ladder.
type PriceBreak struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// CanonicalPart is the normalized, supplier-agnostic representation of a
// purchasable component. It is built fresh on every fetch; optional fields
// that a supplier did not report stay nil/empty rather than zero-valued.
type CanonicalPart struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Manufacturer      string       `json:"manufacturer"`
	MPN               string       `json:"mpn"`
	Supplier          Supplier     `json:"supplier"`
	SupplierCompanyID int          `json:"supplier_company_id,omitempty"`
	SupplierSKU       string       `json:"supplier_sku"`
	SupplierLink      string       `json:"supplier_link,omitempty"`
	CategoryHint      []string     `json:"category_hint,omitempty"`
	DatasheetURL      string       `json:"datasheet_url,omitempty"`
	ImageURL          string       `json:"image_url,omitempty"`
	Stock             *int         `json:"stock,omitempty"`
	LeadTimeWeeks     *float64     `json:"lead_time_weeks,omitempty"`
	Parameters        []Parameter  `json:"parameters"`
	PriceBreaks       []PriceBreak `json:"price_breaks"`
}

// DeriveName returns the canonical part name. The name is always derived
// from the manufacturer part number and is not freely editable; the
// supplier SKU is the fallback for parts without an MPN.
func (p *CanonicalPart) DeriveName() string {
	if p.MPN != "" {
		return p.MPN
	}
	return p.SupplierSKU
}

// Finalize enforces the canonical invariants on a freshly fetched or merged
// part: the name follows the MPN, price breaks are sorted by ascending
// quantity with duplicate quantities dropped, and all breaks share the
// currency of the first one. Returns human-readable warnings for anything
// it had to repair.
func (p *CanonicalPart) Finalize() []string {
	var warnings []string

	p.Name = p.DeriveName()

	if len(p.PriceBreaks) == 0 {
		return warnings
	}

	sort.SliceStable(p.PriceBreaks, func(i, j int) bool {
		return p.PriceBreaks[i].Quantity < p.PriceBreaks[j].Quantity
	})

	currency := p.PriceBreaks[0].Currency
	kept := p.PriceBreaks[:0]
	lastQuantity := -1
	for _, pb := range p.PriceBreaks {
		if pb.Quantity <= 0 {
			continue
		}
		if pb.Quantity == lastQuantity {
			warnings = append(warnings, fmt.Sprintf("duplicate price break for quantity %d, keeping first", pb.Quantity))
			continue
		}
		if pb.Currency != currency {
			warnings = append(warnings, fmt.Sprintf("price break for quantity %d reported in %s instead of %s, dropped", pb.Quantity, pb.Currency, currency))
			continue
		}
		kept = append(kept, pb)
		lastQuantity = pb.Quantity
	}
	p.PriceBreaks = kept

	return warnings
}

// CategoryMatch is a resolved path in the destination category taxonomy.
// A nil *CategoryMatch means no confident match was found.
type CategoryMatch struct {
	Path []string `json:"path"`
}

// ImportPreview is the read-only dry run returned to the operator before an
// import is committed.
type ImportPreview struct {
	Supplier        Supplier       `json:"supplier"`
	SupplierName    string         `json:"supplier_name"`
	PartNumber      string         `json:"part_number"`
	MatchCount      int            `json:"match_count"`
	Part            CanonicalPart  `json:"part"`
	MatchedCategory *CategoryMatch `json:"matched_category,omitempty"`
	Warnings        []string       `json:"warnings"`
}

// PartOverrides carries the subset of canonical fields the operator edited
// in the review step. Nil pointers and empty slices mean "keep the fetched
// value". A Name override is accepted but ignored: the name is always
// derived from the MPN.
type PartOverrides struct {
	Name         *string      `json:"name,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Manufacturer *string      `json:"manufacturer,omitempty"`
	MPN          *string      `json:"mpn,omitempty"`
	SupplierSKU  *string      `json:"supplier_sku,omitempty"`
	SupplierLink *string      `json:"supplier_link,omitempty"`
	CategoryPath []string     `json:"category_path,omitempty"`
	DatasheetURL *string      `json:"datasheet_url,omitempty"`
	ImageURL     *string      `json:"image_url,omitempty"`
	Parameters   []Parameter  `json:"parameters,omitempty"`
	PriceBreaks  []PriceBreak `json:"price_breaks,omitempty"`
}

// ImportRequest is one import call: the (supplier, part number) pair from
// the original preview plus the operator's edits.
type ImportRequest struct {
	Supplier   Supplier       `json:"supplier"`
	PartNumber string         `json:"part_number"`
	Overrides  *PartOverrides `json:"overrides,omitempty"`
}

// Outcome classifies the result of a destination commit.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// SubResourceKind names the kind of a record attached to a created part.
type SubResourceKind string

const (
	SubResourceSupplierLink SubResourceKind = "supplier_link"
	SubResourceParameter    SubResourceKind = "parameter"
	SubResourcePriceBreak   SubResourceKind = "price_break"
)

// SubResourceResult reports one sub-resource creation attempt. Error is
// empty for created records; failed records keep ID zero.
type SubResourceResult struct {
	Kind  SubResourceKind `json:"kind"`
	Name  string          `json:"name"`
	ID    int             `json:"id,omitempty"`
	Error string          `json:"error,omitempty"`
}

// FailedSubResources returns the sub-resources that could not be created.
func FailedSubResources(results []SubResourceResult) []SubResourceResult {
	var failed []SubResourceResult
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}
	return failed
}

// ImportResult is the outcome of one import operation. An outcome of
// "success" means the destination now holds the part, its supplier link and
// every parameter and price break present at commit time; "partial"
// enumerates exactly which sub-resource calls failed so the operator can
// complete them by hand. Already created records are never rolled back.
type ImportResult struct {
	Outcome        Outcome             `json:"outcome"`
	PartID         int                 `json:"part_id,omitempty"`
	SupplierPartID int                 `json:"supplier_part_id,omitempty"`
	CategoryID     int                 `json:"category_id,omitempty"`
	CategoryPath   []string            `json:"category_path,omitempty"`
	SubResources   []SubResourceResult `json:"sub_resources"`
}
