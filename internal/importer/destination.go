package importer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/partbridge/partbridge/internal/inventree"
)

// CategorySource reads the destination category tree. The preview operation
// needs nothing beyond this: previews never write.
type CategorySource interface {
	Categories(ctx context.Context) ([]inventree.Category, error)
}

// Destination is the full capability set the writer needs from the
// parts-management system. *inventree.Client implements it; tests substitute
// fakes.
type Destination interface {
	CategorySource

	CreateCategory(ctx context.Context, name string, parent *int) (inventree.Category, error)
	CreatePart(ctx context.Context, req inventree.CreatePartRequest) (int, error)
	CreateSupplierPart(ctx context.Context, req inventree.CreateSupplierPartRequest) (int, error)
	CreateParameter(ctx context.Context, partID int, name, value string) (int, error)
	CreateInternalPrice(ctx context.Context, partID, quantity int, price decimal.Decimal) (int, error)
}

var _ Destination = (*inventree.Client)(nil)
