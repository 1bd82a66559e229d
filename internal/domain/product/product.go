package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. The catalog is
// read-only from the storefront's perspective; a product's price is
// authoritative at the moment it is read.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Images      []string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns products matching any of the given IDs. Unknown IDs
	// are omitted from the result, never reported as an error.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
