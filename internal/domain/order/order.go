package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is a persisted record of a checkout. It is created once per
// successful submission and append-only thereafter: the only later mutation
// is the paid flag flipping when the payment collaborator confirms payment.
type Order struct {
	ID         string
	UserID     string
	Name       string
	Email      string
	Address    Address
	LineItems  []LineItem
	Total      decimal.Decimal
	Paid       bool
	PaymentRef string
	CreatedAt  time.Time
}

// Address holds the shipping destination captured at checkout.
type Address struct {
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	StreetAddress string `json:"street_address"`
	Country       string `json:"country"`
}

// LineItem is a priced snapshot embedded in an order. It deliberately copies
// the product title and unit price instead of referencing the live product,
// so later catalog changes never retroactively affect past orders.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Repository defines persistence operations for the order ledger.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByUser returns all orders owned by the given user, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// MarkPaid flips the paid flag and records the provider's payment
	// reference. Called from the payment confirmation webhook.
	MarkPaid(ctx context.Context, id, paymentRef string) error
}
