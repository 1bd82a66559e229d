// Package payment integrates the external payment collaborator.
//
// The collaborator is a hosted-checkout provider: the storefront creates a
// payment session carrying the order's line items and gets back a redirect
// URL for the client. Payment confirmation arrives later, out of band, via a
// signed webhook that references the order.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when the payment collaborator cannot be
// reached or responds with a server error. The order created before the
// call remains persisted and unpaid.
var ErrUnavailable = errors.New("payment provider unavailable")

// Customer holds the contact details attached to a payment session.
type Customer struct {
	Name  string
	Email string
}

// LineItem is a single priced line submitted to the payment provider.
// UnitAmount is in minor currency units (e.g. cents).
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

// Session is the provider's response to a session creation request.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway creates hosted-checkout redirect targets for orders.
type Gateway interface {
	// CreateRedirect creates a payment session for the given order reference
	// and returns the URL the client should be redirected to. The orderID is
	// attached as the session's client reference so the confirmation webhook
	// can locate the order.
	CreateRedirect(ctx context.Context, orderID string, customer Customer, items []LineItem) (string, error)
}

// MinorUnits converts a decimal price to minor currency units, rounding to
// the nearest cent.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
