// Package checkout implements the cart-to-order pipeline: resolving a
// client-held cart against the catalog and converting it into a persisted
// order with a payment redirect.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vercart/storefront/internal/domain/identity"
	"github.com/vercart/storefront/internal/domain/order"
	"github.com/vercart/storefront/internal/domain/product"
	"github.com/vercart/storefront/internal/payment"
)

// Sentinel errors for checkout validation.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmptyCart       = errors.New("cart is empty")
	// ErrSubmissionInFlight is returned when an idempotency key has been
	// claimed by a submission that has not finished persisting its order yet.
	ErrSubmissionInFlight = errors.New("checkout already in progress")
)

// PaymentError reports that an order was persisted but the payment redirect
// could not be obtained. The order remains unpaid and recoverable; OrderID
// lets the client or a support process complete payment linkage later.
type PaymentError struct {
	OrderID string
	Err     error
}

func (e *PaymentError) Error() string {
	return "payment redirect for order " + e.OrderID + ": " + e.Err.Error()
}

func (e *PaymentError) Unwrap() error { return e.Err }

// IdempotencyStore deduplicates checkout submissions by client-supplied key.
type IdempotencyStore interface {
	// Reserve atomically claims the key. It returns false when the key has
	// already been claimed by an earlier submission.
	Reserve(ctx context.Context, key string) (bool, error)
	// Bind records the order created under the key.
	Bind(ctx context.Context, key, orderID string) error
	// Release frees a reserved key whose submission failed before binding
	// an order, so the client can retry with the same key.
	Release(ctx context.Context, key string) error
	// Lookup returns the order ID bound to the key, or "" when the earlier
	// submission has not bound one yet.
	Lookup(ctx context.Context, key string) (string, error)
}

// SubmitRequest holds the checkout form fields plus the cart's ordered
// product ID sequence. Duplicate IDs denote quantity.
type SubmitRequest struct {
	Name          string
	Email         string
	City          string
	PostalCode    string
	StreetAddress string
	Country       string
	ProductIDs    []string
	// IdempotencyKey deduplicates retried submissions. Empty disables
	// deduplication for this request.
	IdempotencyKey string
}

// SubmitResult is a successfully placed (or replayed) checkout.
type SubmitResult struct {
	Order       *order.Order
	RedirectURL string
}

// Service orchestrates cart resolution and checkout submission.
type Service struct {
	products product.Repository
	orders   order.Repository
	gateway  payment.Gateway
	idem     IdempotencyStore
	now      func() time.Time
	newID    func() string
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	products product.Repository,
	orders order.Repository,
	gateway payment.Gateway,
	idem IdempotencyStore,
) *Service {
	return &Service{
		products: products,
		orders:   orders,
		gateway:  gateway,
		idem:     idem,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Resolve hydrates the distinct products referenced by a cart ID sequence.
// Unauthenticated callers get an empty result rather than an error, so the
// cart page degrades gracefully. Unknown IDs are dropped. Resolve is a pure
// read; quantities stay client-derived by counting occurrences.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]product.Product, error) {
	if _, ok := identity.FromContext(ctx); !ok {
		return nil, nil
	}
	if len(ids) == 0 {
		return nil, nil
	}

	distinct := dedupe(ids)
	products, err := s.products.GetByIDs(ctx, distinct)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	return products, nil
}

// Submit converts a cart into exactly one persisted order and obtains a
// payment redirect for it.
//
// Prices are always re-read from the catalog at submission time; nothing
// client-supplied beyond product IDs and quantities (occurrence counts) makes
// it into the line item snapshots. When the payment call fails after the
// order row is written, the order stays persisted unpaid and the returned
// PaymentError carries its ID.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if len(req.ProductIDs) == 0 {
		return nil, ErrEmptyCart
	}

	if missing := missingFields(req); len(missing) > 0 {
		// Accepted for now to match the storefront's lenient form handling,
		// but worth surfacing: these orders ship with incomplete addresses.
		zctx.From(ctx).Warn("checkout submitted with missing customer fields",
			zap.Strings("fields", missing),
			zap.String("user_id", caller.ID),
		)
	}

	// Keys are scoped to the caller so one user's key can never replay, or
	// collide with, another user's order.
	var idemKey string
	if req.IdempotencyKey != "" {
		idemKey = caller.ID + ":" + req.IdempotencyKey
		reserved, err := s.idem.Reserve(ctx, idemKey)
		if err != nil {
			return nil, errors.Wrap(err, "reserve idempotency key")
		}
		if !reserved {
			return s.replay(ctx, idemKey)
		}
	}

	// Re-resolve every ID against the catalog at submission time and derive
	// quantities from occurrence counts.
	lines, total, err := s.priceCart(ctx, req.ProductIDs)
	if err != nil {
		s.releaseKey(ctx, idemKey)
		return nil, err
	}

	o := &order.Order{
		ID:     s.newID(),
		UserID: caller.ID,
		Name:   req.Name,
		Email:  req.Email,
		Address: order.Address{
			City:          req.City,
			PostalCode:    req.PostalCode,
			StreetAddress: req.StreetAddress,
			Country:       req.Country,
		},
		LineItems: lines,
		Total:     total,
		Paid:      false,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.releaseKey(ctx, idemKey)
		return nil, errors.Wrap(err, "create order")
	}

	if idemKey != "" {
		if err := s.idem.Bind(ctx, idemKey, o.ID); err != nil {
			// The order exists; a failed bind only weakens dedup for this key.
			zctx.From(ctx).Warn("bind idempotency key",
				zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	url, err := s.redirectFor(ctx, o)
	if err != nil {
		return nil, &PaymentError{OrderID: o.ID, Err: err}
	}

	return &SubmitResult{Order: o, RedirectURL: url}, nil
}

// releaseKey frees a reserved key after a failed submission. Best effort: a
// failed release only leaves the key to expire with its TTL, so retries with
// it are rejected until then rather than duplicated.
func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(ctx, key); err != nil {
		zctx.From(ctx).Warn("release idempotency key", zap.Error(err))
	}
}

// replay serves a submission whose idempotency key was already claimed: the
// original order is returned with a fresh redirect, and no new row is
// written.
func (s *Service) replay(ctx context.Context, key string) (*SubmitResult, error) {
	orderID, err := s.idem.Lookup(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "lookup idempotency key")
	}
	if orderID == "" {
		return nil, ErrSubmissionInFlight
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "load order %s for replay", orderID)
	}

	url, err := s.redirectFor(ctx, o)
	if err != nil {
		return nil, &PaymentError{OrderID: o.ID, Err: err}
	}
	return &SubmitResult{Order: o, RedirectURL: url}, nil
}

// priceCart builds authoritative line item snapshots from the catalog.
// Quantity is the occurrence count of each ID; line order follows first
// appearance in the cart.
func (s *Service) priceCart(ctx context.Context, ids []string) ([]order.LineItem, decimal.Decimal, error) {
	distinct := dedupe(ids)

	fetched, err := s.products.GetByIDs(ctx, distinct)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	counts := make(map[string]int, len(distinct))
	for _, id := range ids {
		counts[id]++
	}

	lines := make([]order.LineItem, 0, len(distinct))
	total := decimal.Zero
	for _, id := range distinct {
		p, ok := byID[id]
		if !ok {
			// Stale cart entry; contributes nothing.
			continue
		}
		qty := counts[id]
		lines = append(lines, order.LineItem{
			ProductID:   p.ID,
			ProductName: p.Title,
			UnitPrice:   p.Price,
			Quantity:    qty,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	if len(lines) == 0 {
		// Every ID was stale. Treat as an empty cart rather than persisting
		// a zero-line order.
		return nil, decimal.Zero, ErrEmptyCart
	}

	return lines, total.Round(2), nil
}

func (s *Service) redirectFor(ctx context.Context, o *order.Order) (string, error) {
	items := make([]payment.LineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = payment.LineItem{
			Name:       li.ProductName,
			UnitAmount: payment.MinorUnits(li.UnitPrice),
			Quantity:   li.Quantity,
		}
	}
	return s.gateway.CreateRedirect(ctx, o.ID, payment.Customer{
		Name:  o.Name,
		Email: o.Email,
	}, items)
}

// dedupe returns the distinct IDs in first-appearance order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingFields(req SubmitRequest) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"city", req.City},
		{"postal_code", req.PostalCode},
		{"street_address", req.StreetAddress},
		{"country", req.Country},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
