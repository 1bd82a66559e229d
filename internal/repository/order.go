package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vercart/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, name, email, city, postal_code, street_address, country, line_items, total, paid, payment_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	getOrderByIDSQL = `SELECT id, user_id, name, email, city, postal_code, street_address, country, line_items, total, paid, payment_ref, created_at
		FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, name, email, city, postal_code, street_address, country, line_items, total, paid, payment_ref, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	markOrderPaidSQL = `UPDATE orders SET paid = TRUE, payment_ref = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line item
// snapshots are stored as JSONB.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.LineItems)
	if err != nil {
		return fmt.Errorf("marshaling line items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.Name, o.Email,
		o.Address.City, o.Address.PostalCode, o.Address.StreetAddress, o.Address.Country,
		itemsJSON, o.Total, o.Paid, o.PaymentRef, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns all orders owned by the given user, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// MarkPaid flips the paid flag and stores the provider's payment reference.
func (r *OrderRepository) MarkPaid(ctx context.Context, id, paymentRef string) error {
	tag, err := r.pool.Exec(ctx, markOrderPaidSQL, id, paymentRef)
	if err != nil {
		return fmt.Errorf("marking order %q paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		total     decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Name, &o.Email,
		&o.Address.City, &o.Address.PostalCode, &o.Address.StreetAddress, &o.Address.Country,
		&itemsJSON, &total, &o.Paid, &o.PaymentRef, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Total = total
	if err := json.Unmarshal(itemsJSON, &o.LineItems); err != nil {
		return o, fmt.Errorf("unmarshaling line items for order %q: %w", o.ID, err)
	}
	return o, nil
}
