package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vercart/storefront/internal/domain/identity"
	"github.com/vercart/storefront/internal/domain/order"
)

// orderResponse is the wire representation of a ledger order.
type orderResponse struct {
	ID        string             `json:"id"`
	Paid      bool               `json:"paid"`
	Total     float64            `json:"total"`
	LineItems []lineItemResponse `json:"line_items"`
	CreatedAt time.Time          `json:"created_at"`
}

type lineItemResponse struct {
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// ListOrders returns the caller's orders, newest first. Ownership is always
// derived from the authenticated session, never from a request parameter.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), caller.ID)
	if err != nil {
		zctx.From(r.Context()).Error("list orders",
			zap.String("user_id", caller.ID), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	respondJSON(w, r, http.StatusOK, out)
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]lineItemResponse, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = lineItemResponse{
			ProductName: li.ProductName,
			UnitPrice:   li.UnitPrice.InexactFloat64(),
			Quantity:    li.Quantity,
		}
	}
	return orderResponse{
		ID:        o.ID,
		Paid:      o.Paid,
		Total:     o.Total.InexactFloat64(),
		LineItems: items,
		CreatedAt: o.CreatedAt,
	}
}
