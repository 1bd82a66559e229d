package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vercart/storefront/internal/domain/checkout"
)

// idempotencyKeyHeader deduplicates retried checkout submissions.
const idempotencyKeyHeader = "Idempotency-Key"

// checkoutRequest is the checkout form plus the cart's product ID sequence.
type checkoutRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	City          string   `json:"city"`
	PostalCode    string   `json:"postalCode"`
	StreetAddress string   `json:"streetAddress"`
	Country       string   `json:"country"`
	ProductIDs    []string `json:"cartProducts"`
}

// checkoutResponse carries the created order reference and the payment
// redirect target.
type checkoutResponse struct {
	OrderID string `json:"order_id"`
	URL     string `json:"url"`
}

// Checkout converts the caller's cart into a persisted order and responds
// with the payment redirect URL. A repeated Idempotency-Key replays the
// original order instead of creating a second one.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.checkout.Submit(r.Context(), checkout.SubmitRequest{
		Name:           req.Name,
		Email:          req.Email,
		City:           req.City,
		PostalCode:     req.PostalCode,
		StreetAddress:  req.StreetAddress,
		Country:        req.Country,
		ProductIDs:     req.ProductIDs,
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
	if err != nil {
		h.respondCheckoutError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, checkoutResponse{
		OrderID: result.Order.ID,
		URL:     result.RedirectURL,
	})
}

func (h *Handler) respondCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		respondError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, r, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, r, http.StatusConflict, "checkout already in progress")
	default:
		var pe *checkout.PaymentError
		if errors.As(err, &pe) {
			// The order exists and is unpaid; hand its reference back so a
			// retry does not create a duplicate.
			zctx.From(r.Context()).Error("payment redirect failed",
				zap.String("order_id", pe.OrderID), zap.Error(err))
			respondJSON(w, r, http.StatusBadGateway, errorResponse{
				Code:    http.StatusBadGateway,
				Message: "payment provider unavailable, order saved",
				OrderID: pe.OrderID,
			})
			return
		}
		zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}
