package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vercart/storefront/internal/domain/order"
	"github.com/vercart/storefront/internal/payment"
)

// maxWebhookBody bounds payment webhook payloads.
const maxWebhookBody = 64 << 10

// PaymentWebhook receives the payment provider's out-of-band confirmation
// and marks the referenced order paid. The body must carry a valid HMAC
// signature; everything else about the order is already in the ledger.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "unreadable body")
		return
	}

	ev, err := payment.VerifyAndParse(body, r.Header.Get(payment.SignatureHeader), h.secret)
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			respondError(w, r, http.StatusUnauthorized, "invalid signature")
			return
		}
		respondError(w, r, http.StatusBadRequest, "malformed event")
		return
	}

	if ev.Type != payment.EventCheckoutCompleted {
		// Unhandled event types are acknowledged so the provider stops
		// redelivering them.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.orders.MarkPaid(r.Context(), ev.ClientReference, ev.SessionID); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "unknown order reference")
			return
		}
		zctx.From(r.Context()).Error("mark order paid",
			zap.String("order_id", ev.ClientReference), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	zctx.From(r.Context()).Info("order marked paid",
		zap.String("order_id", ev.ClientReference),
		zap.String("session_id", ev.SessionID),
	)
	w.WriteHeader(http.StatusNoContent)
}
