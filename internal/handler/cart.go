package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// resolveCartRequest carries the cart's ordered product ID sequence.
// Duplicate IDs denote quantity; the server does not compute quantities
// here, clients derive them by counting.
type resolveCartRequest struct {
	IDs []string `json:"ids"`
}

// ResolveCart hydrates the distinct products referenced by the submitted
// cart. Unauthenticated callers get an empty list, and unknown IDs are
// silently dropped, so a stale client cart never errors.
func (h *Handler) ResolveCart(w http.ResponseWriter, r *http.Request) {
	var req resolveCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	products, err := h.checkout.Resolve(r.Context(), req.IDs)
	if err != nil {
		zctx.From(r.Context()).Error("resolve cart", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	respondJSON(w, r, http.StatusOK, out)
}
