// Package handler exposes the storefront API over HTTP.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/vercart/storefront/internal/domain/checkout"
	"github.com/vercart/storefront/internal/domain/identity"
	"github.com/vercart/storefront/internal/domain/order"
	"github.com/vercart/storefront/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
	// WebhookSecret verifies payment confirmation signatures.
	WebhookSecret []byte
}

// Handler implements the storefront HTTP API, delegating business logic to
// the injected domain services and repositories.
type Handler struct {
	products     product.Repository
	checkout     *checkout.Service
	orders       order.Repository
	verifier     *identity.Verifier
	imageBaseURL string
	secret       []byte
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	checkoutSvc *checkout.Service,
	orders order.Repository,
	verifier *identity.Verifier,
) *Handler {
	return &Handler{
		products:     products,
		checkout:     checkoutSvc,
		orders:       orders,
		verifier:     verifier,
		imageBaseURL: cfg.ImageBaseURL,
		secret:       cfg.WebhookSecret,
	}
}

// Routes returns the API router. Session authentication runs on every route;
// individual handlers decide whether an identity is required.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.sessionAuth)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Post("/cart", h.ResolveCart)
	r.Post("/checkout", h.Checkout)
	r.Get("/orders", h.ListOrders)
	r.Post("/webhook/payment", h.PaymentWebhook)

	return r
}
