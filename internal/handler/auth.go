package handler

import (
	"net/http"
	"strings"

	"github.com/vercart/storefront/internal/domain/identity"
)

// sessionAuth resolves the caller's identity from a Bearer session token and
// injects it into the request context. Requests without an Authorization
// header pass through unauthenticated; a header carrying an invalid token is
// rejected outright so a client with a stale session learns about it.
func (h *Handler) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		id, err := h.verifier.Verify(r.Context(), token)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
	})
}
