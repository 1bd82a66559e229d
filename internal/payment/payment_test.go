package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRedirect_Success(t *testing.T) {
	var got sessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		SecretKey:  "sk_test",
		SuccessURL: "https://shop.example.com/cart?success=1",
		CancelURL:  "https://shop.example.com/cart?canceled=1",
	})

	url, err := c.CreateRedirect(context.Background(), "order-1",
		Customer{Name: "Ada", Email: "a@example.com"},
		[]LineItem{{Name: "Widget", UnitAmount: 1050, Quantity: 2}},
	)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", url)

	assert.Equal(t, "order-1", got.ClientReference)
	assert.Equal(t, "a@example.com", got.CustomerEmail)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, int64(1050), got.LineItems[0].UnitAmount)
}

func TestCreateRedirect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.CreateRedirect(context.Background(), "order-1", Customer{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateRedirect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.CreateRedirect(context.Background(), "order-1", Customer{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1050), MinorUnits(decimal.RequireFromString("10.50")))
	assert.Equal(t, int64(100), MinorUnits(decimal.NewFromInt(1)))
	assert.Equal(t, int64(33), MinorUnits(decimal.RequireFromString("0.333")))
}

func TestVerifyAndParse(t *testing.T) {
	secret := []byte("whsec")
	body := []byte(`{"type":"checkout.session.completed","session_id":"cs_1","client_reference_id":"order-1"}`)

	ev, err := VerifyAndParse(body, Sign(body, secret), secret)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "order-1", ev.ClientReference)
}

func TestVerifyAndParse_BadSignature(t *testing.T) {
	body := []byte(`{"type":"checkout.session.completed"}`)

	_, err := VerifyAndParse(body, Sign(body, []byte("other")), []byte("whsec"))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = VerifyAndParse(body, "not-hex", []byte("whsec"))
	assert.ErrorIs(t, err, ErrBadSignature)
}
