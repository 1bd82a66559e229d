package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/go-faster/errors"
)

// SignatureHeader carries the provider's HMAC signature on webhook requests.
const SignatureHeader = "X-Payment-Signature"

// ErrBadSignature is returned when a webhook body does not match its
// signature header.
var ErrBadSignature = errors.New("webhook signature mismatch")

// Event is a payment confirmation delivered by the provider's webhook.
type Event struct {
	Type            string `json:"type"`
	SessionID       string `json:"session_id"`
	ClientReference string `json:"client_reference_id"`
}

// EventCheckoutCompleted signals that the hosted checkout for a session was
// paid. The ClientReference carries the order ID to mark paid.
const EventCheckoutCompleted = "checkout.session.completed"

// VerifyAndParse checks the HMAC-SHA256 signature of a raw webhook body
// against the shared webhook secret, then decodes the event.
func VerifyAndParse(body []byte, signature string, secret []byte) (*Event, error) {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	want := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(want, got) {
		return nil, ErrBadSignature
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, errors.Wrap(err, "decode webhook event")
	}
	return &ev, nil
}

// Sign computes the hex signature for a webhook body. Used by tests and by
// development tooling that emulates the provider.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
