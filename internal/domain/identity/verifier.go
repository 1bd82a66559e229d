package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrInvalidSession is returned when a session token does not resolve to an
// active session. The cause is deliberately not distinguished.
var ErrInvalidSession = errors.New("invalid session")

// Verifier authenticates session tokens by computing their HMAC-SHA256 hash
// with a server-side pepper and looking the hash up in the session store.
type Verifier struct {
	sessions Repository
	pepper   []byte
}

// NewVerifier creates a Verifier with the given session repository and HMAC
// pepper.
func NewVerifier(sessions Repository, pepper []byte) *Verifier {
	return &Verifier{
		sessions: sessions,
		pepper:   pepper,
	}
}

// HashToken computes the hex-encoded HMAC-SHA256 of a raw session token.
// The sign-in flow uses the same function when storing new sessions.
func (v *Verifier) HashToken(token string) string {
	mac := hmac.New(sha256.New, v.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify resolves a raw session token to an Identity. It returns
// ErrInvalidSession for unknown, expired, or malformed tokens.
func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	mac := hmac.New(sha256.New, v.pepper)
	mac.Write([]byte(token))
	hash := mac.Sum(nil)

	sess, err := v.sessions.FindByTokenHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return Identity{}, ErrInvalidSession
	}

	// Constant-time comparison guards against timing side-channels even
	// though the lookup already succeeded.
	stored, err := hex.DecodeString(sess.TokenHash)
	if err != nil {
		return Identity{}, ErrInvalidSession
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return Identity{}, ErrInvalidSession
	}

	return Identity{
		ID:    sess.UserID,
		Email: sess.Email,
		Name:  sess.Name,
	}, nil
}
