package identity

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessionRepo struct {
	byHash map[string]*Session
}

func (m *mockSessionRepo) FindByTokenHash(_ context.Context, hash string) (*Session, error) {
	s, ok := m.byHash[hash]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func TestVerify_KnownToken(t *testing.T) {
	v := NewVerifier(nil, []byte("pepper"))
	hash := v.HashToken("token-123")

	repo := &mockSessionRepo{byHash: map[string]*Session{
		hash: {TokenHash: hash, UserID: "u1", Email: "a@example.com", Name: "Ada"},
	}}
	v = NewVerifier(repo, []byte("pepper"))

	id, err := v.Verify(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, "a@example.com", id.Email)
	assert.Equal(t, "Ada", id.Name)
}

func TestVerify_UnknownToken(t *testing.T) {
	v := NewVerifier(&mockSessionRepo{byHash: map[string]*Session{}}, []byte("pepper"))

	_, err := v.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerify_WrongPepper(t *testing.T) {
	mint := NewVerifier(nil, []byte("pepper-a"))
	hash := mint.HashToken("token-123")

	repo := &mockSessionRepo{byHash: map[string]*Session{
		hash: {TokenHash: hash, UserID: "u1"},
	}}
	v := NewVerifier(repo, []byte("pepper-b"))

	_, err := v.Verify(context.Background(), "token-123")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{ID: "u1", Email: "a@example.com"})

	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.ID)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
