package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_DuplicatesDenoteQuantity(t *testing.T) {
	c := New()
	c.Add("p1")
	c.Add("p1")
	c.Add("p2")

	assert.Equal(t, []string{"p1", "p1", "p2"}, c.Items())
	assert.Equal(t, 2, c.Quantity("p1"))
	assert.Equal(t, 1, c.Quantity("p2"))
	assert.Equal(t, 3, c.Len())
}

func TestRemove_DeletesAtMostOneOccurrence(t *testing.T) {
	c := New()
	c.Add("p1")
	c.Add("p2")
	c.Add("p1")

	c.Remove("p1")

	assert.Equal(t, []string{"p1", "p2"}, c.Items())
	assert.Equal(t, 1, c.Quantity("p1"))
}

func TestRemove_AbsentIDIsNoop(t *testing.T) {
	c := New()
	c.Add("p1")

	c.Remove("missing")

	assert.Equal(t, []string{"p1"}, c.Items())
}

func TestClear(t *testing.T) {
	c := New()
	c.Add("p1")
	c.Add("p2")

	c.Clear()

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.Len())
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add("p1")

	items := c.Items()
	items[0] = "mutated"

	assert.Equal(t, []string{"p1"}, c.Items())
}

func TestJSONRoundTrip(t *testing.T) {
	c := New()
	c.Add("p1")
	c.Add("p1")
	c.Add("p2")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `["p1","p1","p2"]`, string(data))

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, c.Items(), restored.Items())
}

func TestJSONEmptyCart(t *testing.T) {
	data, err := json.Marshal(New())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
