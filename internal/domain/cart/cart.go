// Package cart implements the client-held shopping cart.
//
// A cart is a multiset of product IDs: adding a product appends one
// occurrence, and the quantity of a product is the number of times its ID
// appears. There is no separate quantity field, which keeps Add and Remove
// symmetric. The zero Cart is ready to use.
package cart

import "encoding/json"

// Cart is an ordered multiset of product identifiers pending purchase.
// It is a single owned mutable value: all mutation goes through Add, Remove,
// and Clear, and the persistence boundary is its JSON representation.
//
// Cart is not safe for concurrent use; it models single-user client state
// where mutations are applied in the order the user issues them.
type Cart struct {
	ids []string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends one occurrence of the given product ID.
func (c *Cart) Add(productID string) {
	c.ids = append(c.ids, productID)
}

// Remove deletes at most one occurrence of the given product ID, scanning
// from the end. Since quantity is the only observable effect of the multiset,
// which occurrence is removed does not matter; removing the last keeps the
// operation the exact inverse of Add. Removing an absent ID is a no-op.
func (c *Cart) Remove(productID string) {
	for i := len(c.ids) - 1; i >= 0; i-- {
		if c.ids[i] == productID {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Called by the client after a successful checkout
// redirect is detected, or on explicit user action.
func (c *Cart) Clear() {
	c.ids = nil
}

// Items returns a copy of the current ordered ID sequence.
func (c *Cart) Items() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Quantity returns the number of occurrences of the given product ID.
func (c *Cart) Quantity(productID string) int {
	n := 0
	for _, id := range c.ids {
		if id == productID {
			n++
		}
	}
	return n
}

// Len returns the total number of occurrences across all products.
func (c *Cart) Len() int {
	return len(c.ids)
}

// MarshalJSON encodes the cart as a JSON array of product IDs, preserving
// order and multiplicity. This is the serialized form handed to client
// storage at session end.
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.ids)
}

// UnmarshalJSON restores a cart from its serialized form.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	c.ids = ids
	return nil
}
