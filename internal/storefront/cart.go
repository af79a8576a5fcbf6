package storefront

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CartOp is the quantity mutation accepted by the backend.
type CartOp string

const (
	CartIncrease CartOp = "increase"
	CartDecrease CartOp = "decrease"
)

// Cart fetches the current cart line items.
func (c *Client) Cart(ctx context.Context) ([]CartItem, error) {
	var items []CartItem
	if err := c.get(ctx, "/cartitem", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CartSnapshot fetches the cart once and fixes the line prices and total.
// The checkout flow uses this snapshot; it is deliberately never re-fetched
// while payment is in flight.
func (c *Client) CartSnapshot(ctx context.Context) (*CartSnapshot, error) {
	items, err := c.Cart(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return &CartSnapshot{
		Items:      items,
		Total:      total,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// AddCartItem adds quantity units of a product to the cart.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.post(ctx, fmt.Sprintf("/cartitem/%d?quantity=%d", productID, quantity), nil, nil)
}

// UpdateCartItem bumps a cart line's quantity up or down by one.
func (c *Client) UpdateCartItem(ctx context.Context, cartID int64, op CartOp) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/cartitem/%d?operation=%s", cartID, op), nil, nil)
}

// RemoveCartItem removes a product's line from the cart.
func (c *Client) RemoveCartItem(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cartitem/%d", productID), nil, nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cartitem", nil, nil)
}
