package storefront

import (
	"context"
	"fmt"
)

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, productID int64) (*Product, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
