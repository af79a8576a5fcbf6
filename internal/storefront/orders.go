package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// HeaderIdempotencyKey is sent on order-creation requests so the backend can
// drop duplicates if a request is ever replayed. The client itself never
// retries a failed create; the key protects against replays outside its
// control (proxies, at-least-once infrastructure).
const HeaderIdempotencyKey = "X-Idempotency-Key"

type orderStatusResponse struct {
	Status OrderStatus `json:"status"`
}

// CreateCartOrder asks the backend to create a PENDING order from the whole
// current cart. The response carries the opaque order ID and the single-use
// provider redirect.
func (c *Client) CreateCartOrder(ctx context.Context) (*PendingOrder, error) {
	return c.createOrder(ctx, "/order/cartitem")
}

// CreateProductOrder creates a PENDING order for a single product. Quantity
// validation lives in the checkout initiator; the backend rejects what the
// client lets through.
func (c *Client) CreateProductOrder(ctx context.Context, productID int64, quantity int) (*PendingOrder, error) {
	return c.createOrder(ctx, fmt.Sprintf("/order/%d?quantity=%d", productID, quantity))
}

func (c *Client) createOrder(ctx context.Context, path string) (*PendingOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: build request: %w", err)
	}
	req.Header.Set(HeaderIdempotencyKey, uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront: POST %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, readAPIError(res)
	}

	var order PendingOrder
	if err := decodeBody(res, &order); err != nil {
		return nil, err
	}
	if order.OrderID == "" || order.Redirect.URL == "" {
		return nil, fmt.Errorf("storefront: order create response missing orderId or redirect")
	}
	return &order, nil
}

// OrderStatus queries the authoritative status for an order.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (OrderStatus, error) {
	var res orderStatusResponse
	if err := c.get(ctx, "/order/status/"+orderID, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

// CancelPayment issues the compensating cancellation for an order whose
// payment was confirmed not to have completed.
func (c *Client) CancelPayment(ctx context.Context, orderID string) error {
	return c.post(ctx, "/payment/cancel?orderId="+orderID, nil, nil)
}

// ApprovePayment finalises a payment the provider redirected back with a
// pg_token. Called from the approval callback path, not from polling.
func (c *Client) ApprovePayment(ctx context.Context, orderID, pgToken string) error {
	return c.post(ctx, "/payment/success/cart?orderId="+orderID+"&pg_token="+pgToken, nil, nil)
}

// Orders returns the current user's order history.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.get(ctx, "/auth/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
