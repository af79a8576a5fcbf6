package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mskang/shopfront-checkout/internal/storefront"
)

// Backend is the slice of the storefront API the checkout flow consumes.
// *storefront.Client satisfies it.
type Backend interface {
	CartSnapshot(ctx context.Context) (*storefront.CartSnapshot, error)
	CreateCartOrder(ctx context.Context) (*storefront.PendingOrder, error)
	CreateProductOrder(ctx context.Context, productID int64, quantity int) (*storefront.PendingOrder, error)
	OrderStatus(ctx context.Context, orderID string) (storefront.OrderStatus, error)
	CancelPayment(ctx context.Context, orderID string) error
}

// Source selects what the order is created from: the whole cart, or a single
// product with a quantity.
type Source interface {
	describe() string
}

// CartSource orders the entire current cart. The cart snapshot is taken once
// before order creation and never re-read during the payment flow.
type CartSource struct{}

func (CartSource) describe() string { return "cart" }

// ProductSource orders one product directly.
type ProductSource struct {
	ProductID int64
	Quantity  int
}

func (s ProductSource) describe() string {
	return fmt.Sprintf("product %d x%d", s.ProductID, s.Quantity)
}

const (
	minQuantity = 1
	maxQuantity = 10
)

// clampQuantity normalises a requested quantity into [1,10]. The second
// return reports whether the request exceeded the maximum and was cut down,
// which the initiator surfaces as a warning.
func clampQuantity(q int) (int, bool) {
	if q < minQuantity {
		return minQuantity, false
	}
	if q > maxQuantity {
		return maxQuantity, true
	}
	return q, false
}

// Initiator creates the PENDING order and receives the provider redirect.
// A failed create is never retried: a silent retry could place two orders.
type Initiator struct {
	backend Backend
	notify  Notifier
}

func NewInitiator(backend Backend, notify Notifier) *Initiator {
	return &Initiator{backend: backend, notify: notify}
}

// Initiate requests order creation for the given source. On success the
// backend has recorded a PENDING order; the returned redirect is single-use.
func (i *Initiator) Initiate(ctx context.Context, src Source) (*storefront.PendingOrder, error) {
	switch s := src.(type) {
	case CartSource:
		return i.backend.CreateCartOrder(ctx)
	case ProductSource:
		qty, clamped := clampQuantity(s.Quantity)
		if clamped {
			slog.WarnContext(ctx, "quantity clamped", "requested", s.Quantity, "max", maxQuantity)
			i.notify.Notify(ctx, fmt.Sprintf("Quantity is limited to %d per order.", maxQuantity))
		}
		return i.backend.CreateProductOrder(ctx, s.ProductID, qty)
	default:
		return nil, fmt.Errorf("checkout: unknown order source %T", src)
	}
}
