package checkout

import (
	"context"
	"log/slog"

	"github.com/mskang/shopfront-checkout/internal/resolution"
	"github.com/mskang/shopfront-checkout/internal/storefront"
)

// Outcome is the terminal state of one reconciliation.
type Outcome string

const (
	// OutcomePaid: the backend confirmed payment; the user was navigated to
	// the orders view.
	OutcomePaid Outcome = "PAID"

	// OutcomeCanceled: the backend reported a non-paid status and the
	// compensating cancellation was issued.
	OutcomeCanceled Outcome = "CANCELED"

	// OutcomeError: the status query itself failed. The server-side state is
	// unknown, so no cancellation was attempted — an uninformed cancel could
	// roll back a payment that actually succeeded.
	OutcomeError Outcome = "ERROR"

	// OutcomeAlreadyResolved: the approval callback path claimed the order
	// first; this path performed no mutating call.
	OutcomeAlreadyResolved Outcome = "ALREADY_RESOLVED"
)

// Reconciler queries the authoritative order status after the payment
// surface closes and takes the corresponding terminal action.
type Reconciler struct {
	backend  Backend
	resolved resolution.Store
	notify   Notifier
}

func NewReconciler(backend Backend, resolved resolution.Store, notify Notifier) *Reconciler {
	return &Reconciler{backend: backend, resolved: resolved, notify: notify}
}

// Reconcile never returns an error: every failure mode degrades to a user
// notification plus a terminal outcome. The three-way branch — paid,
// confirmed-not-paid, unknown — is the correctness core: cancellation is
// issued only when non-completion is confirmed, never when merely unknown.
func (r *Reconciler) Reconcile(ctx context.Context, orderID string) Outcome {
	status, err := r.backend.OrderStatus(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "order status query failed", "order_id", orderID, "error", err)
		r.notify.Notify(ctx, "Could not verify the payment status. Please check your orders.")
		return OutcomeError
	}

	if status == storefront.StatusPaid {
		r.notify.Notify(ctx, "Your order has been completed.")
		r.notify.Navigate(ctx, ViewOrders)
		return OutcomePaid
	}

	// Non-completion is confirmed. Claim the order before compensating so
	// this path and the approval callback cannot both act on it.
	claimed, err := r.resolved.Claim(ctx, orderID)
	if err != nil {
		// The claim store is a dedupe aid, not the source of truth. The
		// backend's cancel endpoint tolerates repeats, so proceed.
		slog.WarnContext(ctx, "resolution claim failed, compensating anyway", "order_id", orderID, "error", err)
		claimed = true
	}
	if !claimed {
		slog.InfoContext(ctx, "order already resolved by another path", "order_id", orderID)
		return OutcomeAlreadyResolved
	}

	// Fire-and-forget compensation: its own failure is logged, not surfaced.
	if err := r.backend.CancelPayment(ctx, orderID); err != nil {
		slog.ErrorContext(ctx, "compensating cancellation failed", "order_id", orderID, "error", err)
	}
	r.notify.Notify(ctx, "The payment was cancelled or failed.")
	return OutcomeCanceled
}
