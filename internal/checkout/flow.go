// Package checkout implements the order-payment reconciliation flow: create a
// pending order, open the hosted payment page in a detached browser surface,
// watch that surface's lifecycle, and reconcile the order against the
// backend's authoritative payment status — compensating with a cancellation
// when the user abandoned payment.
//
// The flow is strictly sequential. The order ID is the only state threaded
// between stages, passed by value; the surface handle is owned exclusively by
// the watcher. There is no shared mutable state to lock.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/mskang/shopfront-checkout/internal/checkout/flowlog"
	"github.com/mskang/shopfront-checkout/internal/resolution"
	"github.com/mskang/shopfront-checkout/internal/storefront"
)

// ErrLoginRequired is returned when the viewer has no authenticated session.
var ErrLoginRequired = errors.New("checkout: login required")

// ErrEmptyCart is returned for a cart order when the cart has no lines.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// Flow wires the four stages together and records every transition to the
// flow log.
type Flow struct {
	backend    Backend
	initiator  *Initiator
	launcher   Launcher
	watcher    *Watcher
	reconciler *Reconciler
	notify     Notifier
	log        flowlog.Repository
}

func NewFlow(
	backend Backend,
	launcher Launcher,
	watcher *Watcher,
	resolved resolution.Store,
	notify Notifier,
	log flowlog.Repository,
) *Flow {
	if log == nil {
		log = flowlog.Nop{}
	}
	return &Flow{
		backend:    backend,
		initiator:  NewInitiator(backend, notify),
		launcher:   launcher,
		watcher:    watcher,
		reconciler: NewReconciler(backend, resolved, notify),
		notify:     notify,
		log:        log,
	}
}

// Run executes one checkout flow to a terminal outcome.
//
// A non-nil error means the flow aborted before reconciliation (anonymous
// viewer, empty cart, create failure, blocked surface, cancelled context);
// in every abort case the backend order — if one was created — is left
// PENDING and no cancellation is issued. A nil error means reconciliation
// ran and the returned Outcome is terminal.
func (f *Flow) Run(ctx context.Context, viewer storefront.Viewer, src Source) (Outcome, error) {
	if viewer.Anonymous() {
		f.notify.Notify(ctx, "Login is required.")
		f.notify.Navigate(ctx, ViewLogin)
		return "", ErrLoginRequired
	}

	ctx, span := otel.Tracer("checkout").Start(ctx, "checkout.flow")
	defer span.End()

	flowID := uuid.NewString()
	f.record(ctx, flowID, "", flowlog.StatusStarted, src.describe())

	if _, ok := src.(CartSource); ok {
		snapshot, err := f.backend.CartSnapshot(ctx)
		if err != nil {
			f.notify.Notify(ctx, "Could not load your cart. Please try again.")
			f.record(ctx, flowID, "", flowlog.StatusAborted, "cart snapshot failed: "+err.Error())
			return "", fmt.Errorf("checkout: cart snapshot: %w", err)
		}
		if len(snapshot.Items) == 0 {
			f.notify.Notify(ctx, "Your cart is empty.")
			f.record(ctx, flowID, "", flowlog.StatusAborted, "empty cart")
			return "", ErrEmptyCart
		}
		slog.InfoContext(ctx, "cart snapshot taken",
			"flow_id", flowID, "lines", len(snapshot.Items), "total", snapshot.Total)
	}

	order, err := f.initiator.Initiate(ctx, src)
	if err != nil {
		// No retry here: a duplicate create would risk a double order.
		f.notify.Notify(ctx, "Order could not be placed. Please try again.")
		f.record(ctx, flowID, "", flowlog.StatusAborted, "order create failed: "+err.Error())
		return "", fmt.Errorf("checkout: create order: %w", err)
	}
	f.record(ctx, flowID, order.OrderID, flowlog.StatusOrderCreated, "")
	slog.InfoContext(ctx, "pending order created",
		"flow_id", flowID, "order_id", order.OrderID, "total", order.Total)

	surface, err := f.launcher.Launch(ctx, order.Redirect)
	// The redirect is single-use; drop it so nothing can open a second
	// surface from the same descriptor.
	order.Redirect = storefront.PaymentRedirect{}
	if err != nil {
		if errors.Is(err, ErrPopupBlocked) {
			f.notify.Notify(ctx, "The payment window was blocked. Please allow pop-ups and try again.")
			f.record(ctx, flowID, order.OrderID, flowlog.StatusAborted, "surface blocked")
			// The user never reached the provider: leave the order PENDING
			// for the backend's own expiry, do not cancel.
			return "", err
		}
		f.record(ctx, flowID, order.OrderID, flowlog.StatusAborted, "surface launch failed: "+err.Error())
		return "", fmt.Errorf("checkout: launch payment surface: %w", err)
	}
	f.record(ctx, flowID, order.OrderID, flowlog.StatusSurfaceOpened, "")

	switch err := f.watcher.Watch(ctx, surface); {
	case err == nil:
		f.record(ctx, flowID, order.OrderID, flowlog.StatusSurfaceClosed, "")
	case errors.Is(err, ErrWatchTimeout):
		// Reconciling early is safe: the reconciler queries status before
		// acting and never cancels on an unknown answer.
		f.record(ctx, flowID, order.OrderID, flowlog.StatusSurfaceClosed, "watch timeout, forcing reconciliation")
		_ = surface.Close()
	default:
		f.record(ctx, flowID, order.OrderID, flowlog.StatusAborted, "watch cancelled: "+err.Error())
		return "", err
	}

	outcome := f.reconciler.Reconcile(ctx, order.OrderID)
	f.record(ctx, flowID, order.OrderID, terminalStatus(outcome), "surface-close reconciliation")
	return outcome, nil
}

func terminalStatus(o Outcome) flowlog.Status {
	switch o {
	case OutcomePaid:
		return flowlog.StatusResolvedPaid
	case OutcomeCanceled:
		return flowlog.StatusResolvedCanceled
	case OutcomeAlreadyResolved:
		return flowlog.StatusResolvedExternal
	default:
		return flowlog.StatusResolvedError
	}
}

// record appends a flow log row. Log failures never interrupt the flow; they
// are reported and dropped.
func (f *Flow) record(ctx context.Context, flowID, orderID string, status flowlog.Status, detail string) {
	entry := flowlog.NewEntry(ctx, flowID, orderID, status, detail)
	if err := f.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "flow log write failed",
			"flow_id", flowID, "status", string(status), "error", err)
	}
}
