// Package approval hosts the provider-redirected success callback. When the
// hosted payment page completes, the provider navigates the detached surface
// to this listener with the order ID and a pg_token; the handler forwards the
// approval to the backend so the order flips to PAID before the user closes
// the window and the polling path reconciles.
//
// This path and the surface-close reconciler are not ordered with respect to
// each other, so the handler claims the order in the resolution store before
// any mutating call.
package approval

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mskang/shopfront-checkout/internal/resolution"
)

// Approver is the slice of the storefront client this package needs.
type Approver interface {
	ApprovePayment(ctx context.Context, orderID, pgToken string) error
}

type Handler struct {
	approver Approver
	resolved resolution.Store
}

func NewHandler(approver Approver, resolved resolution.Store) *Handler {
	return &Handler{approver: approver, resolved: resolved}
}

// PaymentSuccessCart handles the provider's approval redirect. Responses are
// plain text shown inside the payment surface right before the user closes
// it; nothing here navigates the host page.
func (h *Handler) PaymentSuccessCart(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	pgToken := r.URL.Query().Get("pg_token")
	if orderID == "" || pgToken == "" {
		http.Error(w, "Invalid access.", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	claimed, err := h.resolved.Claim(ctx, orderID)
	if err != nil {
		// Same stance as the reconciler: the claim store is a dedupe aid.
		// The backend rejects a second approval of a PAID order itself.
		slog.WarnContext(ctx, "resolution claim failed, approving anyway", "order_id", orderID, "error", err)
		claimed = true
	}
	if !claimed {
		slog.InfoContext(ctx, "approval skipped, order already resolved", "order_id", orderID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("This order has already been processed. You may close this window."))
		return
	}

	if err := h.approver.ApprovePayment(ctx, orderID, pgToken); err != nil {
		slog.ErrorContext(ctx, "payment approval failed", "order_id", orderID, "error", err)
		http.Error(w, "An error occurred while approving the payment.", http.StatusBadGateway)
		return
	}

	slog.InfoContext(ctx, "payment approved", "order_id", orderID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Payment approved. You may close this window."))
}

// PaymentFail handles the provider's failure redirect. Nothing to do but
// tell the user; the surface-close reconciliation takes it from here.
func (h *Handler) PaymentFail(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(r.Context(), "provider reported payment failure")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Payment failed. You may close this window."))
}
