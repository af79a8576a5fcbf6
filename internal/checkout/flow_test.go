package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskang/shopfront-checkout/internal/checkout/flowlog"
	"github.com/mskang/shopfront-checkout/internal/resolution"
	"github.com/mskang/shopfront-checkout/internal/storefront"
)

func testViewer() storefront.Viewer {
	return storefront.Viewer{UserID: 1, Username: "alice", Role: storefront.RoleUser}
}

func testCart() []storefront.CartItem {
	return []storefront.CartItem{
		{ID: 1, ProductID: 10, ProductName: "mug", ProductPrice: 1000, Quantity: 2},
		{ID: 2, ProductID: 20, ProductName: "kettle", ProductPrice: 2000, Quantity: 1},
	}
}

func newTestFlow(backend *fakeBackend, launcher Launcher, notify *recordingNotifier, log flowlog.Repository) *Flow {
	return NewFlow(
		backend,
		launcher,
		&Watcher{Interval: time.Millisecond},
		resolution.NewMemoryStore(),
		notify,
		log,
	)
}

func TestFlow_CartOrderCanceledAfterClosure(t *testing.T) {
	backend := &fakeBackend{
		cart: testCart(),
		order: &storefront.PendingOrder{
			OrderID:  "O1",
			Total:    4000,
			Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
		},
		status: storefront.StatusCancelled,
	}
	launcher := &fakeLauncher{surface: &fakeSurface{closedAfter: 3}}
	notify := &recordingNotifier{}
	log := &memLog{}

	outcome, err := newTestFlow(backend, launcher, notify, log).Run(context.Background(), testViewer(), CartSource{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCanceled, outcome)
	assert.Equal(t, 1, backend.cancels())
	assert.True(t, notify.said("cancelled or failed"))
	assert.False(t, notify.said("completed"), "the success message must never show for a non-paid order")
	assert.Equal(t, flowlog.StatusResolvedCanceled, log.last().Status)
	assert.Equal(t, "O1", log.last().OrderID)
}

func TestFlow_CartOrderPaid(t *testing.T) {
	backend := &fakeBackend{
		cart: testCart(),
		order: &storefront.PendingOrder{
			OrderID:  "O1",
			Total:    4000,
			Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
		},
		status: storefront.StatusPaid,
	}
	launcher := &fakeLauncher{surface: &fakeSurface{closedAfter: 2}}
	notify := &recordingNotifier{}
	log := &memLog{}

	outcome, err := newTestFlow(backend, launcher, notify, log).Run(context.Background(), testViewer(), CartSource{})
	require.NoError(t, err)

	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 0, backend.cancels())
	assert.True(t, notify.said("completed"))
	assert.True(t, notify.navigatedTo(ViewOrders))
	assert.Equal(t, flowlog.StatusResolvedPaid, log.last().Status)
}

func TestFlow_ExactlyOneReconciliationPerSession(t *testing.T) {
	// Many ticks may elapse while reconciliation runs; only one status query
	// and at most one cancellation may ever happen for the session.
	backend := &fakeBackend{
		cart: testCart(),
		order: &storefront.PendingOrder{
			OrderID:  "O1",
			Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
		},
		status: storefront.StatusCancelled,
	}
	launcher := &fakeLauncher{surface: &fakeSurface{closedAfter: 0}}

	_, err := newTestFlow(backend, launcher, &recordingNotifier{}, &memLog{}).
		Run(context.Background(), testViewer(), CartSource{})
	require.NoError(t, err)

	assert.Equal(t, 1, backend.statusCalls)
	assert.Equal(t, 1, backend.cancels())
}

func TestFlow_PopupBlockedHaltsBeforePolling(t *testing.T) {
	backend := &fakeBackend{
		cart: testCart(),
		order: &storefront.PendingOrder{
			OrderID:  "O1",
			Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
		},
	}
	launcher := &fakeLauncher{err: ErrPopupBlocked}
	notify := &recordingNotifier{}
	log := &memLog{}

	_, err := newTestFlow(backend, launcher, notify, log).Run(context.Background(), testViewer(), CartSource{})
	assert.ErrorIs(t, err, ErrPopupBlocked)

	// No polling, no status query, and crucially no cancellation: the user
	// never reached the provider, so the order stays PENDING server-side.
	assert.Equal(t, 0, backend.statusCalls)
	assert.Equal(t, 0, backend.cancels())
	assert.True(t, notify.said("blocked"))
	assert.Equal(t, flowlog.StatusAborted, log.last().Status)
}

func TestFlow_CreateFailureHaltsBeforeLaunch(t *testing.T) {
	backend := &fakeBackend{cart: testCart(), createErr: errBoom}
	launcher := &fakeLauncher{surface: &fakeSurface{}}
	notify := &recordingNotifier{}

	_, err := newTestFlow(backend, launcher, notify, &memLog{}).Run(context.Background(), testViewer(), CartSource{})
	require.Error(t, err)

	assert.Equal(t, 0, launcher.calls)
	assert.Equal(t, 1, backend.createCalls, "a failed create must not be retried")
	assert.True(t, notify.said("could not be placed"))
}

func TestFlow_AnonymousViewerIsSentToLogin(t *testing.T) {
	backend := &fakeBackend{}
	notify := &recordingNotifier{}

	_, err := newTestFlow(backend, &fakeLauncher{}, notify, &memLog{}).
		Run(context.Background(), storefront.Viewer{Role: storefront.RoleAnonymous}, CartSource{})
	assert.ErrorIs(t, err, ErrLoginRequired)

	assert.Equal(t, 0, backend.createCalls)
	assert.True(t, notify.navigatedTo(ViewLogin))
}

func TestFlow_EmptyCartAborts(t *testing.T) {
	backend := &fakeBackend{cart: nil}
	notify := &recordingNotifier{}

	_, err := newTestFlow(backend, &fakeLauncher{}, notify, &memLog{}).
		Run(context.Background(), testViewer(), CartSource{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Equal(t, 0, backend.createCalls)
	assert.True(t, notify.said("empty"))
}

func TestFlow_WatchTimeoutForcesReconciliation(t *testing.T) {
	backend := &fakeBackend{
		cart: testCart(),
		order: &storefront.PendingOrder{
			OrderID:  "O1",
			Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
		},
		status: storefront.StatusPending,
	}
	launcher := &fakeLauncher{surface: &fakeSurface{closedAfter: 1 << 30}}
	flow := NewFlow(
		backend,
		launcher,
		&Watcher{Interval: time.Millisecond, Timeout: 20 * time.Millisecond},
		resolution.NewMemoryStore(),
		&recordingNotifier{},
		&memLog{},
	)

	outcome, err := flow.Run(context.Background(), testViewer(), CartSource{})
	require.NoError(t, err)

	// A still-PENDING order after the timeout is confirmed-not-paid, so the
	// compensating cancellation fires.
	assert.Equal(t, OutcomeCanceled, outcome)
	assert.Equal(t, 1, backend.statusCalls)
	assert.Equal(t, 1, backend.cancels())
}
