package checkout_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskang/shopfront-checkout/internal/approval"
	"github.com/mskang/shopfront-checkout/internal/checkout"
	"github.com/mskang/shopfront-checkout/internal/resolution"
	"github.com/mskang/shopfront-checkout/internal/storefront"
	"github.com/mskang/shopfront-checkout/internal/stubfront"
)

// userLauncher stands in for the detached browser window. On Launch it plays
// the user's part: either completes payment through the approval callback or
// walks away, then reports the surface closed.
type userLauncher struct {
	onLaunch func(redirect storefront.PaymentRedirect)
}

type closedSurface struct{}

func (closedSurface) Closed() bool { return true }
func (closedSurface) Close() error { return nil }

func (l *userLauncher) Launch(_ context.Context, redirect storefront.PaymentRedirect) (checkout.Surface, error) {
	if l.onLaunch != nil {
		l.onLaunch(redirect)
	}
	return closedSurface{}, nil
}

type silentNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *silentNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *silentNotifier) Navigate(context.Context, checkout.View) {}

func (n *silentNotifier) said(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type e2eHarness struct {
	client   *storefront.Client
	viewer   storefront.Viewer
	resolved resolution.Store
	callback http.Handler
}

func newE2EHarness(t *testing.T) *e2eHarness {
	t.Helper()

	backend := httptest.NewServer(stubfront.NewRouter(stubfront.New("https://pay.example")))
	t.Cleanup(backend.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := storefront.NewWithHTTPClient(backend.URL, &http.Client{Jar: jar})

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, "alice", "pw"))
	viewer, err := client.Me(ctx)
	require.NoError(t, err)

	resolved := resolution.NewMemoryStore()
	return &e2eHarness{
		client:   client,
		viewer:   viewer,
		resolved: resolved,
		callback: approval.NewRouter(approval.NewHandler(client, resolved)),
	}
}

func (h *e2eHarness) run(t *testing.T, launcher checkout.Launcher, notify checkout.Notifier) (checkout.Outcome, error) {
	t.Helper()
	flow := checkout.NewFlow(
		h.client,
		launcher,
		&checkout.Watcher{Interval: time.Millisecond},
		h.resolved,
		notify,
		nil,
	)
	return flow.Run(context.Background(), h.viewer, checkout.CartSource{})
}

// approve simulates the provider redirecting the payment surface to the
// approval callback after the user completed payment.
func (h *e2eHarness) approve(t *testing.T, orderID string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.callback.ServeHTTP(rec, httptest.NewRequest(
		http.MethodGet, "/payment/success/cart?orderId="+orderID+"&pg_token=e2etok", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestEndToEnd_AbandonedPaymentIsCancelled(t *testing.T) {
	h := newE2EHarness(t)
	ctx := context.Background()
	require.NoError(t, h.client.AddCartItem(ctx, 1, 2))
	require.NoError(t, h.client.AddCartItem(ctx, 2, 1))

	var orderID string
	launcher := &userLauncher{onLaunch: func(redirect storefront.PaymentRedirect) {
		// The user closes the window without paying. Capture the order ID
		// from the redirect path for the status assertion below.
		orderID = redirect.URL[strings.LastIndex(redirect.URL, "/")+1:]
	}}
	notify := &silentNotifier{}

	outcome, err := h.run(t, launcher, notify)
	require.NoError(t, err)

	assert.Equal(t, checkout.OutcomeCanceled, outcome)
	assert.True(t, notify.said("cancelled or failed"))

	status, err := h.client.OrderStatus(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, storefront.StatusCancelled, status)
}

func TestEndToEnd_CompletedPaymentResolvesPaid(t *testing.T) {
	h := newE2EHarness(t)
	ctx := context.Background()
	require.NoError(t, h.client.AddCartItem(ctx, 1, 2))

	var orderID string
	launcher := &userLauncher{onLaunch: func(redirect storefront.PaymentRedirect) {
		orderID = redirect.URL[strings.LastIndex(redirect.URL, "/")+1:]
		h.approve(t, orderID)
	}}
	notify := &silentNotifier{}

	outcome, err := h.run(t, launcher, notify)
	require.NoError(t, err)

	assert.Equal(t, checkout.OutcomePaid, outcome)
	assert.True(t, notify.said("completed"))
	assert.False(t, notify.said("cancelled or failed"))

	status, err := h.client.OrderStatus(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, storefront.StatusPaid, status)

	// The paid cart order clears the cart server-side.
	items, err := h.client.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEndToEnd_ApprovalReplayIsDeduplicated(t *testing.T) {
	h := newE2EHarness(t)
	ctx := context.Background()
	require.NoError(t, h.client.AddCartItem(ctx, 1, 1))

	order, err := h.client.CreateCartOrder(ctx)
	require.NoError(t, err)

	h.approve(t, order.OrderID)

	// A duplicate redirect must not hit the backend again; the claim store
	// answers it directly.
	rec := httptest.NewRecorder()
	h.callback.ServeHTTP(rec, httptest.NewRequest(
		http.MethodGet, "/payment/success/cart?orderId="+order.OrderID+"&pg_token=e2etok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been processed")

	status, err := h.client.OrderStatus(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, storefront.StatusPaid, status)
}
