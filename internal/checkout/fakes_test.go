package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mskang/shopfront-checkout/internal/checkout/flowlog"
	"github.com/mskang/shopfront-checkout/internal/storefront"
)

type fakeBackend struct {
	mu sync.Mutex

	cart    []storefront.CartItem
	cartErr error

	order        *storefront.PendingOrder
	createErr    error
	createCalls  int
	lastQuantity int

	status      storefront.OrderStatus
	statusErr   error
	statusCalls int

	cancelErr   error
	cancelCalls int
}

func (b *fakeBackend) CartSnapshot(context.Context) (*storefront.CartSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cartErr != nil {
		return nil, b.cartErr
	}
	var total int64
	for _, it := range b.cart {
		total += it.Subtotal()
	}
	return &storefront.CartSnapshot{Items: b.cart, Total: total, CapturedAt: time.Now()}, nil
}

func (b *fakeBackend) CreateCartOrder(context.Context) (*storefront.PendingOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls++
	if b.createErr != nil {
		return nil, b.createErr
	}
	order := *b.order
	return &order, nil
}

func (b *fakeBackend) CreateProductOrder(_ context.Context, _ int64, quantity int) (*storefront.PendingOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls++
	b.lastQuantity = quantity
	if b.createErr != nil {
		return nil, b.createErr
	}
	order := *b.order
	return &order, nil
}

func (b *fakeBackend) OrderStatus(context.Context, string) (storefront.OrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusCalls++
	if b.statusErr != nil {
		return "", b.statusErr
	}
	return b.status, nil
}

func (b *fakeBackend) CancelPayment(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelCalls++
	return b.cancelErr
}

func (b *fakeBackend) cancels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelCalls
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	views    []View
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Navigate(_ context.Context, view View) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views = append(n.views, view)
}

func (n *recordingNotifier) said(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) navigatedTo(view View) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, v := range n.views {
		if v == view {
			return true
		}
	}
	return false
}

// fakeSurface reports closed after a fixed number of liveness checks.
type fakeSurface struct {
	mu          sync.Mutex
	closedAfter int
	checks      int
}

func (s *fakeSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	return s.checks > s.closedAfter
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedAfter = 0
	return nil
}

type fakeLauncher struct {
	mu      sync.Mutex
	surface Surface
	err     error
	calls   int
}

func (l *fakeLauncher) Launch(context.Context, storefront.PaymentRedirect) (Surface, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.surface, nil
}

// memLog records flow log entries in memory.
type memLog struct {
	mu      sync.Mutex
	entries []*flowlog.Entry
}

func (l *memLog) Save(_ context.Context, entry *flowlog.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *memLog) last() *flowlog.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

var errBoom = errors.New("boom")
