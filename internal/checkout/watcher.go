package checkout

import (
	"context"
	"errors"
	"time"
)

// DefaultPollInterval is how often the watcher checks the surface lifecycle.
// Fixed interval, no backoff: the check is local and cheap, no network call
// happens per tick.
const DefaultPollInterval = 500 * time.Millisecond

// ErrWatchTimeout is returned when a configured watch timeout elapses before
// the surface closes. The flow treats it like closure and reconciles: the
// reconciler queries status before acting, so forcing it early is safe.
var ErrWatchTimeout = errors.New("checkout: watch timed out")

// Watcher polls a payment surface's liveness until it closes.
//
// The watcher owns the surface handle for the duration of one session. The
// ticker is stopped before Watch returns, in the same tick that observes
// closure, so exactly one reconciliation follows a session no matter how
// slow the reconciliation call is.
type Watcher struct {
	// Interval between liveness checks. Zero means DefaultPollInterval.
	Interval time.Duration

	// Timeout bounds the whole watch session. Zero means no timeout: an
	// abandoned, never-closed surface is polled for the lifetime of the
	// process, matching the backend's own PENDING expiry model.
	Timeout time.Duration
}

// Watch blocks until the surface closes (nil), the timeout elapses
// (ErrWatchTimeout), or ctx is cancelled (ctx.Err()).
func (w *Watcher) Watch(ctx context.Context, surface Surface) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if w.Timeout > 0 {
		timer := time.NewTimer(w.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	// Check once up front: the surface may already be gone by the time the
	// watcher starts.
	if surface.Closed() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrWatchTimeout
		case <-ticker.C:
			if surface.Closed() {
				return nil
			}
		}
	}
}
