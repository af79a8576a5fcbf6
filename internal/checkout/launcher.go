package checkout

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync/atomic"

	"github.com/mskang/shopfront-checkout/internal/storefront"
)

// ErrPopupBlocked means the platform refused to open the payment surface.
// The flow halts before any polling starts, and no cancellation is issued:
// the user never reached the provider, so the order is left PENDING for the
// backend's own expiry handling.
var ErrPopupBlocked = errors.New("checkout: payment surface blocked")

// Surface is a detached browser surface showing the hosted payment page.
// The only signal it ever yields back is its own lifecycle.
type Surface interface {
	// Closed is a cheap, non-blocking liveness check.
	Closed() bool
	// Close force-closes the surface. Used on flow cancellation.
	Close() error
}

// Launcher opens the single-use payment redirect in a detached surface.
type Launcher interface {
	Launch(ctx context.Context, redirect storefront.PaymentRedirect) (Surface, error)
}

const (
	surfaceWindowName = "shopfront-pay"
	surfaceWindowSize = "500,600"
)

// BrowserLauncher opens the redirect in a browser app-mode window. The
// browser process must live as long as the window; its exit is the closure
// signal the watcher polls for.
type BrowserLauncher struct {
	browser string
}

// NewBrowserLauncher builds a launcher around the given browser binary
// (chromium, google-chrome, or a compatible wrapper).
func NewBrowserLauncher(browser string) *BrowserLauncher {
	if browser == "" {
		browser = "chromium"
	}
	return &BrowserLauncher{browser: browser}
}

func (l *BrowserLauncher) Launch(ctx context.Context, redirect storefront.PaymentRedirect) (Surface, error) {
	cmd := exec.CommandContext(ctx, l.browser,
		"--app="+redirect.URL,
		"--window-size="+surfaceWindowSize,
		"--window-name="+surfaceWindowName,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	s := &processSurface{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		s.closed.Store(true)
		close(s.done)
	}()
	return s, nil
}

// processSurface maps window lifetime onto process lifetime.
type processSurface struct {
	cmd    *exec.Cmd
	closed atomic.Bool
	done   chan struct{}
}

func (s *processSurface) Closed() bool {
	return s.closed.Load()
}

func (s *processSurface) Close() error {
	if s.closed.Load() {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("checkout: close payment surface: %w", err)
	}
	<-s.done
	return nil
}
