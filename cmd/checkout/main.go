package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mskang/shopfront-checkout/internal/approval"
	"github.com/mskang/shopfront-checkout/internal/checkout"
	"github.com/mskang/shopfront-checkout/internal/checkout/flowlog"
	flowsqlite "github.com/mskang/shopfront-checkout/internal/checkout/flowlog/sqlite"
	"github.com/mskang/shopfront-checkout/internal/config"
	"github.com/mskang/shopfront-checkout/internal/pkg/telemetry"
	"github.com/mskang/shopfront-checkout/internal/resolution"
	"github.com/mskang/shopfront-checkout/internal/storefront"
)

func main() {
	telemetry.InitLogger()

	cart := flag.Bool("cart", false, "order the whole current cart")
	productID := flag.Int64("product", 0, "order a single product by id")
	quantity := flag.Int("quantity", 1, "quantity for a single-product order")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	src, err := orderSource(*cart, *productID, *quantity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	if err := run(ctx, cfg, src); err != nil {
		slog.Error("checkout failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, src checkout.Source) error {
	client, err := storefront.New(cfg.BackendURL)
	if err != nil {
		return err
	}

	if user := os.Getenv("SHOPFRONT_USERNAME"); user != "" {
		if err := client.Login(ctx, user, os.Getenv("SHOPFRONT_PASSWORD")); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	viewer, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch session: %w", err)
	}

	var resolved resolution.Store
	if cfg.RedisAddr != "" {
		resolved = resolution.NewRedisStore(cfg.RedisAddr, cfg.ServiceName)
	} else {
		resolved = resolution.NewMemoryStore()
	}

	var log flowlog.Repository = flowlog.Nop{}
	if cfg.FlowLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FlowLogPath), 0o755); err != nil {
			return fmt.Errorf("create flow log dir: %w", err)
		}
		repo, err := flowsqlite.Open(cfg.FlowLogPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		log = repo
	}

	// The approval listener must be up before the payment surface opens: the
	// provider may redirect the surface here at any point after launch.
	callbackSrv := &http.Server{
		Addr:    cfg.CallbackAddr,
		Handler: approval.NewRouter(approval.NewHandler(client, resolved)),
	}
	go func() {
		if err := callbackSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("approval listener failed", "addr", cfg.CallbackAddr, "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = callbackSrv.Shutdown(shutdownCtx)
	}()
	slog.Info("approval listener running", "addr", cfg.CallbackAddr)

	flow := checkout.NewFlow(
		client,
		checkout.NewBrowserLauncher(cfg.Browser),
		&checkout.Watcher{Interval: cfg.PollInterval, Timeout: cfg.WatchTimeout},
		resolved,
		consoleNotifier{},
		log,
	)

	outcome, err := flow.Run(ctx, viewer, src)
	if err != nil {
		return err
	}
	fmt.Printf("checkout finished: %s\n", outcome)
	return nil
}

func orderSource(cart bool, productID int64, quantity int) (checkout.Source, error) {
	switch {
	case cart && productID != 0:
		return nil, errors.New("use either -cart or -product, not both")
	case cart:
		return checkout.CartSource{}, nil
	case productID != 0:
		return checkout.ProductSource{ProductID: productID, Quantity: quantity}, nil
	default:
		return nil, errors.New("one of -cart or -product is required")
	}
}

// consoleNotifier prints user-facing messages to stdout, standing in for the
// storefront UI's alerts and navigation.
type consoleNotifier struct{}

func (consoleNotifier) Notify(_ context.Context, message string) {
	fmt.Println(message)
}

func (consoleNotifier) Navigate(_ context.Context, view checkout.View) {
	fmt.Printf("navigate to %s\n", view)
}
