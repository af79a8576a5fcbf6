package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/mskang/shopfront-checkout/internal/pkg/telemetry"
	"github.com/mskang/shopfront-checkout/internal/stubfront"
)

func main() {
	telemetry.InitLogger()

	addr := ":" + getEnv("PORT", "8080")
	payBase := getEnv("STUB_PAY_BASE", "https://pay.example")

	server := stubfront.New(payBase)
	router := stubfront.NewRouter(server)

	slog.Info("storefront stub running", "addr", addr, "pay_base", payBase)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
