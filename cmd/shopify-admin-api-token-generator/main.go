package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/config"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/server"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/state/memory"
)

var openShop = flag.String("open", "", "shop domain to open the local install URL for after startup")

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("configuration error", "error", err)
	}

	registry := memory.New(cfg.StateTTL, cfg.SweepInterval)
	defer func() { _ = registry.Close() }()

	srv := server.New(cfg, log, registry)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("listening", "addr", httpServer.Addr, "redirect_uri", cfg.RedirectURI)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	if *openShop != "" {
		installURL := fmt.Sprintf("http://localhost:%d%s?shop=%s",
			cfg.Port, bridge.InstallEndpoint, url.QueryEscape(*openShop))
		if err := browser.OpenURL(installURL); err != nil {
			log.Warnw("failed to open browser", "url", installURL, "error", err)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	} else {
		log.Infow("shutdown complete")
	}
}
