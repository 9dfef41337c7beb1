package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/httpserver"
	"ticket-admin-service/internal/logger"
	"ticket-admin-service/internal/lookup"
	"ticket-admin-service/internal/metrics"
	"ticket-admin-service/internal/resolver"
	"ticket-admin-service/internal/store"
)

const defaultConfigPath = "/configs/config.yml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	flag.Parse()

	if _, err := logger.Init(); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	metrics.Register()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.S().Fatalw(alert.Prefix("config load failed"), "path", *configPath, "error", err)
	}

	ticketStore, err := store.CreateStore(context.Background(), cfg.Store)
	if err != nil {
		zap.S().Fatalw(alert.Prefix("store init failed"), "provider", cfg.Store.Provider, "error", err)
	}
	defer func() {
		if err := ticketStore.Close(); err != nil {
			zap.S().Errorw("store close failed", "error", err)
		}
	}()

	directory := lookup.NewHTTPClient(cfg.Directory)

	batchResolver := resolver.New(directory, ticketStore.UpdateResolvedNames, cfg.Resolver)

	maxBody, err := cfg.Server.MaxBodyBytes()
	if err != nil {
		zap.S().Fatalw(alert.Prefix("invalid maxBodySize"), "error", err)
	}

	routerApi := httpserver.NewRouter(ticketStore, batchResolver, int64(maxBody))
	routerMetrics := httpserver.NewMetricRouter()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		listenServer(routerApi, cfg.Server.ApiPort)
	}()

	go func() {
		defer wg.Done()
		listenServer(routerMetrics, cfg.Server.MetricsPort)
	}()

	wg.Wait()
}

func listenServer(router http.Handler, port int) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	zap.S().Infow("starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.S().Fatalw(alert.Prefix("server error"), "error", err)
	}
}
