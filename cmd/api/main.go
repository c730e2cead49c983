package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"movequote/internal/catalog"
	"movequote/internal/config"
	"movequote/internal/db"
	"movequote/internal/logger"
	"movequote/internal/metrics"
	"movequote/internal/orders"
	"movequote/internal/quote"
	"movequote/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		// Logger depends on config; nothing better to report through yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	idx, err := catalog.Default()
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	engine := quote.NewEngine(idx, &cfg.Rates, nil)

	opts := server.Options{
		Engine:                 engine,
		Logger:                 log,
		Metrics:                metrics.New("movequote"),
		LowConfidenceThreshold: cfg.LowConfidenceThreshold,
	}

	// Order notes need Postgres; quoting works without it.
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal("failed to connect db", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			cancel()
			log.Fatal("database ping failed", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			cancel()
			log.Fatal("ensure schema failed", zap.Error(err))
		}
		cancel()
		opts.Orders = orders.NewRepository(pool)
	} else {
		log.Warn("DATABASE_URL not set; order routes disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewWithOptions(opts),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("company", cfg.CompanyName),
			zap.Int("catalog_items", idx.Len()),
			zap.Bool("orders_enabled", opts.Orders != nil),
		)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}
}
