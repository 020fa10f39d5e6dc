package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nillis/observable-connection-pool/internal/api"
	"github.com/nillis/observable-connection-pool/internal/config"
	"github.com/nillis/observable-connection-pool/internal/domain"
	"github.com/nillis/observable-connection-pool/internal/factory"
	"github.com/nillis/observable-connection-pool/internal/metrics"
	"github.com/nillis/observable-connection-pool/internal/pool"
	"github.com/nillis/observable-connection-pool/pkg/logging"
)

func main() {
	// Load .env file if present (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	collector := metrics.NewCollector()

	logger.Info("Starting poold", "backend", cfg.Backend.Mode, "max", cfg.Pool.MaxSize, "min", cfg.Pool.MinSize)

	var err error
	switch cfg.Backend.Mode {
	case factory.ModeMySQL:
		var f *factory.MySQLFactory
		f, err = factory.NewMySQLFactory(cfg.Backend.MySQLDSN)
		if err != nil {
			logger.Fatal("Failed to configure MySQL backend", "error", err)
		}
		err = serve(cfg, logger, collector, f, f.Validate)
	case factory.ModeValkey:
		f := factory.NewValkeyFactory(&cfg.Backend)
		err = serve(cfg, logger, collector, f, f.Validate)
	case factory.ModeNATS:
		f := factory.NewNATSFactory(cfg.Backend.NATSURL)
		err = serve(cfg, logger, collector, f, f.Validate)
	case factory.ModeWebSocket:
		f := factory.NewWebSocketFactory(cfg.Backend.WebSocketURL)
		err = serve(cfg, logger, collector, f, f.Validate)
	default:
		logger.Fatal("Unknown backend mode", "mode", cfg.Backend.Mode, "error", domain.ErrUnknownBackend)
	}

	if err != nil {
		logger.Fatal("Server failed", "error", err)
	}
	logger.Info("Shutdown complete")
}

// serve builds the pool for one backend type and runs the HTTP surface
// until a signal arrives, then drains and destroys the pool.
func serve[T comparable](cfg *config.Config, logger *logging.Logger, collector *metrics.Collector, f pool.Factory[T], validate func(T) bool) error {
	p := pool.New(f, pool.Config[T]{
		Max:           cfg.Pool.MaxSize,
		Min:           cfg.Pool.MinSize,
		IdleTimeout:   cfg.Pool.IdleTimeout,
		ReapInterval:  cfg.Pool.ReapInterval,
		RefreshIdle:   cfg.Pool.RefreshIdle,
		ReturnToHead:  cfg.Pool.ReturnToHead,
		PriorityRange: cfg.Pool.PriorityRange,
		Validate:      validate,
		Logger:        logger,
		Metrics:       collector,
	})
	collector.PoolCapacity.Set(float64(p.Cap()))

	handler := api.NewHandler[T](p, collector, logger, cfg.Server.APIKey)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Copy pool state into the Prometheus gauges periodically.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Metrics.UpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats := p.Stats()
				collector.PoolTotal.Set(float64(stats.Total))
				collector.PoolAvailable.Set(float64(stats.Available))
				collector.PoolPending.Set(float64(stats.Pending))
				collector.PoolCapacity.Set(float64(stats.Capacity))
				if stats.Draining {
					collector.PoolDraining.Set(1)
				} else {
					collector.PoolDraining.Set(0)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "drainTimeout", cfg.Server.DrainTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.DrainTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server forced to shutdown", "error", err)
		}

		drained := make(chan struct{})
		p.Drain(func() { close(drained) })
		select {
		case <-drained:
		case <-shutdownCtx.Done():
			logger.Warn("Drain timed out, destroying remaining resources")
		}
		p.DestroyAllNow(nil)
		return nil
	})

	return g.Wait()
}
