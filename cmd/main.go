package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TissotPA/Match/internal/adapters/http/api"
	"github.com/TissotPA/Match/internal/adapters/http/live"
	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/adapters/template"
	app "github.com/TissotPA/Match/internal/app"
	"github.com/TissotPA/Match/internal/config"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/TissotPA/Match/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("courtside: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	svc, hub, handler := wire(cfg, st, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics.StartSystemCollector(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreBackend),
			logger.String("template", cfg.TemplateURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// wire builds the service, the live hub and the HTTP handler from cfg. The
// service is not started.
func wire(cfg *config.Config, st store.Store, log logger.Logger) (*app.Service, *live.Hub, http.Handler) {
	tmpl := template.New(cfg.TemplateURL,
		template.WithTimeout(cfg.TemplateTimeout()),
		template.WithMaxBytes(cfg.TemplateMaxBytes),
	)
	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(st),
		app.WithTemplate(tmpl),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithKeys(cfg.SnapshotKey, cfg.RecapKey),
		app.WithDefaultPlayer(cfg.DefaultPlayer),
		app.WithLocation(cfg.Location()),
	)

	hub := live.NewHub(
		live.WithSnapshot(svc.Snapshot),
		live.WithCheckOrigin(live.AllowOrigins(cfg.CORSOrigins)),
		live.WithLogger(log.Named("live")),
	)
	svc.Subscribe(hub)

	handler := api.NewServer(svc,
		api.WithLive(hub),
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("api")),
	).Handler()
	return svc, hub, handler
}
