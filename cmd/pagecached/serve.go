package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/pagecache"
	promhooks "github.com/unkn0wn-root/pagecache/hooks/prom"
	"github.com/unkn0wn-root/pagecache/internal/config"
	"github.com/unkn0wn-root/pagecache/internal/mdrender"
	zaplog "github.com/unkn0wn-root/pagecache/log/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks, err := promhooks.New(reg)
	if err != nil {
		return err
	}

	opts, err := cacheOptions(cfg, log, hooks)
	if err != nil {
		return err
	}

	md := mdrender.New(os.DirFS(cfg.Content))
	renderer, cache, err := pagecache.Attach(ctx, md, opts)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := cache.Close(closeCtx); err != nil {
				log.Warn("cache close failed", zap.Error(err))
			}
		}()
	}

	// pages are rendered uncached until the content tree has been parsed
	go func() {
		if err := md.Warm(); err != nil {
			log.Error("content warmup failed", zap.Error(err))
			return
		}
		log.Info("content ready", zap.String("dir", cfg.Content))
	}()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(renderer, md, reg, log),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Listen), zap.String("version", opts.Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newRouter(r pagecache.Renderer, md *mdrender.Renderer, reg *prometheus.Registry, log *zap.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !md.Ready() {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	router.Handle("/*", pagecache.NewHandler(r, pagecache.HandlerOptions{
		Logger: zaplog.New(log),
	}))
	return router
}

// cacheOptions fills the code-only parts of the options: logger, hooks and
// the build version fallback.
func cacheOptions(cfg *config.Config, log *zap.Logger, hooks pagecache.Hooks) (pagecache.Options, error) {
	opts, err := cfg.Cache.Options()
	if err != nil {
		return pagecache.Options{}, err
	}
	if opts.Version == "" {
		opts.Version = version
	}
	opts.Logger = zaplog.New(log)
	opts.Hooks = hooks
	return opts, nil
}

func newLogger(c config.Log) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
