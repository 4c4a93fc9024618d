// Command server runs the site utility HTTP service: the settings API, the
// public contact form, sitemap.xml and the background maintenance jobs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/pkg/logger"
)

const defaultShutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("siteutil-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration directory or file")
	envFile := fs.String("env-file", ".env", "Optional dotenv file loaded before configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := app.LoadConfigFrom(*configPath)
	if err != nil {
		return err
	}
	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}
	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")
	if generated["auth.jwt.secret"] {
		log.Warn("auth.jwt.secret not configured; generated a random secret, admin tokens will not survive a restart")
	}

	rt, err := bootstrapRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           rt.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := serve(ctx, srv, timeout, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	rt.Shutdown(shutdownCtx, log)

	return serveErr
}

// serve runs srv until ctx is cancelled, then drains in-flight requests for
// at most timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log *zap.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		listenErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-listenErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
