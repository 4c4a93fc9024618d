package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/api"
	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/internal/app/maintenance"
	"github.com/vwmedia/siteutil/internal/app/stack"
	iauth "github.com/vwmedia/siteutil/internal/auth"
	"github.com/vwmedia/siteutil/internal/monitoring"
	"github.com/vwmedia/siteutil/internal/monitoring/checks"
)

const databaseProbeTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	Stack     *stack.Stack
	Scheduler *maintenance.Scheduler
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, services, scheduled jobs, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger, opts ...stack.Option) (*runtimeStack, error) {
	rt := &runtimeStack{}
	success := false

	defer func() {
		if !success {
			rt.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	var err error
	rt.Stack, err = stack.Open(ctx, cfg, log, opts...)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	rt.Scheduler = maintenance.NewScheduler(rt.Stack.Sitemap,
		maintenance.WithSitemapSchedule(cfg.Sitemap.Schedule),
		maintenance.WithSweepSchedule(cfg.Sitemap.SweepSchedule),
	)
	if err := rt.Scheduler.RunOnce(ctx); err != nil {
		log.Warn("initial sitemap build failed", zap.Error(err))
	}
	if err := rt.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	health := monitoring.NewHealthManager(
		checks.Database(rt.Stack.DB, databaseProbeTimeout),
		checks.Sitemap(rt.Stack.Sitemap.Path(), cfg.Sitemap.MaxAge, nil),
	)

	rt.Router, err = api.NewRouter(cfg, jwtSvc, api.Services{
		Settings:  rt.Stack.Settings,
		TestEmail: rt.Stack.TestEmail,
		Contact:   rt.Stack.Contact,
		Posts:     rt.Stack.Posts,
		Sitemap:   rt.Stack.Sitemap,
		Health:    health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return rt, nil
}

// Shutdown stops background jobs, waiting up to ctx for running ones, then
// releases the database.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		select {
		case <-s.Scheduler.Stop().Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	s.Stack.Close(log)
}
