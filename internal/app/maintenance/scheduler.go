package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/pkg/logger"
)

const (
	defaultSitemapSpec = "@daily"
	defaultSweepSpec   = "@hourly"
	staleTempAge       = time.Hour
)

// SitemapBuilder regenerates the sitemap file.
type SitemapBuilder interface {
	Build(ctx context.Context) (int, error)
	Path() string
}

// Scheduler runs periodic site jobs: rebuilding the sitemap and sweeping
// temporary files left behind by interrupted writes.
type Scheduler struct {
	sitemap SitemapBuilder
	cron    *cron.Cron
	now     func() time.Time
	log     *zap.Logger

	sitemapSchedule string
	sweepSchedule   string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used to age temporary files.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSitemapSchedule overrides the cron specification for sitemap rebuilds.
func WithSitemapSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.sitemapSchedule = spec
		}
	}
}

// WithSweepSchedule overrides the cron specification for the temp file sweep.
func WithSweepSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.sweepSchedule = spec
		}
	}
}

// NewScheduler constructs a Scheduler. A nil builder disables every job.
func NewScheduler(sitemap SitemapBuilder, opts ...Option) *Scheduler {
	s := &Scheduler{
		sitemap:         sitemap,
		now:             time.Now,
		log:             logger.WithModule("maintenance"),
		sitemapSchedule: defaultSitemapSpec,
		sweepSchedule:   defaultSweepSpec,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Scheduler) Start() error {
	if s.sitemap == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.sitemapSchedule, func() {
		if _, err := s.sitemap.Build(context.Background()); err != nil {
			s.log.Warn("scheduled sitemap build failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: sitemap schedule %q: %w", s.sitemapSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.sweepSchedule, func() {
		if _, err := SweepTempFiles(filepath.Dir(s.sitemap.Path()), s.now()); err != nil {
			s.log.Warn("temp file sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: sweep schedule %q: %w", s.sweepSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every job sequentially and returns the combined errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.sitemap == nil {
		return nil
	}

	var errs error
	if _, err := SweepTempFiles(filepath.Dir(s.sitemap.Path()), s.now()); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.sitemap.Build(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// SweepTempFiles removes sitemap temp files in dir older than an hour and
// returns how many were deleted.
func SweepTempFiles(dir string, now time.Time) (int, error) {
	if dir == "" {
		return 0, errors.New("sweep temp files: directory is required")
	}

	matches, err := filepath.Glob(filepath.Join(dir, ".sitemap-*.xml"))
	if err != nil {
		return 0, fmt.Errorf("sweep temp files: %w", err)
	}

	var (
		removed int
		errs    error
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		if now.Sub(info.ModTime()) < staleTempAge {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}
