// Package stack assembles the long-lived components shared by the HTTP server
// and the command line tool.
package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/internal/database"
	"github.com/vwmedia/siteutil/internal/services"
	"github.com/vwmedia/siteutil/internal/smtpconfig"
	"github.com/vwmedia/siteutil/internal/vault"
	"github.com/vwmedia/siteutil/pkg/mail"
)

// Stack holds the database handle and the services built on it.
type Stack struct {
	DB         *gorm.DB
	Store      *services.OptionStore
	Dispatcher *mail.Dispatcher
	Settings   *services.SettingsService
	TestEmail  *services.TestEmailService
	Contact    *services.ContactService
	Sitemap    *services.SitemapService
	Posts      *services.PostService
}

// Option customises Open.
type Option func(*options)

type options struct {
	vault []vault.Option
}

// WithVaultOptions forwards options to the settings sealer.
func WithVaultOptions(opts ...vault.Option) Option {
	return func(o *options) {
		o.vault = append(o.vault, opts...)
	}
}

// Open connects to the database, applies migrations and seed data, and wires
// the services. Contact is nil when site.admin_email is unset.
func Open(ctx context.Context, cfg *app.Config, log *zap.Logger, opts ...Option) (_ *Stack, err error) {
	if cfg == nil {
		return nil, errors.New("stack: config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Stack{}
	defer func() {
		if err != nil {
			s.Close(log)
		}
	}()

	dbCfg := cfg.Database.ConnectionConfig()
	if s.DB, err = database.Open(dbCfg); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = database.AutoMigrateAndSeed(s.DB); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	sealer, generated, err := app.OpenSealer(ctx, s.DB, cfg.Vault, o.vault...)
	if err != nil {
		return nil, fmt.Errorf("open settings vault: %w", err)
	}
	if generated {
		log.Info("generated settings vault key", zap.String("option", database.VaultKeyOption))
	}

	if s.Store, err = services.NewOptionStore(s.DB,
		services.WithSealer(sealer),
		services.WithCacheTTL(cfg.Settings.CacheTTL),
	); err != nil {
		return nil, err
	}

	s.Dispatcher, err = mail.NewDispatcher(cfg.Email.SMTPSettings(), mail.WithHooks(smtpconfig.NewHook(s.Store)))
	if err != nil {
		return nil, fmt.Errorf("initialise mail dispatcher: %w", err)
	}

	if s.Settings, err = services.NewSettingsService(s.Store); err != nil {
		return nil, err
	}
	if s.TestEmail, err = services.NewTestEmailService(s.Dispatcher); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Site.AdminEmail) == "" {
		log.Warn("site.admin_email is empty; contact form disabled")
	} else if s.Contact, err = services.NewContactService(s.Dispatcher, cfg.Site.AdminEmail); err != nil {
		return nil, err
	}

	if s.Sitemap, err = services.NewSitemapService(s.DB, cfg.Site.BaseURL, cfg.Sitemap.Directory); err != nil {
		return nil, err
	}
	if s.Posts, err = services.NewPostService(s.DB, services.WithSitemapBuilder(s.Sitemap)); err != nil {
		return nil, err
	}

	return s, nil
}

// Close releases the database connection.
func (s *Stack) Close(log *zap.Logger) {
	if s == nil || s.DB == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
