package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vwmedia/siteutil/internal/auth"
	"github.com/vwmedia/siteutil/pkg/mail"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "console", cfg.Server.LogFormat)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, map[string]string{"sslmode": "require"}, cfg.Database.Postgres.Options)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Email.Fallback.Enabled)
	require.Equal(t, 2525, cfg.Email.Fallback.Port)
	require.Equal(t, 15*time.Second, cfg.Email.Fallback.Timeout)

	require.Equal(t, "owner@example.com", cfg.Site.AdminEmail)
	require.Equal(t, "/srv/www", cfg.Sitemap.Directory)
	require.Equal(t, "0 3 * * *", cfg.Sitemap.Schedule)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/siteutil.sqlite", cfg.Database.Path)
	require.Equal(t, 25, cfg.Email.Fallback.Port)
	require.Equal(t, 10*time.Second, cfg.Email.Fallback.Timeout)
	require.Equal(t, "@daily", cfg.Sitemap.Schedule)
	require.Equal(t, "@hourly", cfg.Sitemap.SweepSchedule)
	require.Equal(t, 5*time.Minute, cfg.Settings.CacheTTL)
	require.Equal(t, 48*time.Hour, cfg.Sitemap.MaxAge)
	require.Equal(t, 5, cfg.Site.ContactRateLimit)
	require.Equal(t, 12*time.Hour, cfg.Auth.JWT.TTL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SITEUTIL_SITE_ADMIN_EMAIL", "env@example.com")
	t.Setenv("SITEUTIL_SERVER_PORT", "7070")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "env@example.com", cfg.Site.AdminEmail)
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestConfigAdapters(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	db := cfg.Database.ConnectionConfig()
	require.Equal(t, "postgres", db.Driver)
	require.Equal(t, "db.example.com", db.Host)
	require.Equal(t, 6543, db.Port)
	require.Equal(t, "site", db.Name)
	require.Equal(t, "site", db.User)

	require.Equal(t, mail.SMTPSettings{
		Enabled:  true,
		Host:     "relay.example.com",
		Port:     2525,
		Username: "relay-user",
		Password: "relay-pass",
		From:     "no-reply@example.com",
		FromName: "Example Site",
		Security: "tls",
		Timeout:  15 * time.Second,
	}, cfg.Email.SMTPSettings())

	jwtCfg := cfg.Auth.JWTServiceConfig()
	require.Equal(t, "example", jwtCfg.Issuer)
	require.Equal(t, 30*time.Minute, jwtCfg.AccessTokenTTL)

	require.Equal(t, auth.DefaultAccessTokenTTL, AuthConfig{}.JWTServiceConfig().AccessTokenTTL)

	sqlite := DatabaseConfig{Driver: "SQLite", Path: "x.db"}.ConnectionConfig()
	require.Equal(t, "sqlite", sqlite.Driver)
	require.Empty(t, sqlite.Host)
}
