package app

import (
	"strings"

	"github.com/vwmedia/siteutil/internal/auth"
	"github.com/vwmedia/siteutil/internal/database"
	"github.com/vwmedia/siteutil/pkg/mail"
)

// The adapters below translate configuration sections into the option structs
// of the packages that consume them.

// ConnectionConfig selects the host block matching the driver. SQLite only
// uses Path and DSN.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   c.Path,
		DSN:    c.DSN,
	}

	var host DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql", "mariadb":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host, cfg.Port, cfg.Name = host.Host, host.Port, host.Database
	cfg.User, cfg.Password, cfg.Options = host.Username, host.Password, host.Options
	return cfg
}

// SMTPSettings describes the fallback relay used while no stored settings
// switch the transport into SMTP mode.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	f := c.Fallback
	return mail.SMTPSettings{
		Enabled:  f.Enabled,
		Host:     strings.TrimSpace(f.Host),
		Port:     f.Port,
		Username: f.Username,
		Password: f.Password,
		From:     strings.TrimSpace(f.From),
		FromName: f.FromName,
		Security: f.Security,
		Timeout:  f.Timeout,
	}
}

// JWTServiceConfig falls back to auth.DefaultAccessTokenTTL when no TTL is set.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}
	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}
