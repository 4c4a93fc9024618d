// Package smtpconfig points the outgoing mail transport at the SMTP server
// stored in the site settings.
package smtpconfig

import (
	"context"

	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/settings"
	"github.com/vwmedia/siteutil/pkg/logger"
	"github.com/vwmedia/siteutil/pkg/mail"
)

// Configure applies record to t. It leaves t untouched unless SMTP support is
// switched on and both host and port are filled; "0" counts as empty.
func Configure(record settings.Record, t *mail.Transport) {
	if t == nil {
		return
	}
	if !settings.Filled(flag(record.SMTPSupport)) || !settings.Filled(record.SMTPHost) || !settings.Filled(record.SMTPPort) {
		return
	}

	t.UseSMTP()
	t.Host = record.SMTPHost
	t.Port = record.SMTPPort

	if settings.LooseEqual(flag(record.SMTPDebug), "1") {
		t.Debug = true
	}

	// Credentials follow the encryption value, not smtp_authentication.
	if settings.LooseEqual(record.SMTPEncryption, "1") {
		t.Username = record.SMTPUsername
		t.Password = record.SMTPPassword
	}

	t.Security = record.SMTPEncryption

	if settings.Filled(record.SMTPFromEmail) {
		t.From = record.SMTPFromEmail
	}
	if settings.Filled(record.SMTPFromName) {
		t.FromName = record.SMTPFromName
	}
}

// NewHook returns a mail hook that loads the stored record before each
// delivery. A failed load leaves the transport as it is.
func NewHook(store settings.Store) mail.Hook {
	log := logger.WithModule("smtpconfig")
	return func(ctx context.Context, t *mail.Transport) {
		record, err := store.Load(ctx)
		if err != nil {
			log.Warn("load settings for smtp override", zap.Error(err))
			return
		}
		Configure(record, t)
	}
}

func flag(value int) string {
	if value == 0 {
		return ""
	}
	return "1"
}
