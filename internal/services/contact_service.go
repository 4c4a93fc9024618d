package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/settings"
	"github.com/vwmedia/siteutil/pkg/logger"
	mailer "github.com/vwmedia/siteutil/pkg/mail"
	"github.com/vwmedia/siteutil/pkg/validator"
)

var (
	// ErrContactIncomplete indicates a required contact form field is missing.
	ErrContactIncomplete = errors.New("contact service: missing required fields")
	// ErrContactEmailInvalid indicates the submitted reply address is unusable.
	ErrContactEmailInvalid = errors.New("contact service: invalid email address")
)

// ContactInput is a public contact form submission.
type ContactInput struct {
	Name         string `json:"contact_name" form:"contact_name" validate:"required"`
	Email        string `json:"email_address" form:"email_address" validate:"required"`
	Number       string `json:"contact_number" form:"contact_number"`
	Organisation string `json:"organisation_name" form:"organisation_name"`
	Subject      string `json:"message_subject" form:"message_subject" validate:"required"`
	Message      string `json:"message" form:"message" validate:"required"`
}

// ContactService forwards contact form submissions to the site administrator.
type ContactService struct {
	mailer     mailer.Mailer
	adminEmail string
	log        *zap.Logger
}

// NewContactService constructs the service. adminEmail receives every submission.
func NewContactService(m mailer.Mailer, adminEmail string) (*ContactService, error) {
	if m == nil {
		return nil, errors.New("contact service: mailer is required")
	}
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		return nil, errors.New("contact service: admin email is required")
	}
	return &ContactService{
		mailer:     m,
		adminEmail: adminEmail,
		log:        logger.WithModule("contact"),
	}, nil
}

// Submit sanitizes input and mails it to the administrator with the sender
// set as both From and Reply-To.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) error {
	clean := ContactInput{
		Name:         settings.SanitizeText(input.Name),
		Email:        sanitizeEmail(input.Email),
		Number:       settings.SanitizeText(input.Number),
		Organisation: settings.SanitizeText(input.Organisation),
		Subject:      settings.SanitizeText(input.Subject),
		Message:      settings.StripTags(input.Message),
	}

	if err := validator.ValidateStruct(clean); err != nil {
		return fmt.Errorf("%w: %v", ErrContactIncomplete, err)
	}
	if _, err := mail.ParseAddress(clean.Email); err != nil || !settings.EmailShape(clean.Email) {
		return ErrContactEmailInvalid
	}

	err := s.mailer.Send(ensureContext(ctx), mailer.Message{
		From:    clean.Email,
		ReplyTo: clean.Email,
		To:      []string{s.adminEmail},
		Subject: clean.Subject,
		Body:    clean.Message,
	})
	if err != nil {
		return fmt.Errorf("contact service: send: %w", err)
	}

	s.log.Info("contact message forwarded",
		zap.String("organisation", clean.Organisation),
		zap.Bool("has_number", clean.Number != ""),
	)
	return nil
}

// sanitizeEmail drops every character that cannot appear in an address.
func sanitizeEmail(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if r > 0x7e || r < 0x21 {
			continue
		}
		switch r {
		case '"', '(', ')', ',', ':', ';', '<', '>', '\\':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
