package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/settings"
	"github.com/vwmedia/siteutil/pkg/logger"
	"github.com/vwmedia/siteutil/pkg/metrics"
)

// SettingsService validates submitted settings forms and persists the result.
type SettingsService struct {
	store settings.Store
	log   *zap.Logger
}

// NewSettingsService constructs a settings service backed by store.
func NewSettingsService(store settings.Store) (*SettingsService, error) {
	if store == nil {
		return nil, errors.New("settings service: store is required")
	}
	return &SettingsService{
		store: store,
		log:   logger.WithModule("settings"),
	}, nil
}

// Get returns the stored record.
func (s *SettingsService) Get(ctx context.Context) (settings.Record, error) {
	return s.store.Load(ensureContext(ctx))
}

// Update validates input and saves the resulting record even when some
// fields fail validation. The failures are returned alongside the record.
func (s *SettingsService) Update(ctx context.Context, input settings.RawInput) (settings.Record, settings.ValidationErrors, error) {
	ctx = ensureContext(ctx)

	if input["smtp_password"] == settings.PasswordMask {
		current, err := s.store.Load(ctx)
		if err != nil {
			metrics.SettingsSaves.WithLabelValues("failed").Inc()
			return settings.Record{}, nil, fmt.Errorf("settings service: load current record: %w", err)
		}
		input = cloneInput(input)
		input["smtp_password"] = current.SMTPPassword
	}

	record, errs := settings.Validate(input)

	if err := s.store.Save(ctx, record); err != nil {
		metrics.SettingsSaves.WithLabelValues("failed").Inc()
		return settings.Record{}, errs, fmt.Errorf("settings service: save: %w", err)
	}

	result := "clean"
	if len(errs) > 0 {
		result = "with_errors"
	}
	metrics.SettingsSaves.WithLabelValues(result).Inc()

	for _, verr := range errs {
		metrics.ValidationErrors.WithLabelValues(verr.Field).Inc()
		s.log.Warn("settings field failed validation",
			zap.String("field", verr.Field),
			zap.String("code", verr.Code),
		)
	}

	return record, errs, nil
}

func cloneInput(input settings.RawInput) settings.RawInput {
	out := make(settings.RawInput, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
