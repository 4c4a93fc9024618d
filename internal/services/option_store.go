package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/database"
	"github.com/vwmedia/siteutil/internal/settings"
	"github.com/vwmedia/siteutil/internal/vault"
	"github.com/vwmedia/siteutil/pkg/logger"
)

const defaultOptionCacheTTL = 5 * time.Minute

// OptionStore persists the settings record as a single JSON option row. The
// decoded record is cached in memory; Save writes through to the cache.
type OptionStore struct {
	db     *gorm.DB
	sealer *vault.Sealer
	cache  *cache.Cache
	log    *zap.Logger

	// mu serialises cache fills with saves so a reload never caches a row
	// that a concurrent save is replacing.
	mu sync.Mutex
}

// OptionStoreOption customises OptionStore behaviour.
type OptionStoreOption func(*optionStoreConfig)

type optionStoreConfig struct {
	sealer *vault.Sealer
	ttl    time.Duration
}

// WithSealer encrypts the SMTP password at rest.
func WithSealer(sealer *vault.Sealer) OptionStoreOption {
	return func(cfg *optionStoreConfig) {
		cfg.sealer = sealer
	}
}

// WithCacheTTL overrides how long a loaded record is reused.
func WithCacheTTL(ttl time.Duration) OptionStoreOption {
	return func(cfg *optionStoreConfig) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

// NewOptionStore constructs the settings store once a database handle is supplied.
func NewOptionStore(db *gorm.DB, opts ...OptionStoreOption) (*OptionStore, error) {
	if db == nil {
		return nil, errors.New("option store: db is required")
	}

	cfg := optionStoreConfig{ttl: defaultOptionCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &OptionStore{
		db:     db,
		sealer: cfg.sealer,
		cache:  cache.New(cfg.ttl, 2*cfg.ttl),
		log:    logger.WithModule("settings"),
	}, nil
}

var _ settings.Store = (*OptionStore)(nil)

// Load returns the stored record, or the defaults when nothing was saved yet.
func (s *OptionStore) Load(ctx context.Context) (settings.Record, error) {
	if cached, ok := s.cache.Get(settings.OptionName); ok {
		return cached.(settings.Record), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache.Get(settings.OptionName); ok {
		return cached.(settings.Record), nil
	}

	raw, err := database.GetOption(ensureContext(ctx), s.db, settings.OptionName)
	if errors.Is(err, database.ErrOptionNotFound) {
		return settings.Default(), nil
	}
	if err != nil {
		return settings.Record{}, fmt.Errorf("option store: load: %w", err)
	}

	var record settings.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return settings.Record{}, fmt.Errorf("option store: decode: %w", err)
	}

	if vault.IsSealed(record.SMTPPassword) {
		if s.sealer == nil {
			return settings.Record{}, errors.New("option store: smtp password is sealed but no key is configured")
		}
		if record.SMTPPassword, err = s.sealer.Open(record.SMTPPassword); err != nil {
			return settings.Record{}, fmt.Errorf("option store: open smtp password: %w", err)
		}
	}

	s.cache.SetDefault(settings.OptionName, record)
	return record, nil
}

// Save replaces the stored record wholesale.
func (s *OptionStore) Save(ctx context.Context, record settings.Record) error {
	stored := record
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(record.SMTPPassword)
		if err != nil {
			return fmt.Errorf("option store: seal smtp password: %w", err)
		}
		stored.SMTPPassword = sealed
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("option store: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.UpsertOption(ensureContext(ctx), s.db, settings.OptionName, payload); err != nil {
		s.cache.Delete(settings.OptionName)
		return fmt.Errorf("option store: save: %w", err)
	}
	s.cache.SetDefault(settings.OptionName, record)

	s.log.Debug("settings record saved", zap.Bool("sealed", s.sealer != nil))
	return nil
}
