package app

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/database"
	"github.com/vwmedia/siteutil/internal/vault"
)

// DecodeKey decodes a key from hex or base64 encoding to raw bytes. Values
// that are neither are used as raw bytes.
func DecodeKey(value string) ([]byte, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, fmt.Errorf("key value is empty")
	}

	if len(v)%2 == 0 {
		if decoded, err := hex.DecodeString(v); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(v); err == nil {
		return decoded, nil
	}

	return []byte(v), nil
}

// OpenSealer builds the settings sealer. When vault.encryption_key is unset a
// key is generated once and kept in the options table; generated reports that
// case.
func OpenSealer(ctx context.Context, db *gorm.DB, cfg VaultConfig, opts ...vault.Option) (sealer *vault.Sealer, generated bool, err error) {
	key := strings.TrimSpace(cfg.EncryptionKey)
	if key == "" {
		candidate, err := GenerateVaultKey()
		if err != nil {
			return nil, false, fmt.Errorf("generate vault key: %w", err)
		}
		if key, err = database.EnsureVaultKey(ctx, db, candidate); err != nil {
			return nil, false, err
		}
		generated = key == candidate
	}

	raw, err := DecodeKey(key)
	if err != nil {
		return nil, false, err
	}
	sealer, err = vault.NewSealer(raw, opts...)
	if err != nil {
		return nil, false, err
	}
	return sealer, generated, nil
}
