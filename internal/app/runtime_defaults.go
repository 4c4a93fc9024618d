package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vwmedia/siteutil/internal/vault"
)

const (
	jwtSecretBytes   = 48
	vaultSecretBytes = 32
)

// ApplyRuntimeDefaults fills values the server cannot start without and
// normalises the site section. It returns the keys that were generated so
// callers can log the event without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := vault.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		generated["auth.jwt.secret"] = true
	}

	// Permalinks are joined as base + "/" + slug + "/".
	cfg.Site.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Site.BaseURL), "/")
	cfg.Site.AdminEmail = strings.TrimSpace(cfg.Site.AdminEmail)
	if cfg.Site.ContactRateLimit < 0 {
		cfg.Site.ContactRateLimit = 0
	}

	return generated, nil
}

// GenerateVaultKey returns a fresh hex encoded key suitable for vault.encryption_key.
func GenerateVaultKey() (string, error) {
	buf := make([]byte, vaultSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
