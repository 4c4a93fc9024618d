package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SealedPrefix marks a value produced by Sealer.Seal.
const SealedPrefix = "enc:v1:"

const minSaltLength = 16

// ErrNotSealed is returned by Open for values without SealedPrefix.
var ErrNotSealed = errors.New("vault: value is not sealed")

// Params controls the cost factors for Argon2id key derivation.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams returns the Argon2id parameters used for the settings key.
func DefaultParams() Params {
	return Params{
		Time:    2,
		Memory:  64 * 1024,
		Threads: 4,
	}
}

func (p Params) validate() error {
	if p.Time == 0 {
		return errors.New("vault: argon2 time cost must be greater than zero")
	}
	if p.Threads == 0 {
		return errors.New("vault: argon2 parallelism must be greater than zero")
	}
	if p.Memory < 8*uint32(p.Threads) {
		return errors.New("vault: argon2 memory cost must be at least 8 * threads")
	}
	return nil
}

// Option configures a Sealer.
type Option func(*sealerConfig)

type sealerConfig struct {
	params Params
	salt   []byte
}

// WithSalt overrides the salt used for key derivation.
func WithSalt(salt []byte) Option {
	cp := append([]byte(nil), salt...)
	return func(cfg *sealerConfig) {
		cfg.salt = cp
	}
}

// WithParams overrides the Argon2id parameters.
func WithParams(params Params) Option {
	return func(cfg *sealerConfig) {
		cfg.params = params
	}
}

// Sealer encrypts secrets stored inside the settings record with an
// AES-256-GCM key derived from the configured master key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the sealing key from masterKey.
func NewSealer(masterKey []byte, opts ...Option) (*Sealer, error) {
	if len(masterKey) == 0 {
		return nil, errors.New("vault: master key is required")
	}

	cfg := sealerConfig{params: DefaultParams()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.params.validate(); err != nil {
		return nil, err
	}

	if len(cfg.salt) == 0 {
		sum := sha256.Sum256(masterKey)
		cfg.salt = sum[:minSaltLength]
	} else if len(cfg.salt) < minSaltLength {
		return nil, fmt.Errorf("vault: salt must be at least %d bytes (got %d)", minSaltLength, len(cfg.salt))
	}

	key := argon2.IDKey(masterKey, cfg.salt, cfg.params.Time, cfg.params.Memory, cfg.params.Threads, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. Empty and already sealed values are returned
// unchanged.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" || IsSealed(plaintext) {
		return plaintext, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return "", ErrNotSealed
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("vault: decode: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("vault: ciphertext too short")
	}

	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("vault: open: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether value carries SealedPrefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

// GenerateToken returns a random URL-safe token of length random bytes.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("vault: token length must be positive")
	}
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
