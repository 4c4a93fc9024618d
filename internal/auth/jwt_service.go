package auth

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTokenTTL defines the fallback validity period for admin tokens.
const DefaultAccessTokenTTL = 12 * time.Hour

// RoleAdmin grants access to the settings and content API.
const RoleAdmin = "admin"

// JWTConfig configures a JWTService. Clock defaults to time.Now.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims are the registered claims plus the caller role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenInput describes a token to mint.
type AccessTokenInput struct {
	Subject string
	Role    string
	TTL     time.Duration
}

// JWTService issues and checks HS256 admin tokens.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService returns a service signing with cfg.Secret, which must be set.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	s := &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cmp.Or(max(cfg.AccessTokenTTL, 0), DefaultAccessTokenTTL),
		now:    cfg.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}
	s.parser = jwt.NewParser(parserOpts...)
	return s, nil
}

// GenerateAccessToken signs a token for input.Subject. Role defaults to
// RoleAdmin and TTL to the service default. Every token gets a unique ID.
func (s *JWTService) GenerateAccessToken(input AccessTokenInput) (string, error) {
	if input.Subject == "" {
		return "", errors.New("jwt: subject is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("jwt: token id: %w", err)
	}

	issued := s.now()
	ttl := cmp.Or(max(input.TTL, 0), s.ttl)
	claims := Claims{
		Role: cmp.Or(input.Role, RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   input.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, expiry and issuer and returns the
// claims. Tokens without a subject are rejected.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	claims := new(Claims)
	if _, err := s.parser.ParseWithClaims(tokenString, claims, s.key); err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("jwt: missing subject claim")
	}
	return claims, nil
}

func (s *JWTService) key(*jwt.Token) (any, error) {
	return s.secret, nil
}
