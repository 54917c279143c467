// Package token issues and verifies HS256 signed tokens that carry an
// arbitrary JSON payload.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultSecret     = "default_jwt_secret"
	DefaultExpireDays = 7

	// Issuer is stamped into every token and checked on verification.
	Issuer = "corekit"
)

// Config holds the signing secret and token lifetime.
type Config struct {
	Secret     string `json:"secret"`
	ExpireDays int    `json:"expire_days"`
}

func DefaultConfig() Config {
	return Config{Secret: DefaultSecret, ExpireDays: DefaultExpireDays}
}

func NewConfig(secret string, expireDays int) Config {
	return Config{Secret: secret, ExpireDays: expireDays}
}

// TTL is the token lifetime.
func (c Config) TTL() time.Duration {
	return time.Duration(c.ExpireDays) * 24 * time.Hour
}

// Claims is the claim set of an issued token.
type Claims struct {
	Payload  json.RawMessage `json:"payload,omitempty"`
	CreateAt int64           `json:"createAt"`
	jwt.RegisteredClaims
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow replaces the clock used for issuing and checking expiry.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager issues and verifies tokens for one Config.
type Manager struct {
	config Config
	now    func() time.Time
}

func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Generate signs a token carrying payload as JSON.
func (m *Manager) Generate(payload any) (string, error) {
	key, err := m.signingKey()
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodePayload, err)
	}

	now := m.now().UTC()
	claims := Claims{
		Payload:  raw,
		CreateAt: now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSign, err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and decodes its
// payload into out.
func (m *Manager) Verify(tokenString string, out any) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		return err
	}
	if len(claims.Payload) == 0 {
		return fmt.Errorf("%w: payload", ErrMissingField)
	}
	if err := json.Unmarshal(claims.Payload, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodePayload, err)
	}
	return nil
}

// Claims verifies tokenString and returns its claims without decoding the
// payload.
func (m *Manager) Claims(tokenString string) (*Claims, error) {
	return m.parse(tokenString)
}

// IsValid reports whether tokenString is correctly signed and unexpired.
func (m *Manager) IsValid(tokenString string) bool {
	_, err := m.parse(tokenString)
	return err == nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	key, err := m.signingKey()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, fmt.Errorf("%w: %w", ErrMissingField, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}
	return claims, nil
}

func (m *Manager) signingKey() ([]byte, error) {
	if m.config.Secret == "" {
		return nil, ErrInvalidKey
	}
	return []byte(m.config.Secret), nil
}

// VerifyAs verifies tokenString with m and decodes its payload as T.
func VerifyAs[T any](m *Manager, tokenString string) (T, error) {
	var out T
	if err := m.Verify(tokenString, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// GenerateToken signs payload with cfg.
func GenerateToken(payload any, cfg Config) (string, error) {
	return NewManager(cfg).Generate(payload)
}

// VerifyToken verifies tokenString against DefaultConfig.
func VerifyToken[T any](tokenString string) (T, error) {
	return VerifyAs[T](NewManager(DefaultConfig()), tokenString)
}

// IsValidToken checks tokenString against DefaultConfig.
func IsValidToken(tokenString string) bool {
	return NewManager(DefaultConfig()).IsValid(tokenString)
}
