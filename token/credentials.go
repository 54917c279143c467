package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword returns the bcrypt hash of password. Passwords longer than
// 71 bytes are rejected with ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	// bcrypt only looks at the first 72 bytes
	if len(password) > 71 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.New("unable to hash password")
	}
	return string(hashed), nil
}

// CheckPasswordHash returns nil when password matches the bcrypt hash.
func CheckPasswordHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GetBearerToken extracts the token from an "Authorization: Bearer <token>" header.
func GetBearerToken(headers http.Header) (string, error) {
	return authorizationValue(headers, "Bearer ")
}

// GetAPIKey extracts the key from an "Authorization: ApiKey <key>" header.
func GetAPIKey(headers http.Header) (string, error) {
	return authorizationValue(headers, "ApiKey ")
}

func authorizationValue(headers http.Header, scheme string) (string, error) {
	authorization := headers.Get("Authorization")
	if authorization == "" {
		return "", errors.New("missing authorization header")
	}
	if !strings.HasPrefix(authorization, scheme) {
		return "", errors.New("expected " + strings.TrimSpace(scheme) + " authorization scheme")
	}

	// Trim off the prefix and whitespace
	value := strings.TrimSpace(strings.TrimPrefix(authorization, scheme))
	if value == "" {
		return "", errors.New("missing " + strings.ToLower(strings.TrimSpace(scheme)) + " credential")
	}
	return value, nil
}

// MakeRefreshToken returns 256 random bits, hex encoded.
func MakeRefreshToken() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
