// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the settings behind the HTTP API's login surface: the JWT
// signing secret and the bcrypt parameters for the stored admin credential.
type AuthConfig struct {
	JWTSecret       string
	ExpirationHours int
	BcryptCost      int
	AdminUser       string
	AdminHash       string // bcrypt hash of the admin password
}

// NewAuthConfig builds auth settings from environment variables. JWT_SECRET
// and ADMIN_PASSWORD_HASH are required; JWT_EXPIRATION_HOURS defaults to 24,
// BCRYPT_COST to 12 and ADMIN_USER to "admin".
func NewAuthConfig() (*AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required but not set")
	}

	expirationHours, err := envInt("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cost, err := envInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}

	adminUser := os.Getenv("ADMIN_USER")
	if adminUser == "" {
		adminUser = "admin"
	}

	cfg := &AuthConfig{
		JWTSecret:       secret,
		ExpirationHours: expirationHours,
		BcryptCost:      cost,
		AdminUser:       adminUser,
		AdminHash:       adminHash,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) normalize() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET too short: need at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.BcryptCost < 10 || c.BcryptCost > 15 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-15)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes a password with the configured bcrypt cost. Used by
// the credential bootstrap tooling, not the login path.
func (c *AuthConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a login attempt against the stored admin hash.
func (c *AuthConfig) VerifyPassword(user, pw string) bool {
	if user != c.AdminUser {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.AdminHash), []byte(pw)) == nil
}

func envInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return n, nil
}
