package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login. It does not say
// which part was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// strippedPrefix is restored on hashes whose leading "$2b$10$e" was eaten by
// shell variable expansion when the env file was sourced.
const strippedPrefix = "$2b$10$e"

// NormalizeHash trims hash and restores the bcrypt prefix on 52-character
// values that lost it.
func NormalizeHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if hash != "" && !strings.HasPrefix(hash, "$2b$") && len(hash) == 52 {
		return strippedPrefix + hash
	}
	return hash
}

// Admin is the single site administrator allowed to open a session.
type Admin struct {
	Username     string
	PasswordHash string
}

// NewAdmin normalizes the stored hash.
func NewAdmin(username, passwordHash string) Admin {
	return Admin{
		Username:     strings.TrimSpace(username),
		PasswordHash: NormalizeHash(passwordHash),
	}
}

// Configured reports whether a login can ever succeed.
func (a Admin) Configured() bool {
	return a.Username != "" && a.PasswordHash != ""
}

// Verify checks username and password. Blank input and unconfigured admins
// always fail.
func (a Admin) Verify(username, password string) error {
	if !a.Configured() || username == "" || password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("auth: password must not be empty")
	}
	if cost == 0 {
		cost = 10
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
