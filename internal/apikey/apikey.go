// Package apikey authenticates internal/server's HTTP requests against a
// single bcrypt-hashed API key, a reduced form of
// internal/auth's multi-scheme authenticator: mysqldiff's serve
// subcommand has exactly one caller-facing credential, not a user/role
// graph to authorize against.
package apikey

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoKeyConfigured means the server was started without an API key
// hash, so every request is rejected rather than silently accepted.
var ErrNoKeyConfigured = errors.New("apikey: no key configured")

// ErrInvalidKey means the presented key didn't match the configured hash.
var ErrInvalidKey = errors.New("apikey: invalid key")

// Checker validates a presented API key against a single bcrypt hash.
type Checker struct {
	hash []byte
}

// NewChecker builds a Checker from a bcrypt hash, as produced by
// Hash. An empty hash is accepted here; Check then always fails with
// ErrNoKeyConfigured, so a misconfigured server fails closed.
func NewChecker(hash string) *Checker {
	return &Checker{hash: []byte(hash)}
}

// Hash bcrypt-hashes a raw API key for storage in configuration,
// mirroring auth.HashPassword.
func Hash(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Check reports whether key matches the configured hash. With no hash
// configured it returns ErrNoKeyConfigured at once, without any bcrypt
// work; otherwise it runs bcrypt.CompareHashAndPassword and folds the
// boolean result through a constant-time comparison.
func (c *Checker) Check(key string) error {
	if len(c.hash) == 0 {
		return ErrNoKeyConfigured
	}

	err := bcrypt.CompareHashAndPassword(c.hash, []byte(key))
	ok := err == nil
	if subtle.ConstantTimeCompare([]byte{boolByte(ok)}, []byte{1}) != 1 {
		return ErrInvalidKey
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
