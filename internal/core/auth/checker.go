// Package auth holds the password comparison behind the dashboard gate. It
// is a convenience lock for a single operator, not a security boundary.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecret is the shared password used when nothing else is configured.
const DefaultSecret = "admin123"

// CredentialChecker decides whether a submitted password unlocks the dashboard.
type CredentialChecker interface {
	Check(password string) bool
}

// StaticChecker compares against a plaintext secret.
type StaticChecker struct {
	secret []byte
}

func NewStaticChecker(secret string) *StaticChecker {
	return &StaticChecker{secret: []byte(secret)}
}

func (c *StaticChecker) Check(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), c.secret) == 1
}

// BcryptChecker compares against a bcrypt hash of the secret.
type BcryptChecker struct {
	hash []byte
}

// NewBcryptChecker validates the hash up front so a typo in configuration
// fails at startup rather than on every login.
func NewBcryptChecker(hash string) (*BcryptChecker, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &BcryptChecker{hash: []byte(hash)}, nil
}

func (c *BcryptChecker) Check(password string) bool {
	return bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
}

// NewChecker prefers the hash when one is set, falls back to the secret, and
// finally to DefaultSecret.
func NewChecker(secret, hash string) (CredentialChecker, error) {
	if hash != "" {
		return NewBcryptChecker(hash)
	}
	if secret == "" {
		secret = DefaultSecret
	}
	return NewStaticChecker(secret), nil
}

// HashSecret produces a hash suitable for the password_hash setting.
func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
