package web

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie  = "automission_session"
	sessionSubject = "operator"
)

var errUnauthorized = errors.New("unauthorized")

// Sessions issues and checks the signed cookie that marks an unlocked
// browser. The token carries no secret, only proof that the gate passed.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessions signs with key, or with a random per-process key when key is
// empty, in which case restarting the server logs every browser out.
func NewSessions(key string, ttl time.Duration) (*Sessions, error) {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	raw := []byte(key)
	if len(raw) == 0 {
		raw = make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	}
	return &Sessions{key: raw, ttl: ttl, now: time.Now}, nil
}

// TTL is how long an issued session stays valid.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token and its expiry.
func (s *Sessions) Issue() (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify reports errUnauthorized for anything but a valid, unexpired token.
func (s *Sessions) Verify(raw string) error {
	if raw == "" {
		return errUnauthorized
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(sessionSubject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	return nil
}
