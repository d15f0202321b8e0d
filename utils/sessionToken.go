package utils

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"InsureCost/models"

	"github.com/o1egl/paseto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	// DefaultSessionTTL bounds how long a sealed session stays restorable.
	DefaultSessionTTL = 8 * time.Hour

	minSecretLength = 16
	sessionKeyInfo  = "insurecost dashboard session"
)

// SessionSealer encrypts stored sessions into PASETO v2 local tokens so the
// backend cookies kept with them never sit in storage in the clear.
type SessionSealer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionSealer derives the 32-byte symmetric key from a secret of any
// length using HKDF-SHA256.
func NewSessionSealer(secret string, ttl time.Duration) (*SessionSealer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes long, got %d", minSecretLength, len(secret))
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sessionKeyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive session key")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionSealer{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns how long sealed sessions stay valid.
func (s *SessionSealer) TTL() time.Duration {
	return s.ttl
}

// Seal stamps an expiry on the session and encrypts it.
func (s *SessionSealer) Seal(stored models.StoredSession) (string, error) {
	stored.Expiry = s.now().Add(s.ttl)
	token, err := paseto.NewV2().Encrypt(s.key, stored, nil)
	if err != nil {
		return "", fmt.Errorf("failed to seal session: %w", err)
	}
	return token, nil
}

// Open decrypts a sealed session and rejects expired ones.
func (s *SessionSealer) Open(token string) (*models.StoredSession, error) {
	var stored models.StoredSession
	if err := paseto.NewV2().Decrypt(token, s.key, &stored, nil); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	if s.now().After(stored.Expiry) {
		return nil, models.ErrSessionExpired
	}
	return &stored, nil
}
