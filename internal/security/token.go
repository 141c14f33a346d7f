package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTokenExpired  = errors.New("token has expired")
	ErrTokenMismatch = errors.New("token does not match")
)

// DefaultTokenTTLDays is how long an emailed link stays valid
const DefaultTokenTTLDays = 7

// PublicToken is a freshly issued bearer credential. Plaintext is
// returned exactly once for embedding in an outbound email link; only
// Hash and ExpiresAt are ever persisted.
type PublicToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Generate() (PublicToken, error)
}

type tokenIssuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(ttlDays int) TokenIssuer {
	if ttlDays <= 0 {
		ttlDays = DefaultTokenTTLDays
	}
	return &tokenIssuer{
		ttl: time.Duration(ttlDays) * 24 * time.Hour,
		now: time.Now,
	}
}

func (i *tokenIssuer) Generate() (PublicToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return PublicToken{}, fmt.Errorf("failed to generate token: %w", err)
	}
	plaintext := hex.EncodeToString(buf)

	return PublicToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		ExpiresAt: i.now().Add(i.ttl),
	}, nil
}

// HashToken returns the hex SHA-256 of a plaintext token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Verify checks a presented token against the stored hash and expiry.
// Expiry is checked first so an expired link never leaks whether its
// token would otherwise have matched.
func Verify(token, storedHash string, expiresAt *time.Time, now time.Time) error {
	if storedHash == "" || expiresAt == nil {
		return ErrTokenMismatch
	}
	if now.After(*expiresAt) {
		return ErrTokenExpired
	}
	if subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}
