package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

var (
	ErrEmptyToken = errors.New("token and hash cannot be empty")
)

const (
	DefaultTokenLength = 32 // 256 bits
)

// Credential is a freshly minted bearer token. Token goes to the client,
// Hash is the only form that is stored.
type Credential struct {
	Token string
	Hash  string
}

// NewCredential mints a random bearer token of length bytes, or
// DefaultTokenLength when length <= 0.
func NewCredential(length int) (*Credential, error) {
	if length <= 0 {
		length = DefaultTokenLength
	}

	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	token := base64.RawURLEncoding.EncodeToString(raw)
	return &Credential{
		Token: token,
		Hash:  HashToken(token),
	}, nil
}

// HashToken is the storage key of a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MatchToken compares a presented token against a stored hash in
// constant time.
func MatchToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) == 1, nil
}
