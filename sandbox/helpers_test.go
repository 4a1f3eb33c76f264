package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/pkg/crypto"
)

var testClient = Client{IP: "127.0.0.1", UserAgent: "test-agent"}

// cheapHasher keeps argon2 fast enough for table tests
func cheapHasher() *crypto.Argon2 {
	return &crypto.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestSandbox(t *testing.T) (*Sandbox, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	s, err := New(Config{Storage: storage, PasswordHasher: cheapHasher()})
	require.NoError(t, err)
	return s, storage
}

func farmerInput(name string) core.RegisterInput {
	return core.RegisterInput{
		Email:    name + "@example.com",
		Username: name,
		Password: "secret123",
		FullName: strings.ToUpper(name[:1]) + name[1:] + " Farmer",
		Role:     core.RoleFarmer,
	}
}

func signUp(t *testing.T, s *Sandbox, input core.RegisterInput) *core.AuthResult {
	t.Helper()
	result, err := s.Auth.SignUp(context.Background(), input, testClient)
	require.NoError(t, err)
	return result
}

func seedAdmin(t *testing.T, s *Sandbox) *core.User {
	t.Helper()
	admin, err := s.Auth.EnsureAdmin(context.Background(), AdminInput{
		Email:    "admin@agromart.local",
		Password: "adminpass",
	})
	require.NoError(t, err)
	return admin
}

func submission(number string) core.KYCSubmission {
	return core.KYCSubmission{
		DocumentType:   core.DocumentNationalID,
		DocumentNumber: number,
		DocumentFile:   &core.Upload{Name: "id.png", Reader: strings.NewReader("\x89PNG\r\n\x1a\nfake")},
		SelfieFile:     &core.Upload{Name: "selfie.jpg", Reader: strings.NewReader("selfie")},
	}
}

// fixedClock returns a clock that only moves when advanced
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}
