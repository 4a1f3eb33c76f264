package core

import (
	"context"
	"errors"
	"sync"
)

// fakeCredentials is an in-memory CredentialStore with error injection
type fakeCredentials struct {
	mu       sync.Mutex
	token    string
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (f *fakeCredentials) Load(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.token, nil
}

func (f *fakeCredentials) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *fakeCredentials) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token = ""
	return nil
}

func (f *fakeCredentials) stored() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// fakeAuthAPI answers auth calls from fields. A non-nil meGate blocks Me
// until it is closed.
type fakeAuthAPI struct {
	mu sync.Mutex

	loginResult    *AuthResult
	loginErr       error
	registerResult *AuthResult
	registerErr    error
	meUser         *User
	meErr          error
	meGate         chan struct{}
	logoutErr      error

	logins, registers, mes int
	loggedOut              []string
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (*AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return f.loginResult, f.loginErr
}

func (f *fakeAuthAPI) Register(context.Context, RegisterInput) (*AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	return f.registerResult, f.registerErr
}

func (f *fakeAuthAPI) Me(ctx context.Context, _ string) (*User, error) {
	f.mu.Lock()
	f.mes++
	gate := f.meGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meUser, f.meErr
}

func (f *fakeAuthAPI) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}

func (f *fakeAuthAPI) calls() (logins, registers, mes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.registers, f.mes
}

var errNetwork = errors.New("dial tcp: connection refused")

var (
	farmer = &User{ID: 1, Email: "alice@example.com", Username: "alice", Role: RoleFarmer, KYCStatus: KYCStatusPending}
	buyer  = &User{ID: 2, Email: "bob@example.com", Username: "bob", Role: RoleBuyer, KYCStatus: KYCStatusPending}
	admin  = &User{ID: 3, Email: "admin@example.com", Username: "admin", Role: RoleAdmin, IsVerified: true, KYCStatus: KYCStatusApproved}
)
