package core

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// SessionListener is called after every session change with the new
// current user (nil when signed out).
type SessionListener func(user *User)

// SessionStore holds the bearer credential and the user it resolved to.
// The user is only ever present together with a credential.
type SessionStore struct {
	mu        sync.RWMutex
	token     string
	user      *User
	storage   CredentialStore
	logger    *zap.Logger
	listeners map[int]SessionListener
	nextID    int
}

// NewSessionStore creates an empty session backed by storage.
// storage may be nil, in which case the credential lives only in memory.
func NewSessionStore(storage CredentialStore, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		storage:   storage,
		logger:    logger,
		listeners: make(map[int]SessionListener),
	}
}

// Restore loads a durable credential. No user is resolved; callers
// confirm the credential through AuthGateway.FetchCurrentUser.
func (s *SessionStore) Restore(ctx context.Context) (bool, error) {
	if s.storage == nil {
		return false, nil
	}

	token, err := s.storage.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	if token == "" {
		return false, nil
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	return true, nil
}

func (s *SessionStore) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *SessionStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a confirmed user is present.
func (s *SessionStore) Authenticated() bool {
	return s.CurrentUser() != nil
}

// SetCredential replaces the token. A previously resolved user belongs
// to the old token and is dropped.
func (s *SessionStore) SetCredential(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearCredential(ctx)
	}

	s.mu.Lock()
	changed := s.user != nil
	s.token = token
	s.user = nil
	s.mu.Unlock()

	err := s.persist(ctx, token)
	if changed {
		s.notify(nil)
	}
	return err
}

// SetCurrentUser records the profile resolved from the current credential.
func (s *SessionStore) SetCurrentUser(user *User) error {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return ErrNoCredential
	}
	s.user = user
	s.mu.Unlock()

	s.notify(user)
	return nil
}

// Establish installs a credential and its user as one change.
func (s *SessionStore) Establish(ctx context.Context, token string, user *User) error {
	if token == "" {
		return ErrNoCredential
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	err := s.persist(ctx, token)
	s.notify(user)
	return err
}

// ClearCredential removes the token and the user together.
func (s *SessionStore) ClearCredential(ctx context.Context) error {
	s.mu.Lock()
	hadSession := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var err error
	if s.storage != nil {
		if err = s.storage.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear stored credential", zap.Error(err))
			err = fmt.Errorf("failed to clear credential: %w", err)
		}
	}

	if hadSession {
		s.notify(nil)
	}
	return err
}

// resolve sets the user only if token is still the current credential.
func (s *SessionStore) resolve(token string, user *User) bool {
	s.mu.Lock()
	if s.token != token || token == "" {
		s.mu.Unlock()
		return false
	}
	s.user = user
	s.mu.Unlock()

	s.notify(user)
	return true
}

// invalidate clears the session only if token is still the current credential.
func (s *SessionStore) invalidate(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	if s.token != token || token == "" {
		s.mu.Unlock()
		return false, nil
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var err error
	if s.storage != nil {
		if err = s.storage.Clear(ctx); err != nil {
			err = fmt.Errorf("failed to clear credential: %w", err)
		}
	}
	s.notify(nil)
	return true, err
}

// Subscribe registers fn for session changes. The returned function
// removes it; calling it more than once is harmless.
func (s *SessionStore) Subscribe(fn SessionListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) persist(ctx context.Context, token string) error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Save(ctx, token); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}

// notify runs listeners outside the lock so they may read the store.
func (s *SessionStore) notify(user *User) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	// registration order
	slices.Sort(ids)

	for _, id := range ids {
		s.mu.RLock()
		fn, ok := s.listeners[id]
		s.mu.RUnlock()
		if ok {
			fn(user)
		}
	}
}
