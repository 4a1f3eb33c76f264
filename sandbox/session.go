package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/agromart/pkg/crypto"
)

const DefaultSessionMaxAge = 24 * time.Hour

type SessionConfig struct {
	MaxAge time.Duration
}

// SessionManager issues and resolves opaque bearer tokens
type SessionManager struct {
	config  SessionConfig
	storage SessionStorage
	cache   SessionCache // optional
	now     func() time.Time
}

func NewSessionManager(config SessionConfig, storage SessionStorage, cache SessionCache) *SessionManager {
	if config.MaxAge <= 0 {
		config.MaxAge = DefaultSessionMaxAge
	}
	return &SessionManager{config: config, storage: storage, cache: cache, now: time.Now}
}

func (sm *SessionManager) MaxAge() time.Duration {
	return sm.config.MaxAge
}

func (sm *SessionManager) Create(ctx context.Context, userID int64, client Client) (*CreateSessionResult, error) {
	cred, err := crypto.NewCredential(crypto.DefaultTokenLength)
	if err != nil {
		return nil, err
	}

	now := sm.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: cred.Hash,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if sm.cache != nil {
		// a cache failure only costs a storage lookup later
		_ = sm.cache.Set(cred.Hash, session)
	}

	return &CreateSessionResult{Session: session, Token: cred.Token}, nil
}

func (sm *SessionManager) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			if ok, _ := crypto.MatchToken(token, session.TokenHash); !ok {
				// entry does not belong to this token; go to storage
				_ = sm.cache.Delete(tokenHash)
			} else if session.Expired(sm.now()) {
				_ = sm.cache.Delete(tokenHash)
				return nil, ErrSessionExpired
			} else {
				return session, nil
			}
		}
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if session.Expired(sm.now()) {
		return nil, ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// Sweep removes expired sessions from storage
func (sm *SessionManager) Sweep(ctx context.Context) (int, error) {
	return sm.storage.DeleteExpiredSessions(ctx, sm.now())
}
