package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/agromart/core"
)

const defaultNamespace = "agromart:credential"

// CredentialStore keeps the bearer token in Redis under one key per
// profile, so several machines can share a login.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

var _ core.CredentialStore = (*CredentialStore)(nil)

// Options for NewCredentialStore
type Options struct {
	// Profile separates credentials of different users on one server
	Profile string

	// TTL of the stored key; zero keeps it until cleared
	TTL time.Duration
}

func NewCredentialStore(client redis.UniversalClient, opts Options) *CredentialStore {
	profile := opts.Profile
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{
		client: client,
		key:    defaultNamespace + ":" + profile,
		ttl:    opts.TTL,
	}
}

// Dial builds a single-node client, as the services in this repo do
func Dial(addr, password string) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return token, nil
}

func (s *CredentialStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
