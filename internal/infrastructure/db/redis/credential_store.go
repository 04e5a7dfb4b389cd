package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

// CredentialStore keeps the session keys in Redis.
// Key format: portal:<profile>:<accessToken|refreshToken|user>
type CredentialStore struct {
	client  *redis.Client
	profile string
}

var (
	_ ports.CredentialStore = (*CredentialStore)(nil)
	_ ports.Pinger          = (*CredentialStore)(nil)
)

// NewCredentialStore creates a CredentialStore wrapping the given Redis client.
func NewCredentialStore(client *redis.Client, profile string) *CredentialStore {
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{client: client, profile: profile}
}

// Save writes the three keys in a single MULTI/EXEC transaction.
func (s *CredentialStore) Save(ctx context.Context, pair domain.CredentialPair, identity domain.Identity) error {
	values, err := domain.EncodeStoredSession(pair, identity)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range domain.StorageKeys {
			pipe.Set(ctx, s.key(k), values[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (*domain.StoredSession, error) {
	keys := s.keys()
	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	values := make(map[string]string, len(raw))
	for i, v := range raw {
		if str, ok := v.(string); ok {
			values[domain.StorageKeys[i]] = str
		}
	}
	stored, ok := domain.DecodeStoredSession(values)
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keys()...).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CredentialStore) key(name string) string {
	return fmt.Sprintf("portal:%s:%s", s.profile, name)
}

func (s *CredentialStore) keys() []string {
	keys := make([]string, len(domain.StorageKeys))
	for i, k := range domain.StorageKeys {
		keys[i] = s.key(k)
	}
	return keys
}
