package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tietotesti/internal/domain"

	"github.com/redis/go-redis/v9"
)

// IdentityStore keeps login sessions in Redis so every instance sees the same
// logins and logouts. Values are JSON-encoded identities with the session TTL.
type IdentityStore struct {
	client *redis.Client
}

func NewIdentityStore(client *redis.Client) *IdentityStore {
	return &IdentityStore{client: client}
}

func (s *IdentityStore) Set(ctx context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return domain.WrapDataAccess("store session", err)
	}
	return nil
}

func (s *IdentityStore) Get(ctx context.Context, sessionID string) (domain.Identity, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Identity{}, domain.WrapDataAccess("load session", err)
	}
	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return domain.Identity{}, fmt.Errorf("decode session: %w", err)
	}
	return identity, nil
}

func (s *IdentityStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return domain.WrapDataAccess("clear session", err)
	}
	return nil
}

func (s *IdentityStore) key(sessionID string) string {
	return "tietotesti:session:" + sessionID
}
