package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "admin:session:"

var ErrInvalidSession = errors.New("invalid or expired session")

// Store keeps admin sessions in Redis so they survive restarts and are shared
// across instances. Expiry is fixed at creation.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create issues a new 256-bit token bound to adminID.
func (s *Store) Create(ctx context.Context, adminID int64) (string, time.Time, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(bytes)

	if err := s.rdb.Set(ctx, keyPrefix+token, adminID, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}

	return token, time.Now().Add(s.ttl), nil
}

// Get returns the admin id bound to token.
func (s *Store) Get(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}

	val, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return id, nil
}

// Delete ends a session. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
