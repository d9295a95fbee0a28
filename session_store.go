package accounts

import (
	"context"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by SessionStore.Get when no refresh entry
// exists for the account.
var ErrSessionNotFound = goerrors.New("refresh session not found", goerrors.CategoryNotFound).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

const defaultStoreTimeout = 3 * time.Second

// RedisSessionStore keeps one refresh token per account in Redis. The value
// is the exact token string last issued; a login overwrite implicitly
// revokes the previous one.
type RedisSessionStore struct {
	client    redis.UniversalClient
	keyPrefix string
	timeout   time.Duration
	logger    Logger
}

var _ SessionStore = (*RedisSessionStore)(nil)

// SessionStoreOption customizes RedisSessionStore construction.
type SessionStoreOption func(*RedisSessionStore)

// WithStoreTimeout bounds every Redis call. Timeouts surface as
// store-unavailable, which the gate treats as a denial.
func WithStoreTimeout(timeout time.Duration) SessionStoreOption {
	return func(s *RedisSessionStore) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithStoreKeyPrefix namespaces the session keys.
func WithStoreKeyPrefix(prefix string) SessionStoreOption {
	return func(s *RedisSessionStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger Logger) SessionStoreOption {
	return func(s *RedisSessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRedisSessionStore wraps an injected Redis client. The client's
// lifecycle (connect, close) belongs to the caller.
func NewRedisSessionStore(client redis.UniversalClient, opts ...SessionStoreOption) *RedisSessionStore {
	s := &RedisSessionStore{
		client:    client,
		keyPrefix: "accounts:refresh:",
		timeout:   defaultStoreTimeout,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *RedisSessionStore) key(accountID int64) string {
	return s.keyPrefix + strconv.FormatInt(accountID, 10)
}

// Put stores the refresh token for the account, replacing any prior entry.
func (s *RedisSessionStore) Put(ctx context.Context, accountID int64, token string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(accountID), token, ttl).Err(); err != nil {
		s.logger.Error("session store put failed", "account_id", accountID, "error", err)
		return StoreUnavailable(err)
	}

	return nil
}

// Get returns the refresh token last stored for the account.
func (s *RedisSessionStore) Get(ctx context.Context, accountID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.key(accountID)).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		s.logger.Error("session store get failed", "account_id", accountID, "error", err)
		return "", StoreUnavailable(err)
	}

	return token, nil
}

// Delete removes the account's refresh entry. Deleting a missing entry is
// not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, accountID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(accountID)).Err(); err != nil {
		s.logger.Error("session store delete failed", "account_id", accountID, "error", err)
		return StoreUnavailable(err)
	}

	return nil
}
