package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/observability"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "sectorlock:session:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Defaults to DefaultKeyPrefix.
	Prefix string
}

// RedisStore stores sessions as JSON strings with a Redis TTL, so expired
// sessions disappear without Cleanup.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING,
// retrying with backoff while the server is unreachable.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client without checking it.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	start := time.Now()
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		observability.Store().OnStoreGet(ctx, "redis", false, time.Since(start), nil)
		return nil, nil
	}
	if err != nil {
		observability.Store().OnStoreGet(ctx, "redis", false, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "get session %s", id)
	}

	sess, err := decode(data)
	if err != nil {
		observability.Store().OnStoreGet(ctx, "redis", false, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode session %s", id)
	}
	observability.Store().OnStoreGet(ctx, "redis", true, time.Since(start), nil)

	// Redis expiry has second granularity; the stored deadline is exact.
	if sess.IsExpired() {
		return nil, nil
	}
	return sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	next := *sess
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode session %s", sess.ID)
	}

	key := s.key(sess.ID)
	start := time.Now()
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		have, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if have != sess.Version {
			return conflict(sess.ID, have, sess.Version)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		// The key changed between WATCH and EXEC.
		err = errors.Wrap(errors.ErrCodeConflict, err, "session %s was changed concurrently", sess.ID)
	}
	observability.Store().OnStoreSet(ctx, "redis", len(data), time.Since(start), err)
	switch {
	case err == nil:
		sess.Version = next.Version
		return nil
	case errors.Is(err, errors.ErrCodeConflict):
		return err
	default:
		return errors.Wrap(errors.ErrCodeStore, err, "save session %s", sess.ID)
	}
}

// storedVersion reads the version of the session at key inside a WATCH.
// Absent and expired sessions have version 0.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (uint64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cur, err := decode(data)
	if err != nil {
		return 0, err
	}
	if cur.IsExpired() {
		return 0, nil
	}
	return cur.Version, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete session %s", id)
	}
	return nil
}

// Cleanup is a no-op: Redis expires keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Close() error { return s.client.Close() }

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

var _ Store = (*RedisStore)(nil)
