package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// DefaultRedisPrefix namespaces every key the redis store writes.
const DefaultRedisPrefix = "location2stix:"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0")
	URL string

	// Prefix is prepended to every key. Reset deletes everything under it.
	Prefix string

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration
}

// RedisStore keeps objects as <prefix>obj:<id> string keys and records
// insertion order in the <prefix>index list.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379/0"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse Redis URL")
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to Redis")
	}

	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

// Put writes obj and appends its identifier to the index on first write.
func (s *RedisStore) Put(ctx context.Context, obj stix.Object) error {
	raw, err := stix.ToRaw(obj)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, s.objKey(raw.ID), []byte(raw.Raw), 0).Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", raw.ID)
	}
	if !created {
		if err := s.client.Set(ctx, s.objKey(raw.ID), []byte(raw.Raw), 0).Err(); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "write %s", raw.ID)
		}
		return nil
	}
	if err := s.client.RPush(ctx, s.indexKey(), raw.ID).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "index %s", raw.ID)
	}
	return nil
}

// Get reads the object stored under id.
func (s *RedisStore) Get(ctx context.Context, id string) (*stix.RawObject, bool, error) {
	data, err := s.client.Get(ctx, s.objKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "read %s", id)
	}
	obj, err := stix.ParseObject(data)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "corrupt entry %s", id)
	}
	return obj, true, nil
}

// Query reads every indexed object in insertion order with a single MGET.
func (s *RedisStore) Query(ctx context.Context) ([]*stix.RawObject, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read index")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.objKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read objects")
	}

	out := make([]*stix.RawObject, 0, len(ids))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeStore, "indexed object %s is missing", ids[i])
		}
		obj, err := stix.ParseObject([]byte(str))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "corrupt entry %s", ids[i])
		}
		out = append(out, obj)
	}
	return out, nil
}

// Reset deletes every key under the store prefix.
func (s *RedisStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "reset")
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "scan")
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "reset")
		}
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) objKey(id string) string { return s.prefix + "obj:" + id }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
