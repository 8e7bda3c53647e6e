package mirror

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisFlags keeps flags in a Redis hash, one hash per client namespace
// (device, browser or tab id). The hash has no TTL, matching the
// session-scoped lifetime of browser flags; ClearAll removes it.
type RedisFlags struct {
	client redis.Cmdable
	key    string
}

// NewRedisFlags stores flags under "<prefix>:<namespace>". An empty prefix
// defaults to "ledgerchat:flags".
func NewRedisFlags(client redis.Cmdable, prefix, namespace string) *RedisFlags {
	if prefix == "" {
		prefix = "ledgerchat:flags"
	}
	return &RedisFlags{client: client, key: prefix + ":" + namespace}
}

// Key returns the Redis key of the hash.
func (f *RedisFlags) Key() string {
	return f.key
}

func (f *RedisFlags) WriteFlag(ctx context.Context, name, value string) error {
	return f.client.HSet(ctx, f.key, name, value).Err()
}

func (f *RedisFlags) ClearFlag(ctx context.Context, name string) error {
	return f.client.HDel(ctx, f.key, name).Err()
}

func (f *RedisFlags) ReadFlag(ctx context.Context, name string) (string, bool, error) {
	v, err := f.client.HGet(ctx, f.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// ClearAll removes every flag of the namespace.
func (f *RedisFlags) ClearAll(ctx context.Context) error {
	return f.client.Del(ctx, f.key).Err()
}
