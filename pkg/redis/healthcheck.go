package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Healthcheck pings the server and checks that key, the hash holding the
// durable flags, is either missing or a hash. Any other type means the
// prefix collides with foreign data and flag writes would fail.
func Healthcheck(client redis.UniversalClient, key string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		kind, err := client.Type(ctx, key).Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		switch kind {
		case "hash", "none":
			return nil
		default:
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %s is a %s", ErrFlagsKeyType, key, kind))
		}
	}
}
