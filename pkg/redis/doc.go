// Package redis connects to the Redis server that can hold durable session
// flags (see mirror.RedisFlags).
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil { ... }
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		...
//		flags := mirror.NewRedisFlags(client, cfg.KeyPrefix, deviceID)
//	}
//
// Connect retries the initial ping, so a service started together with Redis
// does not fail on the first refused connection.
package redis
