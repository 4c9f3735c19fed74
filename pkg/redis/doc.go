// Package redis connects to Redis and provides a vault.Store backed by it.
//
// Connect retries the initial ping according to Config, which is usually
// populated from REDIS_* environment variables with LoadConfig:
//
//	cfg, err := redis.LoadConfig()
//	if err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Store persists sealed vault fields. Both fields of a token are written in a
// single MULTI/EXEC transaction, optionally with a TTL:
//
//	store, err := redis.NewStoreFromConfig(client, cfg)
//	if err != nil {
//		return err
//	}
//	v, err := vault.New(keys, store)
//
// Healthcheck returns a ping function for readiness checks.
//
// Errors wrap the underlying go-redis error with errors.Join, so callers can
// match both the sentinel and the driver error.
package redis
