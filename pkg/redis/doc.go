// Package redis connects to Redis with retries and adapts a go-redis client
// to the small byte-oriented KV interface used by the session index.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    panic(err)
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer client.Close()
//
//	kv := redis.NewKV(client)
//	_ = kv.SAdd(ctx, "storekit:sessions:42", "sessions:42:...")
//
// Sentinel errors wrap go-redis failures with errors.Join so callers can use
// errors.Is.
package redis
