package session

import "time"

// DriverRedis is the only driver that enables the per-user index.
const DriverRedis = "redis"

// Config holds session configuration
type Config struct {
	// Driver names the session backend. The index is active only for "redis".
	Driver string `env:"SESSION_DRIVER" envDefault:"redis"`

	// CachePrefix namespaces every key written to the store.
	CachePrefix string `env:"CACHE_PREFIX" envDefault:"storekit"`

	// Lifetime is the record TTL.
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"120m"`

	// UACacheSize bounds the memoised user-agent classifications.
	UACacheSize int `env:"SESSION_UA_CACHE_SIZE" envDefault:"512"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Driver:      DriverRedis,
		CachePrefix: "storekit",
		Lifetime:    120 * time.Minute,
		UACacheSize: 512,
	}
}

// UsesRedis reports whether the per-user index should be maintained.
func (c Config) UsesRedis() bool {
	return c.Driver == DriverRedis
}
