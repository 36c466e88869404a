package cache

import "time"

// Cache stores opaque values with a time to live. A zero ttl means the
// entry never expires.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}
