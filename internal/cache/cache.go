package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched page bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey generates a cache key from a project page URL
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "page-" + hex.EncodeToString(hash[:16])
}
