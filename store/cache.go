package store

//go:generate go tool mockgen -source=cache.go -destination=mock_cache_test.go -package=store

import (
	"context"
	"time"
)

// Cache is the read-through boundary in front of queries that are
// worth shielding from SQLite: friendly-name lookups (hit on every
// inbound event) and the latest-numbers listing (a JOIN across every
// message). A nil Cache disables caching entirely; Store falls
// through to the database on every call.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
