package cache

import (
	"context"
	"strings"
	"time"

	"github.com/johnjohndoe/netmap/pkg/observability"
)

// Observe wraps c so that hits, misses and writes reach the registered
// observability.CacheHooks. The key type reported is the key's prefix up to
// the first colon ("layout", "artifact").
func Observe(c Cache) Cache {
	return &observed{Cache: c}
}

type observed struct {
	Cache
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case hit:
		observability.Cache().OnCacheHit(ctx, keyType(key))
	default:
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, hit, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType skips a scope prefix such as "netmap:lab-a:" by taking the last
// segment before the hash.
func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "unknown"
	}
	head := key[:i]
	if j := strings.LastIndexByte(head, ':'); j >= 0 {
		head = head[j+1:]
	}
	return head
}
