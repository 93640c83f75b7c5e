// Package cache provides an optional redis-backed response cache for
// Graph API GET requests.
//
// The Graph API offers no Expires/ETag contract, so freshness is
// config-driven: the client passes a TTL per Set and redis evicts the
// entry when it elapses. Keys are deterministic and scope entries to a
// single credential via a digest, never the raw token.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Path:       "me/feed",
//		Params:     map[string]string{"limit": "25"},
//		Credential: accessToken,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the Graph API, then:
//		manager.Set(ctx, key, &cache.Entry{Body: body, CachedAt: time.Now()}, 60*time.Second)
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - graph_cache_hits_total{layer="redis"} - Cache hits
//   - graph_cache_misses_total - Cache misses
//   - graph_cache_size_bytes{layer="redis"} - Bytes written
//   - graph_cache_errors_total{operation} - Cache operation errors
package cache
