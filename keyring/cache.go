package keyring

import (
	"errors"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/vitalvas/httpsign/cavage"
)

// CachedResolver decorates a cavage.KeyResolver with a TTL cache.
// Concurrent lookups for the same key collapse into a single call to the
// wrapped resolver, so a burst of requests from one caller hits a remote
// key store once. Deterministic misses (unknown key id, algorithm not
// allowed) are cached negatively; transient resolver failures are not.
type CachedResolver struct {
	next        cavage.KeyResolver
	cache       *gocache.Cache
	group       singleflight.Group
	negativeTTL time.Duration
}

type resolverEntry struct {
	key cavage.KeyMaterial
	err error
}

// NewCachedResolver wraps next with a cache holding successful lookups
// for ttl and deterministic misses for negativeTTL. A zero negativeTTL
// disables negative caching.
func NewCachedResolver(next cavage.KeyResolver, ttl, negativeTTL time.Duration) *CachedResolver {
	return &CachedResolver{
		next:        next,
		cache:       gocache.New(ttl, time.Minute),
		negativeTTL: negativeTTL,
	}
}

// Resolver returns the cached lookup as a cavage.KeyResolver.
func (c *CachedResolver) Resolver() cavage.KeyResolver {
	return c.resolve
}

// Invalidate drops all cached entries for a key id, across algorithms.
func (c *CachedResolver) Invalidate(keyID string) {
	for _, alg := range []cavage.Algorithm{
		cavage.AlgorithmRSASHA256,
		cavage.AlgorithmRSASHA512,
		cavage.AlgorithmHMACSHA256,
		cavage.AlgorithmHMACSHA512,
		cavage.AlgorithmEd25519,
	} {
		c.cache.Delete(cacheKey(keyID, alg))
	}
}

func (c *CachedResolver) resolve(r *http.Request, keyID string, alg cavage.Algorithm) (cavage.KeyMaterial, error) {
	key := cacheKey(keyID, alg)

	if cached, ok := c.cache.Get(key); ok {
		entry := cached.(resolverEntry)

		return entry.key, entry.err
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		material, err := c.next(r, keyID, alg)
		if err != nil {
			if c.negativeTTL > 0 && deterministicMiss(err) {
				c.cache.Set(key, resolverEntry{err: err}, c.negativeTTL)
			}

			return nil, err
		}

		c.cache.Set(key, resolverEntry{key: material}, gocache.DefaultExpiration)

		return material, nil
	})
	if err != nil {
		return cavage.KeyMaterial{}, err
	}

	return result.(cavage.KeyMaterial), nil
}

// cacheKey is NUL-separated so arbitrary key ids stay unambiguous.
func cacheKey(keyID string, alg cavage.Algorithm) string {
	return keyID + "\x00" + string(alg)
}

func deterministicMiss(err error) bool {
	return errors.Is(err, cavage.ErrUnknownKeyID) || errors.Is(err, cavage.ErrAlgorithmNotAllowed)
}
