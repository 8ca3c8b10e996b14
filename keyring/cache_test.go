package keyring

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/httpsign/cavage"
)

var errKeyStoreDown = errors.New("key store down")

// countingResolver resolves "known" successfully, "missing" with a
// deterministic unknown-key miss, and anything else with a transient
// failure, counting every call.
func countingResolver() (cavage.KeyResolver, *atomic.Int32) {
	var calls atomic.Int32

	resolver := func(_ *http.Request, keyID string, _ cavage.Algorithm) (cavage.KeyMaterial, error) {
		calls.Add(1)

		switch keyID {
		case "known":
			return cavage.SecretKeyMaterial([]byte("shared")), nil
		case "missing":
			return cavage.KeyMaterial{}, fmt.Errorf("%w: %s", cavage.ErrUnknownKeyID, keyID)
		default:
			return cavage.KeyMaterial{}, errKeyStoreDown
		}
	}

	return resolver, &calls
}

func TestCachedResolver(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.org/", nil)

	t.Run("caches successful lookups", func(t *testing.T) {
		next, calls := countingResolver()
		resolver := NewCachedResolver(next, time.Minute, time.Minute).Resolver()

		first, err := resolver(req, "known", cavage.AlgorithmHMACSHA256)
		require.NoError(t, err)

		second, err := resolver(req, "known", cavage.AlgorithmHMACSHA256)
		require.NoError(t, err)

		assert.Equal(t, first.Secret, second.Secret)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("algorithms cached separately", func(t *testing.T) {
		next, calls := countingResolver()
		resolver := NewCachedResolver(next, time.Minute, time.Minute).Resolver()

		_, err := resolver(req, "known", cavage.AlgorithmHMACSHA256)
		require.NoError(t, err)

		_, err = resolver(req, "known", cavage.AlgorithmHMACSHA512)
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("unknown key id cached negatively", func(t *testing.T) {
		next, calls := countingResolver()
		resolver := NewCachedResolver(next, time.Minute, time.Minute).Resolver()

		_, err := resolver(req, "missing", cavage.AlgorithmHMACSHA256)
		require.ErrorIs(t, err, cavage.ErrUnknownKeyID)

		_, err = resolver(req, "missing", cavage.AlgorithmHMACSHA256)
		require.ErrorIs(t, err, cavage.ErrUnknownKeyID)

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("transient failures not cached", func(t *testing.T) {
		next, calls := countingResolver()
		resolver := NewCachedResolver(next, time.Minute, time.Minute).Resolver()

		_, err := resolver(req, "flaky", cavage.AlgorithmHMACSHA256)
		require.ErrorIs(t, err, errKeyStoreDown)

		_, err = resolver(req, "flaky", cavage.AlgorithmHMACSHA256)
		require.ErrorIs(t, err, errKeyStoreDown)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("zero negative ttl disables negative caching", func(t *testing.T) {
		next, calls := countingResolver()
		resolver := NewCachedResolver(next, time.Minute, 0).Resolver()

		for i := 0; i < 2; i++ {
			_, err := resolver(req, "missing", cavage.AlgorithmHMACSHA256)
			require.ErrorIs(t, err, cavage.ErrUnknownKeyID)
		}

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("invalidate forces a fresh lookup", func(t *testing.T) {
		next, calls := countingResolver()
		cached := NewCachedResolver(next, time.Minute, time.Minute)
		resolver := cached.Resolver()

		_, err := resolver(req, "known", cavage.AlgorithmHMACSHA256)
		require.NoError(t, err)

		cached.Invalidate("known")

		_, err = resolver(req, "known", cavage.AlgorithmHMACSHA256)
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("concurrent misses collapse", func(t *testing.T) {
		var calls atomic.Int32

		slow := func(_ *http.Request, _ string, _ cavage.Algorithm) (cavage.KeyMaterial, error) {
			calls.Add(1)
			time.Sleep(50 * time.Millisecond)

			return cavage.SecretKeyMaterial([]byte("shared")), nil
		}

		resolver := NewCachedResolver(slow, time.Minute, time.Minute).Resolver()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := resolver(req, "known", cavage.AlgorithmHMACSHA256)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})
}
