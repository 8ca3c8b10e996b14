package cavage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport(t *testing.T) {
	verifyCfg := VerifyConfig{
		Resolver: StaticResolver(
			InboundClient{KeyID: "myServiceKeyId", Key: SecretKeyMaterial(testHMACSecret)},
		),
		RequiredHeaders: []string{"date"},
	}

	target := OutboundTarget{
		KeyID: "myServiceKeyId",
		Key:   SecretKeyMaterial(testHMACSecret),
	}

	t.Run("signs requests end to end", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := VerifyRequest(r, verifyCfg)
			require.NoError(t, err)

			assert.Equal(t, "myServiceKeyId", d.KeyID)
			assert.NotEmpty(t, r.Header.Get("Date"))

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := &http.Client{Transport: NewTransport(nil, TransportConfig{Target: target})}

		resp, err := client.Get(server.URL + "/my/resource")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("original request is not mutated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)

		transport := NewTransport(nil, TransportConfig{Target: target})

		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, req.Header.Get("Signature"))
		assert.Empty(t, req.Header.Get("Date"))
	})

	t.Run("caller date is preserved", func(t *testing.T) {
		const date = "Thu, 08 Jun 2014 18:32:30 GMT"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, date, r.Header.Get("Date"))

			_, err := VerifyRequest(r, verifyCfg)
			assert.NoError(t, err)
		}))
		defer server.Close()

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("Date", date)

		transport := NewTransport(nil, TransportConfig{Target: target})

		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("default headers apply when target has none", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := VerifyRequest(r, verifyCfg)
			require.NoError(t, err)

			assert.Equal(t, []string{ComponentRequestTarget, "date", "x-request-id"}, d.Headers)
		}))
		defer server.Close()

		transport := NewTransport(nil, TransportConfig{
			Target: target,
			DefaultHeaders: &HeadersConfig{
				Default: []string{ComponentRequestTarget, "date", "x-request-id"},
			},
		})

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-Id", "req-1")

		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("target selection wins over default headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := VerifyRequest(r, verifyCfg)
			require.NoError(t, err)

			assert.Equal(t, []string{ComponentRequestTarget, "date"}, d.Headers)
		}))
		defer server.Close()

		ownTarget := target
		ownTarget.SignedHeaders = &HeadersConfig{Default: []string{ComponentRequestTarget, "date"}}

		transport := NewTransport(nil, TransportConfig{
			Target:         ownTarget,
			DefaultHeaders: &HeadersConfig{Default: []string{ComponentRequestTarget}},
		})

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("Date", "Thu, 08 Jun 2014 18:32:30 GMT")

		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("body digest round trip", func(t *testing.T) {
		const payload = `{"name":"alpha"}`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			digestCfg := verifyCfg
			digestCfg.RequireDigest = true

			_, err := VerifyRequest(r, digestCfg)
			require.NoError(t, err)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, payload, string(body))
		}))
		defer server.Close()

		digestTarget := target
		digestTarget.DigestAlgorithm = DigestSHA256

		client := &http.Client{Transport: NewTransport(nil, TransportConfig{Target: digestTarget})}

		resp, err := client.Post(server.URL+"/items", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("custom base transport is used", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := VerifyRequest(r, verifyCfg)
			assert.NoError(t, err)
		}))
		defer server.Close()

		base := &http.Transport{MaxIdleConns: 1}
		defer base.CloseIdleConnections()

		client := &http.Client{Transport: NewTransport(base, TransportConfig{Target: target})}

		resp, err := client.Get(server.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("observe sees outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		var (
			observedAlg string
			observedErr error
		)

		transport := NewTransport(nil, TransportConfig{
			Target: target,
			Observe: func(algorithm string, err error) {
				observedAlg = algorithm
				observedErr = err
			},
		})

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)

		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "hmac-sha256", observedAlg)
		assert.NoError(t, observedErr)
	})

	t.Run("signing failure stops the request", func(t *testing.T) {
		var hit bool

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = true
		}))
		defer server.Close()

		var observedErr error

		transport := NewTransport(nil, TransportConfig{
			Target: OutboundTarget{KeyID: "k1", Algorithm: "rsa-md5", Key: SecretKeyMaterial(testHMACSecret)},
			Observe: func(_ string, err error) {
				observedErr = err
			},
		})

		req, err := http.NewRequest("GET", server.URL+"/", nil)
		require.NoError(t, err)

		_, err = transport.RoundTrip(req) //nolint:bodyclose // no response on error
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
		assert.ErrorIs(t, observedErr, ErrUnsupportedAlgorithm)
		assert.False(t, hit)
	})
}
