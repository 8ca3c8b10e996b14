package cavage

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	t.Run("parsed hmac header verifies", func(t *testing.T) {
		raw := `keyId="myServiceKeyId",algorithm="hmac-sha256",` +
			`headers="date host (request-target) authorization",` +
			`signature="` + referenceHMACSHA256Signature + `"`

		d := ParseSignatureHeader(raw)

		err := Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), []string{"date"})
		assert.NoError(t, err)
	})

	t.Run("parsed rsa header verifies with public key", func(t *testing.T) {
		raw := `keyId="rsa-key-12345",algorithm="rsa-sha256",` +
			`headers="date host (request-target) authorization",` +
			`signature="` + referenceRSASHA256Signature + `"`

		d := ParseSignatureHeader(raw)

		err := Verify(d, referenceView(), PublicKeyMaterial(testRSAPublicKey(t)), []string{"date"})
		assert.NoError(t, err)
	})

	t.Run("ed25519 round trip", func(t *testing.T) {
		d, err := Sign(referenceView(), referenceComponents, "ed-key-1",
			AlgorithmEd25519, PrivateKeyMaterial(testEd25519PrivateKey(t)))
		require.NoError(t, err)

		err = Verify(d, referenceView(), PublicKeyMaterial(testEd25519PublicKey(t)), nil)
		assert.NoError(t, err)
	})

	t.Run("tampered request fails", func(t *testing.T) {
		d, err := Sign(referenceView(), referenceComponents, "myServiceKeyId",
			AlgorithmHMACSHA256, SecretKeyMaterial(testHMACSecret))
		require.NoError(t, err)

		view := referenceView()
		view.Header.Set("Date", "Thu, 08 Jun 2014 18:32:31 GMT")

		err = Verify(d, view, SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		d, err := Sign(referenceView(), referenceComponents, "rsa-key-12345",
			AlgorithmRSASHA256, PrivateKeyMaterial(testRSAPrivateKey(t)))
		require.NoError(t, err)

		d.Signature = referenceRSASHA512Signature

		err = Verify(d, referenceView(), PublicKeyMaterial(testRSAPublicKey(t)), nil)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		d, err := Sign(referenceView(), referenceComponents, "myServiceKeyId",
			AlgorithmHMACSHA256, SecretKeyMaterial(testHMACSecret))
		require.NoError(t, err)

		err = Verify(d, referenceView(), SecretKeyMaterial([]byte("NotMyPassword")), nil)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("required header not covered", func(t *testing.T) {
		d, err := Sign(referenceView(), []string{ComponentRequestTarget, "date"}, "myServiceKeyId",
			AlgorithmHMACSHA256, SecretKeyMaterial(testHMACSecret))
		require.NoError(t, err)

		err = Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), []string{"digest"})
		require.ErrorIs(t, err, ErrMissingHeader)
		assert.Contains(t, err.Error(), "digest")
	})

	t.Run("required header matched case-insensitively", func(t *testing.T) {
		d, err := Sign(referenceView(), referenceComponents, "myServiceKeyId",
			AlgorithmHMACSHA256, SecretKeyMaterial(testHMACSecret))
		require.NoError(t, err)

		err = Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), []string{"Date"})
		assert.NoError(t, err)
	})

	t.Run("signature not valid base64", func(t *testing.T) {
		d := Descriptor{
			KeyID:     "myServiceKeyId",
			Algorithm: AlgorithmHMACSHA256,
			Headers:   DefaultSignedHeaders(),
			Signature: "%%%not-base64%%%",
		}

		err := Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		d := Descriptor{
			KeyID:     "myServiceKeyId",
			Algorithm: "ecdsa-sha256",
			Headers:   DefaultSignedHeaders(),
			Signature: referenceHMACSHA256Signature,
		}

		err := Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("wrong key material type", func(t *testing.T) {
		raw := `keyId="rsa-key-12345",algorithm="rsa-sha256",` +
			`headers="date",signature="` + referenceRSASHA256Signature + `"`

		d := ParseSignatureHeader(raw)

		err := Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("invalid descriptor rejected before crypto", func(t *testing.T) {
		d := ParseSignatureHeader(`algorithm="hmac-sha256",signature="abcd"`)

		err := Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
	})

	t.Run("absent component skipped on both sides", func(t *testing.T) {
		components := []string{ComponentRequestTarget, "date", "x-nonce"}

		d, err := Sign(referenceView(), components, "myServiceKeyId",
			AlgorithmHMACSHA256, SecretKeyMaterial(testHMACSecret))
		require.NoError(t, err)

		// x-nonce was absent at signing time; it is still absent at
		// verification time, so both sides build the same string.
		err = Verify(d, referenceView(), SecretKeyMaterial(testHMACSecret), nil)
		require.NoError(t, err)

		// A header that appears only on the verifier's side changes the
		// reconstruction and the signature no longer matches.
		view := referenceView()
		view.Header.Set("X-Nonce", "injected")

		err = Verify(d, view, SecretKeyMaterial(testHMACSecret), nil)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestStaticResolver(t *testing.T) {
	resolver := StaticResolver(
		InboundClient{KeyID: "myServiceKeyId", Principal: "theService", Key: SecretKeyMaterial(testHMACSecret)},
		InboundClient{KeyID: "rsa-key-12345", Algorithm: AlgorithmRSASHA256, Key: KeyMaterial{PublicKey: testRSAPublicKey(t)}},
	)

	req := httptest.NewRequest("GET", "http://example.org/", nil)

	t.Run("known key id", func(t *testing.T) {
		key, err := resolver(req, "myServiceKeyId", AlgorithmHMACSHA256)
		require.NoError(t, err)
		assert.Equal(t, testHMACSecret, key.Secret)
	})

	t.Run("unknown key id", func(t *testing.T) {
		_, err := resolver(req, "who-is-this", AlgorithmHMACSHA256)

		require.ErrorIs(t, err, ErrUnknownKeyID)
		assert.Contains(t, err.Error(), "who-is-this")
	})

	t.Run("algorithm restriction enforced", func(t *testing.T) {
		_, err := resolver(req, "rsa-key-12345", AlgorithmRSASHA512)
		assert.ErrorIs(t, err, ErrAlgorithmNotAllowed)
	})

	t.Run("matching algorithm allowed", func(t *testing.T) {
		_, err := resolver(req, "rsa-key-12345", AlgorithmRSASHA256)
		assert.NoError(t, err)
	})

	t.Run("unrestricted client accepts any algorithm", func(t *testing.T) {
		_, err := resolver(req, "myServiceKeyId", AlgorithmHMACSHA512)
		assert.NoError(t, err)
	})
}

func TestVerifyRequest(t *testing.T) {
	cfg := VerifyConfig{
		Resolver: StaticResolver(
			InboundClient{KeyID: "myServiceKeyId", Key: SecretKeyMaterial(testHMACSecret)},
		),
		RequiredHeaders: []string{"date"},
	}

	signedRequest := func(t *testing.T, placement Placement) *http.Request {
		t.Helper()

		req := httptest.NewRequest("GET", "http://example.org/my/resource", nil)
		req.Header.Set("Date", "Thu, 08 Jun 2014 18:32:30 GMT")

		_, err := SignRequest(req, OutboundTarget{
			KeyID:     "myServiceKeyId",
			Key:       SecretKeyMaterial(testHMACSecret),
			Placement: placement,
		})
		require.NoError(t, err)

		return req
	}

	t.Run("signed request verifies", func(t *testing.T) {
		d, err := VerifyRequest(signedRequest(t, PlacementSignature), cfg)
		require.NoError(t, err)

		assert.Equal(t, "myServiceKeyId", d.KeyID)
		assert.Equal(t, AlgorithmHMACSHA256, d.Algorithm)
	})

	t.Run("authorization placement verifies", func(t *testing.T) {
		_, err := VerifyRequest(signedRequest(t, PlacementAuthorization), cfg)
		assert.NoError(t, err)
	})

	t.Run("no signature", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.org/", nil)

		_, err := VerifyRequest(req, cfg)
		assert.ErrorIs(t, err, ErrSignatureNotFound)
	})

	t.Run("nil resolver", func(t *testing.T) {
		_, err := VerifyRequest(signedRequest(t, PlacementSignature), VerifyConfig{})
		assert.ErrorIs(t, err, ErrNoResolver)
	})

	t.Run("resolver error passes through", func(t *testing.T) {
		errKeyService := errors.New("key service unavailable")

		d, err := VerifyRequest(signedRequest(t, PlacementSignature), VerifyConfig{
			Resolver: func(_ *http.Request, _ string, _ Algorithm) (KeyMaterial, error) {
				return KeyMaterial{}, errKeyService
			},
		})

		assert.ErrorIs(t, err, errKeyService)
		assert.Equal(t, "myServiceKeyId", d.KeyID)
	})

	t.Run("descriptor returned alongside failure", func(t *testing.T) {
		req := signedRequest(t, PlacementSignature)
		req.Header.Set("Date", "Thu, 08 Jun 2014 18:32:31 GMT")

		d, err := VerifyRequest(req, cfg)

		assert.ErrorIs(t, err, ErrSignatureMismatch)
		assert.Equal(t, "myServiceKeyId", d.KeyID)
		assert.Equal(t, AlgorithmHMACSHA256, d.Algorithm)
	})

	t.Run("required digest verified", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://example.org/items", strings.NewReader(`{"a":1}`))
		req.Header.Set("Date", "Thu, 08 Jun 2014 18:32:30 GMT")

		_, err := SignRequest(req, OutboundTarget{
			KeyID:           "myServiceKeyId",
			Key:             SecretKeyMaterial(testHMACSecret),
			DigestAlgorithm: DigestSHA256,
		})
		require.NoError(t, err)

		digestCfg := cfg
		digestCfg.RequireDigest = true

		_, err = VerifyRequest(req, digestCfg)
		assert.NoError(t, err)
	})

	t.Run("required digest missing", func(t *testing.T) {
		digestCfg := cfg
		digestCfg.RequireDigest = true

		_, err := VerifyRequest(signedRequest(t, PlacementSignature), digestCfg)
		assert.ErrorIs(t, err, ErrDigestNotFound)
	})
}
