package cavage

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// KeyResolver returns the key material for the given key id and requested
// algorithm. It is called during request verification. The request is
// provided for context (e.g., to select keys based on the request host or
// path). Resolver errors are returned to the caller unwrapped, so callers
// can distinguish a failed lookup from a failed signature.
type KeyResolver func(r *http.Request, keyID string, alg Algorithm) (KeyMaterial, error)

// InboundClient describes a known caller whose requests can be verified.
// Definitions are built once and treated as read-only afterwards.
type InboundClient struct {
	// KeyID matches the keyId field of incoming descriptors. Required.
	KeyID string

	// Principal names the authenticated party. Defaults to KeyID.
	Principal string

	// Algorithm, when set, restricts which algorithm this client may use.
	Algorithm Algorithm

	// Key holds the verification key material.
	Key KeyMaterial
}

// StaticResolver returns a KeyResolver backed by a fixed set of client
// definitions. Unknown key ids fail with ErrUnknownKeyID; a client
// requesting an algorithm other than its registered one fails with
// ErrAlgorithmNotAllowed.
func StaticResolver(clients ...InboundClient) KeyResolver {
	byKeyID := make(map[string]InboundClient, len(clients))
	for _, client := range clients {
		byKeyID[client.KeyID] = client
	}

	return func(_ *http.Request, keyID string, alg Algorithm) (KeyMaterial, error) {
		client, ok := byKeyID[keyID]
		if !ok {
			return KeyMaterial{}, fmt.Errorf("%w: %s", ErrUnknownKeyID, keyID)
		}

		if client.Algorithm != "" && client.Algorithm != alg {
			return KeyMaterial{}, fmt.Errorf("%w: %s", ErrAlgorithmNotAllowed, alg)
		}

		return client.Key, nil
	}
}

// VerifyConfig configures request signature verification.
type VerifyConfig struct {
	// Resolver looks up key material for a key id. Required.
	Resolver KeyResolver

	// RequiredHeaders lists components that must be covered by the
	// signature. Verification fails with ErrMissingHeader when the
	// descriptor's headers miss any of them, before any crypto runs.
	RequiredHeaders []string

	// RequireDigest, when true, requires a Digest header and verifies it
	// against the request body before signature verification.
	RequireDigest bool
}

// Verify checks the descriptor against the canonical view using the
// supplied key material. The steps, in order: descriptor validation,
// required-header coverage, canonical reconstruction, signature check.
// Required headers are matched case-insensitively against the
// descriptor's headers. Any cryptographic failure, including an
// undecodable signature value, reports ErrSignatureMismatch.
func Verify(d Descriptor, view RequestView, key KeyMaterial, required []string) error {
	if err := d.Validate(); err != nil {
		return err
	}

	for _, name := range required {
		if !containsFold(d.Headers, name) {
			return fmt.Errorf("%w: %s", ErrMissingHeader, name)
		}
	}

	signature, err := base64.StdEncoding.DecodeString(d.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid base64", ErrSignatureMismatch)
	}

	return verifyBase(d.Algorithm, key, SigningString(view, d.Headers), signature)
}

// VerifyRequest extracts the signature descriptor from the request,
// resolves its key material and verifies it. On success the verified
// descriptor is returned. When a signature was present but failed, the
// parsed descriptor is returned alongside the error so callers can still
// report which key and algorithm were attempted.
func VerifyRequest(r *http.Request, cfg VerifyConfig) (Descriptor, error) {
	if cfg.Resolver == nil {
		return Descriptor{}, ErrNoResolver
	}

	d, ok := DescriptorFromRequest(r)
	if !ok {
		return Descriptor{}, ErrSignatureNotFound
	}

	if err := d.Validate(); err != nil {
		return d, err
	}

	if cfg.RequireDigest {
		if err := VerifyDigest(r); err != nil {
			return d, err
		}
	}

	key, err := cfg.Resolver(r, d.KeyID, d.Algorithm)
	if err != nil {
		return d, err
	}

	return d, Verify(d, NewRequestView(r), key, cfg.RequiredHeaders)
}
