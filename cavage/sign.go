package cavage

import (
	"encoding/base64"
	"net/http"
	"slices"
)

// OutboundTarget describes how requests to one destination are signed.
// Definitions are built once and treated as read-only afterwards.
type OutboundTarget struct {
	// KeyID identifies the signing key to the verifier. Required.
	KeyID string

	// Algorithm selects the signature algorithm. When empty, it is
	// derived from Key via KeyMaterial.DefaultAlgorithm.
	Algorithm Algorithm

	// Key holds the signing key material. Required.
	Key KeyMaterial

	// SignedHeaders selects the components to sign. When nil, or when it
	// resolves to an empty list for a method, DefaultSignedHeaders
	// applies.
	SignedHeaders *HeadersConfig

	// Placement selects the header carrying the signature. Defaults to
	// PlacementSignature.
	Placement Placement

	// DigestAlgorithm, when set, causes SignRequest to compute and set a
	// Digest header before signing and to cover "digest" in the signed
	// components if it is not already selected.
	DigestAlgorithm DigestAlgorithm
}

// Sign builds the canonical signing string over components against the
// view and signs it, returning a descriptor whose Headers field is
// exactly the component list used (so a verifier can rebuild the same
// string). Components naming absent headers are skipped, never an error.
// An empty component list means DefaultSignedHeaders.
func Sign(view RequestView, components []string, keyID string, alg Algorithm, key KeyMaterial) (Descriptor, error) {
	if keyID == "" {
		return Descriptor{}, ErrNoKeyID
	}

	if len(components) == 0 {
		components = DefaultSignedHeaders()
	}

	signature, err := signBase(alg, key, SigningString(view, components))
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		KeyID:     keyID,
		Algorithm: alg,
		Headers:   slices.Clone(components),
		Signature: base64.StdEncoding.EncodeToString(signature),
	}, nil
}

// SignRequest signs the request in place according to the target
// definition and attaches the resulting descriptor in the target's
// placement. The descriptor is also returned.
func SignRequest(r *http.Request, target OutboundTarget) (Descriptor, error) {
	if target.KeyID == "" {
		return Descriptor{}, ErrNoKeyID
	}

	alg := target.Algorithm
	if alg == "" {
		var err error

		alg, err = target.Key.DefaultAlgorithm()
		if err != nil {
			return Descriptor{}, err
		}
	}

	components := DefaultSignedHeaders()
	if target.SignedHeaders != nil {
		if selected := target.SignedHeaders.ForMethod(r.Method); len(selected) > 0 {
			components = selected
		}
	}

	if target.DigestAlgorithm != "" {
		if err := SetDigest(r, target.DigestAlgorithm); err != nil {
			return Descriptor{}, err
		}

		if !containsFold(components, "digest") {
			components = append(slices.Clone(components), "digest")
		}
	}

	d, err := Sign(NewRequestView(r), components, target.KeyID, alg, target.Key)
	if err != nil {
		return Descriptor{}, err
	}

	d.Attach(r, target.Placement)

	return d, nil
}
