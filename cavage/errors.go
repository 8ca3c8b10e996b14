package cavage

import "errors"

// Descriptor errors.
var (
	// ErrInvalidDescriptor is returned by Validate when a mandatory
	// descriptor field is missing.
	ErrInvalidDescriptor = errors.New("cavage: invalid signature descriptor")

	// ErrSignatureNotFound is returned when neither the Signature header
	// nor an Authorization header with the Signature scheme is present.
	ErrSignatureNotFound = errors.New("cavage: signature not found")
)

// Signing errors.
var (
	// ErrNoKeyID is returned when signing is attempted without a key id.
	ErrNoKeyID = errors.New("cavage: key id must not be empty")
)

// Verification errors.
var (
	// ErrNoResolver is returned when VerifyConfig has no KeyResolver
	// configured.
	ErrNoResolver = errors.New("cavage: key resolver must not be nil")

	// ErrMissingHeader is returned when a header required by the verifier
	// is not covered by the signature.
	ErrMissingHeader = errors.New("cavage: required header not covered by signature")

	// ErrUnsupportedAlgorithm is returned when the descriptor requests an
	// algorithm outside the supported set.
	ErrUnsupportedAlgorithm = errors.New("cavage: unsupported signature algorithm")

	// ErrSignatureMismatch is returned when signature verification fails.
	ErrSignatureMismatch = errors.New("cavage: signature verification failed")

	// ErrAlgorithmNotAllowed is returned by the static resolver when a
	// client requests an algorithm other than the one registered for its
	// key.
	ErrAlgorithmNotAllowed = errors.New("cavage: algorithm not allowed for this key")

	// ErrUnknownKeyID is returned by the static resolver when no client is
	// registered for the requested key id.
	ErrUnknownKeyID = errors.New("cavage: unknown key id")
)

// Key material errors.
var (
	// ErrInvalidKey is returned when key material is missing or of the
	// wrong type for the requested algorithm.
	ErrInvalidKey = errors.New("cavage: invalid key material")
)

// Digest errors.
var (
	// ErrDigestMismatch is returned when Digest verification fails.
	ErrDigestMismatch = errors.New("cavage: digest mismatch")

	// ErrDigestNotFound is returned when a Digest header is required but
	// not present.
	ErrDigestNotFound = errors.New("cavage: digest header not found")

	// ErrUnsupportedDigest is returned when the digest algorithm is not
	// supported.
	ErrUnsupportedDigest = errors.New("cavage: unsupported digest algorithm")
)
