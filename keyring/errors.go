package keyring

import "errors"

var (
	// ErrNoPEMData indicates the input contained no usable PEM block.
	ErrNoPEMData = errors.New("keyring: no pem data found")

	// ErrUnsupportedKeyType indicates a PEM block parsed to a key type
	// outside the supported set (RSA and Ed25519).
	ErrUnsupportedKeyType = errors.New("keyring: unsupported key type")
)

var (
	// ErrInvalidSecretRef indicates a secret reference that cannot be
	// resolved (unknown scheme, missing env var, undecodable payload).
	ErrInvalidSecretRef = errors.New("keyring: invalid secret reference")

	// ErrNoMasterKey indicates a sealed secret was encountered but the
	// master key environment variable is unset or malformed.
	ErrNoMasterKey = errors.New("keyring: master key not available")

	// ErrSealedValueCorrupt indicates a sealed secret failed to open,
	// either because it is truncated or because the master key differs
	// from the sealing key.
	ErrSealedValueCorrupt = errors.New("keyring: sealed value corrupt")
)

var (
	// ErrInvalidConfig indicates the ring configuration failed validation.
	ErrInvalidConfig = errors.New("keyring: invalid configuration")

	// ErrUnknownTarget indicates a lookup for an outbound target name that
	// is not configured.
	ErrUnknownTarget = errors.New("keyring: unknown target")
)
