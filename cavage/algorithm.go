package cavage

// Algorithm identifies the signature algorithm named by the descriptor's
// algorithm field.
//
// The set is closed: dispatch inside Sign and Verify is a switch over these
// tokens, and anything else fails with ErrUnsupportedAlgorithm. ECDSA is
// deliberately absent; the scheme never settled on an ECDSA signature
// encoding, so two compliant peers could disagree on the bytes.
type Algorithm string

const (
	// AlgorithmRSASHA256 is RSASSA-PKCS1-v1_5 using SHA-256.
	AlgorithmRSASHA256 Algorithm = "rsa-sha256"

	// AlgorithmRSASHA512 is RSASSA-PKCS1-v1_5 using SHA-512.
	AlgorithmRSASHA512 Algorithm = "rsa-sha512"

	// AlgorithmHMACSHA256 is HMAC using SHA-256.
	AlgorithmHMACSHA256 Algorithm = "hmac-sha256"

	// AlgorithmHMACSHA512 is HMAC using SHA-512.
	AlgorithmHMACSHA512 Algorithm = "hmac-sha512"

	// AlgorithmEd25519 is Edwards-Curve Digital Signature Algorithm
	// using curve 25519.
	AlgorithmEd25519 Algorithm = "ed25519"
)

// String returns the algorithm token as it appears on the wire.
func (a Algorithm) String() string {
	return string(a)
}

// Supported reports whether a is one of the defined algorithm tokens.
// Tokens are matched verbatim; the defined tokens are lowercase.
func (a Algorithm) Supported() bool {
	switch a {
	case AlgorithmRSASHA256, AlgorithmRSASHA512,
		AlgorithmHMACSHA256, AlgorithmHMACSHA512,
		AlgorithmEd25519:
		return true
	default:
		return false
	}
}
