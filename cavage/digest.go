package cavage

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DigestHeader is the header carrying the body digest per RFC 3230.
const DigestHeader = "Digest"

// DigestAlgorithm identifies the hash algorithm for the Digest header
// per RFC 3230 and RFC 5843. Tokens are matched case-insensitively.
type DigestAlgorithm string

const (
	// DigestSHA256 uses SHA-256 for the body digest.
	DigestSHA256 DigestAlgorithm = "SHA-256"

	// DigestSHA512 uses SHA-512 for the body digest.
	DigestSHA512 DigestAlgorithm = "SHA-512"
)

// SetDigest reads the request body, computes the digest using the
// specified algorithm, sets the Digest header (e.g. "SHA-256=<base64>")
// and replaces the body so it can be read again. Covering "digest" in the
// signed headers then binds the body to the signature.
func SetDigest(r *http.Request, alg DigestAlgorithm) error {
	body, err := readAndRestoreBody(r)
	if err != nil {
		return err
	}

	digest, err := computeDigest(body, alg)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(digest)
	r.Header.Set(DigestHeader, fmt.Sprintf("%s=%s", alg, encoded))

	return nil
}

// VerifyDigest verifies the Digest header against the request body per
// RFC 3230. The header may carry multiple algorithm=value pairs; the
// first recognized algorithm is verified.
func VerifyDigest(r *http.Request) error {
	header := r.Header.Get(DigestHeader)
	if header == "" {
		return ErrDigestNotFound
	}

	body, err := readAndRestoreBody(r)
	if err != nil {
		return err
	}

	for _, entry := range strings.Split(header, ",") {
		alg, encodedDigest, ok := parseDigestEntry(strings.TrimSpace(entry))
		if !ok {
			continue
		}

		expected, err := computeDigest(body, alg)
		if err != nil {
			return err
		}

		actual, err := base64.StdEncoding.DecodeString(encodedDigest)
		if err != nil {
			return fmt.Errorf("%w: invalid base64 in digest value", ErrDigestMismatch)
		}

		if !bytes.Equal(expected, actual) {
			return ErrDigestMismatch
		}

		return nil
	}

	return ErrUnsupportedDigest
}

// parseDigestEntry parses a single "algorithm=base64" entry from the
// Digest header. The cut is on the first "=", so base64 padding survives.
func parseDigestEntry(entry string) (DigestAlgorithm, string, bool) {
	algStr, value, ok := strings.Cut(entry, "=")
	if !ok {
		return "", "", false
	}

	algStr = strings.TrimSpace(algStr)
	value = strings.TrimSpace(value)

	switch {
	case strings.EqualFold(algStr, string(DigestSHA256)):
		return DigestSHA256, value, true
	case strings.EqualFold(algStr, string(DigestSHA512)):
		return DigestSHA512, value, true
	default:
		return "", "", false
	}
}

// computeDigest computes the hash of data using the specified algorithm.
func computeDigest(data []byte, alg DigestAlgorithm) ([]byte, error) {
	switch {
	case strings.EqualFold(string(alg), string(DigestSHA256)):
		h := sha256.Sum256(data)
		return h[:], nil
	case strings.EqualFold(string(alg), string(DigestSHA512)):
		h := sha512.Sum512(data)
		return h[:], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDigest, alg)
	}
}

// readAndRestoreBody reads the entire request body and replaces it with a
// new reader so the body can be consumed again by downstream handlers.
func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}
