package keyring

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const minGeneratedRSABits = 2048

// GeneratedKey holds a freshly generated key pair in PEM form, with a
// uuid-derived default key id.
type GeneratedKey struct {
	// KeyID is a generated identifier ("rsa-<uuid>", "ed25519-<uuid>").
	KeyID string

	// PrivateKey is the PKCS#8 PEM encoding of the private key.
	PrivateKey []byte

	// PublicKey is the PKIX PEM encoding of the public key.
	PublicKey []byte
}

// GenerateRSA generates an RSA key pair of the given size. Keys below
// 2048 bits are refused.
func GenerateRSA(bits int) (*GeneratedKey, error) {
	if bits < minGeneratedRSABits {
		return nil, fmt.Errorf("keyring: rsa key must be at least %d bits", minGeneratedRSABits)
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("keyring: generate rsa key: %w", err)
	}

	return encodeGenerated("rsa", priv, &priv.PublicKey)
}

// GenerateEd25519 generates an Ed25519 key pair.
func GenerateEd25519() (*GeneratedKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keyring: generate ed25519 key: %w", err)
	}

	return encodeGenerated("ed25519", priv, pub)
}

// GenerateSecret returns n random bytes, base64-encoded for use as an
// HMAC secret. Fewer than 32 bytes are refused; hashes never benefit
// from keys longer than their block size, so 32 to 64 is the useful
// range.
func GenerateSecret(n int) (string, error) {
	if n < 32 {
		return "", fmt.Errorf("keyring: secret must be at least 32 bytes")
	}

	secret := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return "", fmt.Errorf("keyring: generate secret: %w", err)
	}

	return base64.StdEncoding.EncodeToString(secret), nil
}

// GenerateMasterKey returns a fresh 32-byte master key, base64-encoded
// for the HTTPSIGN_MASTER_KEY environment variable.
func GenerateMasterKey() (string, error) {
	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("keyring: generate master key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}

func encodeGenerated(kind string, priv, pub any) (*GeneratedKey, error) {
	privPEM, err := EncodePrivateKey(priv)
	if err != nil {
		return nil, err
	}

	pubPEM, err := EncodePublicKey(pub)
	if err != nil {
		return nil, err
	}

	return &GeneratedKey{
		KeyID:      kind + "-" + uuid.New().String(),
		PrivateKey: privPEM,
		PublicKey:  pubPEM,
	}, nil
}
