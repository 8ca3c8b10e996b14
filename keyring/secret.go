package keyring

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// MasterKeyEnv is the environment variable holding the base64-encoded
// 32-byte master key that opens secretbox: references. Generate one with:
//
//	openssl rand -base64 32
const MasterKeyEnv = "HTTPSIGN_MASTER_KEY"

const (
	secretboxNonceSize = 24
	masterKeySize      = 32
)

// ResolveSecret materializes a secret reference into raw bytes so that
// configuration files never embed secrets directly. Supported forms:
//
//	plain:<value>       literal bytes (also the default for bare values)
//	base64:<value>      base64 standard encoding
//	env:<NAME>          value of the environment variable NAME
//	file:<path>         file contents, surrounding whitespace trimmed
//	secretbox:<value>   NaCl secretbox sealed value, see SealSecret
//
// A value without a recognized scheme prefix is taken literally.
func ResolveSecret(ref string) ([]byte, error) {
	scheme, value, found := strings.Cut(ref, ":")
	if !found {
		return []byte(ref), nil
	}

	switch scheme {
	case "plain":
		return []byte(value), nil

	case "base64":
		secret, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: value is not valid base64", ErrInvalidSecretRef)
		}

		return secret, nil

	case "env":
		secret := os.Getenv(value)
		if secret == "" {
			return nil, fmt.Errorf("%w: environment variable %s is not set", ErrInvalidSecretRef, value)
		}

		return []byte(secret), nil

	case "file":
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecretRef, err)
		}

		return []byte(strings.TrimSpace(string(data))), nil

	case "secretbox":
		return openSealed(value)

	default:
		return []byte(ref), nil
	}
}

// SealSecret encrypts a secret with the master key and returns a
// secretbox: reference suitable for configuration files. The sealed value
// is base64(nonce || box) with a random 24-byte nonce.
func SealSecret(secret []byte) (string, error) {
	key, err := masterKey()
	if err != nil {
		return "", err
	}

	var nonce [secretboxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("keyring: generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], secret, &nonce, key)

	return "secretbox:" + base64.StdEncoding.EncodeToString(sealed), nil
}

func openSealed(encoded string) ([]byte, error) {
	key, err := masterKey()
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed value is not valid base64", ErrSealedValueCorrupt)
	}

	if len(raw) < secretboxNonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed value too short", ErrSealedValueCorrupt)
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], raw[:secretboxNonceSize])

	secret, ok := secretbox.Open(nil, raw[secretboxNonceSize:], &nonce, key)
	if !ok {
		return nil, ErrSealedValueCorrupt
	}

	return secret, nil
}

func masterKey() (*[masterKeySize]byte, error) {
	encoded := strings.TrimSpace(os.Getenv(MasterKeyEnv))
	if encoded == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrNoMasterKey, MasterKeyEnv)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", ErrNoMasterKey, MasterKeyEnv)
	}

	if len(raw) != masterKeySize {
		return nil, fmt.Errorf("%w: %s must decode to %d bytes", ErrNoMasterKey, MasterKeyEnv, masterKeySize)
	}

	var key [masterKeySize]byte
	copy(key[:], raw)

	return &key, nil
}
