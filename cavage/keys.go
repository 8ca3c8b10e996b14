package cavage

import (
	"crypto"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// KeyMaterial bundles the key inputs a signature algorithm may need. Which
// field is consulted is decided by the algorithm at the point of use:
// rsa-sha256/rsa-sha512 and ed25519 sign with PrivateKey and verify with
// PublicKey, hmac-sha256/hmac-sha512 use Secret for both.
//
// For the asymmetric algorithms, verification falls back to the public half
// of PrivateKey when PublicKey is not set, so the same material can drive a
// sign/verify round trip.
type KeyMaterial struct {
	// PrivateKey signs. *rsa.PrivateKey or ed25519.PrivateKey.
	PrivateKey crypto.PrivateKey

	// PublicKey verifies. *rsa.PublicKey or ed25519.PublicKey.
	PublicKey crypto.PublicKey

	// Secret is the shared HMAC secret.
	Secret []byte
}

// PrivateKeyMaterial returns key material holding a signing key.
func PrivateKeyMaterial(key crypto.PrivateKey) KeyMaterial {
	return KeyMaterial{PrivateKey: key}
}

// PublicKeyMaterial returns key material holding a verification key.
func PublicKeyMaterial(key crypto.PublicKey) KeyMaterial {
	return KeyMaterial{PublicKey: key}
}

// SecretKeyMaterial returns key material holding a copy of the shared
// HMAC secret.
func SecretKeyMaterial(secret []byte) KeyMaterial {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)

	return KeyMaterial{Secret: secretCopy}
}

// DefaultAlgorithm returns the algorithm implied by the populated key
// material: RSA keys default to rsa-sha256, Ed25519 keys to ed25519 and
// shared secrets to hmac-sha256. It returns ErrInvalidKey when no usable
// material is present.
func (k KeyMaterial) DefaultAlgorithm() (Algorithm, error) {
	switch k.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return AlgorithmRSASHA256, nil
	case ed25519.PrivateKey:
		return AlgorithmEd25519, nil
	}

	switch k.PublicKey.(type) {
	case *rsa.PublicKey:
		return AlgorithmRSASHA256, nil
	case ed25519.PublicKey:
		return AlgorithmEd25519, nil
	}

	if len(k.Secret) > 0 {
		return AlgorithmHMACSHA256, nil
	}

	return "", fmt.Errorf("%w: no usable key material", ErrInvalidKey)
}

// signBase signs the canonical signing string with the key material
// appropriate for the algorithm.
func signBase(alg Algorithm, key KeyMaterial, base []byte) ([]byte, error) {
	switch alg {
	case AlgorithmRSASHA256:
		priv, err := rsaPrivateKey(key)
		if err != nil {
			return nil, err
		}

		digest := sha256.Sum256(base)

		return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])

	case AlgorithmRSASHA512:
		priv, err := rsaPrivateKey(key)
		if err != nil {
			return nil, err
		}

		digest := sha512.Sum512(base)

		return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA512, digest[:])

	case AlgorithmHMACSHA256:
		secret, err := hmacSecret(key)
		if err != nil {
			return nil, err
		}

		return computeHMAC(sha256.New, secret, base), nil

	case AlgorithmHMACSHA512:
		secret, err := hmacSecret(key)
		if err != nil {
			return nil, err
		}

		return computeHMAC(sha512.New, secret, base), nil

	case AlgorithmEd25519:
		priv, err := ed25519PrivateKey(key)
		if err != nil {
			return nil, err
		}

		return ed25519.Sign(priv, base), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

// verifyBase checks the signature over the canonical signing string with
// the key material appropriate for the algorithm. HMAC comparison is
// constant-time.
func verifyBase(alg Algorithm, key KeyMaterial, base, signature []byte) error {
	switch alg {
	case AlgorithmRSASHA256:
		pub, err := rsaPublicKey(key)
		if err != nil {
			return err
		}

		digest := sha256.Sum256(base)
		if rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature) != nil {
			return ErrSignatureMismatch
		}

		return nil

	case AlgorithmRSASHA512:
		pub, err := rsaPublicKey(key)
		if err != nil {
			return err
		}

		digest := sha512.Sum512(base)
		if rsa.VerifyPKCS1v15(pub, crypto.SHA512, digest[:], signature) != nil {
			return ErrSignatureMismatch
		}

		return nil

	case AlgorithmHMACSHA256:
		secret, err := hmacSecret(key)
		if err != nil {
			return err
		}

		expected := computeHMAC(sha256.New, secret, base)
		if !hmac.Equal(expected, signature) {
			return ErrSignatureMismatch
		}

		return nil

	case AlgorithmHMACSHA512:
		secret, err := hmacSecret(key)
		if err != nil {
			return err
		}

		expected := computeHMAC(sha512.New, secret, base)
		if !hmac.Equal(expected, signature) {
			return ErrSignatureMismatch
		}

		return nil

	case AlgorithmEd25519:
		pub, err := ed25519PublicKey(key)
		if err != nil {
			return err
		}

		if !ed25519.Verify(pub, base, signature) {
			return ErrSignatureMismatch
		}

		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

func rsaPrivateKey(key KeyMaterial) (*rsa.PrivateKey, error) {
	priv, ok := key.PrivateKey.(*rsa.PrivateKey)
	if !ok || priv == nil {
		return nil, fmt.Errorf("%w: rsa private key required", ErrInvalidKey)
	}

	return priv, nil
}

func rsaPublicKey(key KeyMaterial) (*rsa.PublicKey, error) {
	if pub, ok := key.PublicKey.(*rsa.PublicKey); ok && pub != nil {
		return pub, nil
	}

	if priv, ok := key.PrivateKey.(*rsa.PrivateKey); ok && priv != nil {
		return &priv.PublicKey, nil
	}

	return nil, fmt.Errorf("%w: rsa public key required", ErrInvalidKey)
}

func ed25519PrivateKey(key KeyMaterial) (ed25519.PrivateKey, error) {
	priv, ok := key.PrivateKey.(ed25519.PrivateKey)
	if !ok || len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes", ErrInvalidKey, ed25519.PrivateKeySize)
	}

	return priv, nil
}

func ed25519PublicKey(key KeyMaterial) (ed25519.PublicKey, error) {
	if pub, ok := key.PublicKey.(ed25519.PublicKey); ok && len(pub) == ed25519.PublicKeySize {
		return pub, nil
	}

	if priv, ok := key.PrivateKey.(ed25519.PrivateKey); ok && len(priv) == ed25519.PrivateKeySize {
		return priv.Public().(ed25519.PublicKey), nil
	}

	return nil, fmt.Errorf("%w: ed25519 public key must be %d bytes", ErrInvalidKey, ed25519.PublicKeySize)
}

func hmacSecret(key KeyMaterial) ([]byte, error) {
	if len(key.Secret) == 0 {
		return nil, fmt.Errorf("%w: hmac secret must not be empty", ErrInvalidKey)
	}

	return key.Secret, nil
}

func computeHMAC(newHash func() hash.Hash, secret, message []byte) []byte {
	mac := hmac.New(newHash, secret)
	mac.Write(message)

	return mac.Sum(nil)
}
