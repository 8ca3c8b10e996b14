package keyring

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// PEM block types accepted by the parsers.
const (
	blockPKCS8PrivateKey = "PRIVATE KEY"
	blockPKCS1PrivateKey = "RSA PRIVATE KEY"
	blockPKIXPublicKey   = "PUBLIC KEY"
	blockPKCS1PublicKey  = "RSA PUBLIC KEY"
	blockCertificate     = "CERTIFICATE"
)

// ParsePrivateKey scans concatenated PEM data and returns the first
// private key found, as the concrete type the signature algorithms
// expect: *rsa.PrivateKey or ed25519.PrivateKey. PKCS#8 ("PRIVATE KEY")
// and PKCS#1 ("RSA PRIVATE KEY") containers are supported.
func ParsePrivateKey(pemBytes []byte) (crypto.PrivateKey, error) {
	for len(pemBytes) > 0 {
		block, rest := pem.Decode(pemBytes)
		if block == nil {
			break
		}

		switch block.Type {
		case blockPKCS8PrivateKey:
			parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("keyring: parse pkcs8 private key: %w", err)
			}

			switch key := parsed.(type) {
			case *rsa.PrivateKey:
				return key, nil
			case ed25519.PrivateKey:
				return key, nil
			default:
				return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, parsed)
			}

		case blockPKCS1PrivateKey:
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("keyring: parse pkcs1 private key: %w", err)
			}

			return key, nil
		}

		pemBytes = rest
	}

	return nil, ErrNoPEMData
}

// ParsePublicKey scans concatenated PEM data and returns the first
// public key found, as *rsa.PublicKey or ed25519.PublicKey. PKIX
// ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") containers are supported,
// as well as X.509 certificates, from which the subject key is taken.
func ParsePublicKey(pemBytes []byte) (crypto.PublicKey, error) {
	for len(pemBytes) > 0 {
		block, rest := pem.Decode(pemBytes)
		if block == nil {
			break
		}

		switch block.Type {
		case blockPKIXPublicKey:
			parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("keyring: parse pkix public key: %w", err)
			}

			return assertPublicKey(parsed)

		case blockPKCS1PublicKey:
			key, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("keyring: parse pkcs1 public key: %w", err)
			}

			return key, nil

		case blockCertificate:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("keyring: parse certificate: %w", err)
			}

			return assertPublicKey(cert.PublicKey)
		}

		pemBytes = rest
	}

	return nil, ErrNoPEMData
}

func assertPublicKey(parsed any) (crypto.PublicKey, error) {
	switch key := parsed.(type) {
	case *rsa.PublicKey:
		return key, nil
	case ed25519.PublicKey:
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, parsed)
	}
}

// ReadPrivateKeyFile loads and parses a PEM private key file.
func ReadPrivateKeyFile(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: read private key: %w", err)
	}

	return ParsePrivateKey(data)
}

// ReadPublicKeyFile loads and parses a PEM public key file.
func ReadPublicKeyFile(path string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: read public key: %w", err)
	}

	return ParsePublicKey(data)
}

// EncodePrivateKey serializes a private key as a PKCS#8 PEM block.
func EncodePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("keyring: marshal private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: blockPKCS8PrivateKey, Bytes: der}), nil
}

// EncodePublicKey serializes a public key as a PKIX PEM block.
func EncodePublicKey(key crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("keyring: marshal public key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: blockPKIXPublicKey, Bytes: der}), nil
}
