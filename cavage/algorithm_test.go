package cavage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlgorithmSupported(t *testing.T) {
	supported := []Algorithm{
		AlgorithmRSASHA256,
		AlgorithmRSASHA512,
		AlgorithmHMACSHA256,
		AlgorithmHMACSHA512,
		AlgorithmEd25519,
	}

	for _, alg := range supported {
		t.Run(alg.String(), func(t *testing.T) {
			assert.True(t, alg.Supported())
		})
	}

	t.Run("unknown token", func(t *testing.T) {
		assert.False(t, Algorithm("ecdsa-sha256").Supported())
	})

	t.Run("tokens are case-sensitive", func(t *testing.T) {
		assert.False(t, Algorithm("RSA-SHA256").Supported())
		assert.False(t, Algorithm("Hmac-Sha256").Supported())
	})

	t.Run("empty token", func(t *testing.T) {
		assert.False(t, Algorithm("").Supported())
	})
}
