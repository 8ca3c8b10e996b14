package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/cavage"
	"github.com/vitalvas/httpsign/keyring"
)

func newVerifyCmd() *cobra.Command {
	var (
		req           requestFlags
		pubFile       string
		secretRef     string
		keyID         string
		algorithm     string
		required      string
		requireDigest bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the signature on a described request",
		Long: `Verify the signature on a described request.

The Signature (or Authorization) header is part of the description, passed
with -H like any other header. The exit status is non-zero when
verification fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := verificationMaterial(pubFile, secretRef)
			if err != nil {
				return err
			}

			resolver := singleKeyResolver(key, keyID, cavage.Algorithm(algorithm))

			r, err := req.build(cmd)
			if err != nil {
				return err
			}

			d, err := cavage.VerifyRequest(r, cavage.VerifyConfig{
				Resolver:        resolver,
				RequiredHeaders: strings.Fields(required),
				RequireDigest:   requireDigest,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%s)\n", d.KeyID, d.Algorithm)
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().StringVar(&pubFile, "public-key", "", "public key PEM file (rsa, ed25519)")
	cmd.Flags().StringVar(&secretRef, "secret", "", "shared secret reference (hmac)")
	cmd.Flags().StringVar(&keyID, "key-id", "", "accept only this key id (default any)")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "accept only this algorithm (default any)")
	cmd.Flags().StringVar(&required, "required", "", "space-separated components the signature must cover")
	cmd.Flags().BoolVar(&requireDigest, "require-digest", false, "require and verify a Digest header")

	return cmd
}

// verificationMaterial loads key material for the verify command. Exactly
// one of the two sources must be set.
func verificationMaterial(pubFile, secretRef string) (cavage.KeyMaterial, error) {
	switch {
	case pubFile != "" && secretRef != "":
		return cavage.KeyMaterial{}, errors.New("--public-key and --secret are mutually exclusive")

	case pubFile != "":
		key, err := keyring.ReadPublicKeyFile(pubFile)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}
		return cavage.PublicKeyMaterial(key), nil

	case secretRef != "":
		secret, err := keyring.ResolveSecret(secretRef)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}
		return cavage.SecretKeyMaterial(secret), nil

	default:
		return cavage.KeyMaterial{}, errors.New("one of --public-key or --secret is required")
	}
}

// singleKeyResolver resolves every key id to the supplied material, unless
// keyID pins it, in which case other ids are rejected. A non-empty alg
// restricts the accepted algorithm the same way.
func singleKeyResolver(key cavage.KeyMaterial, keyID string, alg cavage.Algorithm) cavage.KeyResolver {
	if keyID != "" {
		return cavage.StaticResolver(cavage.InboundClient{
			KeyID:     keyID,
			Algorithm: alg,
			Key:       key,
		})
	}

	return func(_ *http.Request, _ string, got cavage.Algorithm) (cavage.KeyMaterial, error) {
		if alg != "" && got != alg {
			return cavage.KeyMaterial{}, fmt.Errorf("%w: %s", cavage.ErrAlgorithmNotAllowed, got)
		}
		return key, nil
	}
}
