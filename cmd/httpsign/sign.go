package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/cavage"
	"github.com/vitalvas/httpsign/keyring"
)

func newSignCmd() *cobra.Command {
	var (
		req       requestFlags
		keyFile   string
		secretRef string
		keyID     string
		algorithm string
		headers   string
		placement string
		digest    string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a described request and print the headers it gains",
		Long: `Sign a described request and print the headers it gains.

Output is one "Name: value" line per header the signing added: the Date
header when the description has none, the Digest header when --digest is
set, and the Signature (or Authorization) header itself. The lines feed
straight back into verify as -H flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyID == "" {
				return errors.New("--key-id is required")
			}

			key, err := signingMaterial(keyFile, secretRef)
			if err != nil {
				return err
			}

			target := cavage.OutboundTarget{
				KeyID:     keyID,
				Algorithm: cavage.Algorithm(algorithm),
				Key:       key,
			}
			if headers != "" {
				target.SignedHeaders = &cavage.HeadersConfig{Default: strings.Fields(headers)}
			}

			switch placement {
			case "", "signature":
				target.Placement = cavage.PlacementSignature
			case "authorization":
				target.Placement = cavage.PlacementAuthorization
			default:
				return fmt.Errorf("unknown placement %q (signature, authorization)", placement)
			}

			switch {
			case digest == "":
			case strings.EqualFold(digest, string(cavage.DigestSHA256)):
				target.DigestAlgorithm = cavage.DigestSHA256
			case strings.EqualFold(digest, string(cavage.DigestSHA512)):
				target.DigestAlgorithm = cavage.DigestSHA512
			default:
				return fmt.Errorf("unsupported digest algorithm %q (sha-256, sha-512)", digest)
			}

			r, err := req.build(cmd)
			if err != nil {
				return err
			}

			dateAdded := false
			if r.Header.Get("Date") == "" {
				r.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
				dateAdded = true
			}

			d, err := cavage.SignRequest(r, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dateAdded {
				fmt.Fprintf(out, "Date: %s\n", r.Header.Get("Date"))
			}
			if value := r.Header.Get(cavage.DigestHeader); value != "" {
				fmt.Fprintf(out, "%s: %s\n", cavage.DigestHeader, value)
			}
			if target.Placement == cavage.PlacementAuthorization {
				fmt.Fprintf(out, "Authorization: %s\n", r.Header.Get("Authorization"))
			} else {
				fmt.Fprintf(out, "%s: %s\n", cavage.SignatureHeader, d.String())
			}
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().StringVar(&keyFile, "key", "", "private key PEM file (rsa, ed25519)")
	cmd.Flags().StringVar(&secretRef, "secret", "", "shared secret reference (hmac)")
	cmd.Flags().StringVar(&keyID, "key-id", "", "key id to put in the signature (required)")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "signature algorithm (default derived from the key)")
	cmd.Flags().StringVar(&headers, "headers", "", "space-separated components to sign")
	cmd.Flags().StringVar(&placement, "placement", "signature", "header carrying the signature: signature, authorization")
	cmd.Flags().StringVar(&digest, "digest", "", "body digest algorithm to add and cover: sha-256, sha-512")

	return cmd
}

// signingMaterial loads key material for the sign command. Exactly one of
// the two sources must be set.
func signingMaterial(keyFile, secretRef string) (cavage.KeyMaterial, error) {
	switch {
	case keyFile != "" && secretRef != "":
		return cavage.KeyMaterial{}, errors.New("--key and --secret are mutually exclusive")

	case keyFile != "":
		key, err := keyring.ReadPrivateKeyFile(keyFile)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}
		return cavage.PrivateKeyMaterial(key), nil

	case secretRef != "":
		secret, err := keyring.ResolveSecret(secretRef)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}
		return cavage.SecretKeyMaterial(secret), nil

	default:
		return cavage.KeyMaterial{}, errors.New("one of --key or --secret is required")
	}
}
