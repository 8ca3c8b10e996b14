package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/keyring"
)

func newKeygenCmd() *cobra.Command {
	var (
		keyType     string
		bits        int
		secretBytes int
		out         string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate signing key material",
		Long: `Generate signing key material.

Key pairs (rsa, ed25519) are printed as PEM, or written to <out>.pem and
<out>.pub.pem when --out is set. Shared secrets (hmac) and the secretbox
master key (master) are printed base64-encoded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch keyType {
			case "rsa", "ed25519":
				key, err := generatePair(keyType, bits)
				if err != nil {
					return err
				}
				return writePair(cmd, key, out)

			case "hmac":
				secret, err := keyring.GenerateSecret(secretBytes)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), secret)
				return nil

			case "master":
				key, err := keyring.GenerateMasterKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil

			default:
				return fmt.Errorf("unknown key type %q (rsa, ed25519, hmac, master)", keyType)
			}
		},
	}

	cmd.Flags().StringVar(&keyType, "type", "ed25519", "key type: rsa, ed25519, hmac, master")
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA key size in bits")
	cmd.Flags().IntVar(&secretBytes, "bytes", 64, "shared secret length in bytes")
	cmd.Flags().StringVar(&out, "out", "", "output path prefix for key pairs")

	return cmd
}

func generatePair(keyType string, bits int) (*keyring.GeneratedKey, error) {
	if keyType == "rsa" {
		return keyring.GenerateRSA(bits)
	}
	return keyring.GenerateEd25519()
}

func writePair(cmd *cobra.Command, key *keyring.GeneratedKey, out string) error {
	if out == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "key id: %s\n\n", key.KeyID)
		cmd.OutOrStdout().Write(key.PrivateKey)
		cmd.OutOrStdout().Write(key.PublicKey)
		return nil
	}

	privPath := out + ".pem"
	pubPath := out + ".pub.pem"

	if err := os.WriteFile(privPath, key.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, key.PublicKey, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "key id: %s\nprivate key: %s\npublic key: %s\n", key.KeyID, privPath, pubPath)
	return nil
}
