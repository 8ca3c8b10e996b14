package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/keyring"
)

func newSealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seal [secret]",
		Short: "Seal a secret under the master key",
		Long: `Seal a secret under the master key.

The secret is taken from the argument, or from stdin when absent. The
master key comes from ` + keyring.MasterKeyEnv + ` (generate one with
"httpsign keygen --type master"). The printed secretbox: reference goes
into ring configuration wherever a secret is expected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}

			ref, err := keyring.SealSecret([]byte(secret))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ref)
			return nil
		},
	}

	return cmd
}
