package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/cavage"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [header-value]",
		Short: "Parse a signature header value and print its fields",
		Long: `Parse a signature header value and print its fields.

The value is taken from the argument, or from stdin when absent. A leading
"Signature:" or "Authorization:" header name and the "Signature "
authorization scheme are stripped, so sign output pipes in directly. The
exit status is non-zero when the descriptor does not validate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}

			d := cavage.ParseSignatureHeader(trimSignaturePrefixes(raw))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key id:    %s\n", d.KeyID)
			fmt.Fprintf(out, "algorithm: %s\n", d.Algorithm)
			fmt.Fprintf(out, "headers:   %s\n", strings.Join(d.Headers, " "))
			fmt.Fprintf(out, "signature: %s\n", d.Signature)

			return d.Validate()
		},
	}

	return cmd
}

func trimSignaturePrefixes(raw string) string {
	value := strings.TrimSpace(raw)

	for _, name := range []string{"Signature:", "Authorization:"} {
		if rest, ok := strings.CutPrefix(value, name); ok {
			value = strings.TrimSpace(rest)
			break
		}
	}

	if rest, ok := strings.CutPrefix(value, "Signature "); ok {
		value = strings.TrimSpace(rest)
	}

	return value
}
