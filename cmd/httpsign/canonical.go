package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalvas/httpsign/cavage"
)

func newCanonicalCmd() *cobra.Command {
	var (
		req     requestFlags
		headers string
	)

	cmd := &cobra.Command{
		Use:   "canonical",
		Short: "Print the canonical signing string for a described request",
		Long: `Print the canonical signing string for a described request.

Components naming headers the description does not carry are skipped, the
same way signing skips them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := req.build(cmd)
			if err != nil {
				return err
			}

			components := cavage.DefaultSignedHeaders()
			if headers != "" {
				components = strings.Fields(headers)
			}

			base := cavage.SigningString(cavage.NewRequestView(r), components)
			fmt.Fprint(cmd.OutOrStdout(), string(base))
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().StringVar(&headers, "headers", "", "space-separated signed components (default \""+strings.Join(cavage.DefaultSignedHeaders(), " ")+"\")")

	return cmd
}
