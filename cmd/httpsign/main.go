package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "httpsign",
		Short:         "Sign, verify and inspect Cavage-style HTTP request signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newKeygenCmd(),
		newCanonicalCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newInspectCmd(),
		newSealCmd(),
	)

	return root
}

// argOrStdin returns the single positional argument, or reads the command's
// input stream when no argument (or "-") is given. Stream input has its
// trailing newline stripped.
func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}
