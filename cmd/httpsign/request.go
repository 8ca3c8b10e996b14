package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// requestFlags describes a request on the command line, in curl-ish terms.
// The same -H "Name: value" form the flags accept is what sign prints, so
// sign output feeds straight back into verify.
type requestFlags struct {
	method   string
	url      string
	headers  []string
	body     string
	bodyFile string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "X", http.MethodGet, "HTTP method of the described request")
	cmd.Flags().StringVar(&f.url, "url", "", "request URL (required)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `request header ("Name: value", repeatable)`)
	cmd.Flags().StringVar(&f.body, "body", "", "request body as a literal string")
	cmd.Flags().StringVar(&f.bodyFile, "body-file", "", `request body read from a file ("-" for stdin)`)
}

func (f *requestFlags) build(cmd *cobra.Command) (*http.Request, error) {
	if f.url == "" {
		return nil, errors.New("--url is required")
	}

	body, err := f.readBody(cmd)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(strings.ToUpper(f.method), f.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for _, line := range f.headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header %q, want \"Name: value\"", line)
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if strings.EqualFold(name, "Host") {
			req.Host = value
			continue
		}
		req.Header.Add(name, value)
	}

	return req, nil
}

func (f *requestFlags) readBody(cmd *cobra.Command) ([]byte, error) {
	switch {
	case f.body != "" && f.bodyFile != "":
		return nil, errors.New("--body and --body-file are mutually exclusive")
	case f.body != "":
		return []byte(f.body), nil
	case f.bodyFile == "-":
		return io.ReadAll(cmd.InOrStdin())
	case f.bodyFile != "":
		data, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		return data, nil
	default:
		return nil, nil
	}
}
