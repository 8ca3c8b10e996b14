package cavage

import (
	"fmt"
	"net/http"
	"strings"
)

// ComponentRequestTarget is the pseudo-header that covers the request
// method and target in the signing string. It is matched
// case-insensitively and always emitted lowercase.
const ComponentRequestTarget = "(request-target)"

// RequestView is the canonical view of a request consumed by the signing
// and verification primitives. It carries exactly what the signing string
// needs, so callers that do not hold an *http.Request can still sign and
// verify.
type RequestView struct {
	// Method is the HTTP method. Lowercased when emitted.
	Method string

	// Path is the decoded request path. An empty path renders as "/".
	Path string

	// Query is the raw query string, without the leading "?". It is
	// treated as an opaque suffix: no re-encoding, no reordering.
	Query string

	// Host is consulted for the "host" header, which net/http keeps off
	// the header map.
	Host string

	// Header holds the request headers. Lookups go through canonical
	// MIME keys, so matching is case-insensitive.
	Header http.Header
}

// NewRequestView adapts a live request into the canonical view.
func NewRequestView(r *http.Request) RequestView {
	return RequestView{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Host:   r.Host,
		Header: r.Header,
	}
}

// SigningString builds the canonical signing string over the given
// components, in order. Each component contributes one newline-terminated
// line:
//
//	(request-target): <lowercase method> <path[?query]>
//	<lowercase header name>: <values joined with ", ">
//
// Components naming headers absent from the view are skipped entirely.
// A signer and a verifier that both lack the header therefore produce
// identical strings; a header present on only one side surfaces as a
// signature mismatch.
//
// Spec reference: https://datatracker.ietf.org/doc/html/draft-cavage-http-signatures-12#section-2.3
func SigningString(view RequestView, components []string) []byte {
	var base strings.Builder

	for _, name := range components {
		if strings.EqualFold(name, ComponentRequestTarget) {
			fmt.Fprintf(&base, "%s: %s\n", ComponentRequestTarget, requestTarget(view))
			continue
		}

		values := view.Header.Values(name)
		if len(values) == 0 && strings.EqualFold(name, "host") && view.Host != "" {
			values = []string{view.Host}
		}

		if len(values) == 0 {
			continue
		}

		fmt.Fprintf(&base, "%s: %s\n", strings.ToLower(name), strings.Join(values, ", "))
	}

	return []byte(base.String())
}

// requestTarget renders the value of the (request-target) pseudo-header.
func requestTarget(view RequestView) string {
	path := view.Path
	if path == "" {
		path = "/"
	}

	target := strings.ToLower(view.Method) + " " + path
	if view.Query != "" {
		target += "?" + view.Query
	}

	return target
}
