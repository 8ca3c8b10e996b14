package cavage

import "strings"

// DefaultSignedHeaders returns the components signed (and assumed by the
// parser when the headers field is absent) when no selection is
// configured: the request-target line and the Date header. The result is
// a fresh slice the caller may own.
func DefaultSignedHeaders() []string {
	return []string{ComponentRequestTarget, "date"}
}

// HeadersConfig selects which components are signed on outbound requests.
//
// Mutating methods such as PUT or POST typically sign more headers (for
// example digest and content-length) than safe methods, so the selection
// can vary by HTTP method.
type HeadersConfig struct {
	// Default lists the components signed for methods without an
	// override.
	Default []string

	// ByMethod overrides the selection for specific HTTP methods. Keys
	// are uppercase method names ("PUT", "POST").
	ByMethod map[string][]string
}

// ForMethod returns the component list for the given HTTP method: the
// method's override when one exists, the Default list otherwise.
func (c HeadersConfig) ForMethod(method string) []string {
	if headers, ok := c.ByMethod[strings.ToUpper(method)]; ok {
		return headers
	}

	return c.Default
}

// containsFold reports whether list contains name, compared
// case-insensitively.
func containsFold(list []string, name string) bool {
	for _, item := range list {
		if strings.EqualFold(item, name) {
			return true
		}
	}

	return false
}
