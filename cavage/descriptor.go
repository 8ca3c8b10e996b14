package cavage

import (
	"fmt"
	"net/http"
	"strings"
)

// Wire field names of the Signature header.
const (
	fieldKeyID     = "keyId"
	fieldAlgorithm = "algorithm"
	fieldHeaders   = "headers"
	fieldSignature = "signature"
)

// SignatureHeader is the dedicated header carrying the signature fields.
const SignatureHeader = "Signature"

// authorizationScheme is the Authorization scheme used when the signature
// travels in the Authorization header.
const authorizationScheme = "Signature"

// Placement selects which header carries the signature fields.
type Placement string

const (
	// PlacementSignature puts the fields in a dedicated Signature header.
	// This is the default.
	PlacementSignature Placement = "signature"

	// PlacementAuthorization puts the fields in the Authorization header
	// using the Signature scheme.
	PlacementAuthorization Placement = "authorization"
)

// Descriptor is the parsed form of a Signature header value. It is a plain
// value: constructors copy the headers slice and nothing mutates a
// descriptor once returned.
type Descriptor struct {
	// KeyID identifies the key the verifier should resolve. The core
	// treats it as an opaque label.
	KeyID string

	// Algorithm is the algorithm token, verbatim as received. The defined
	// tokens are lowercase; anything else fails verification with
	// ErrUnsupportedAlgorithm.
	Algorithm Algorithm

	// Headers lists the signed components in signing order. Tokens are
	// kept as received; matching against them is case-insensitive.
	Headers []string

	// Signature is the base64-encoded signature value.
	Signature string
}

// ParseSignatureHeader parses a Signature header value of the form
//
//	keyId="...",algorithm="...",headers="...",signature="..."
//
// The parser is tolerant: the value is split on commas outside quoted
// regions, and each token is taken independently. Tokens without "=" and
// tokens whose value opens a quote that never closes are dropped without
// affecting the rest. When a name repeats, the last occurrence wins.
// Unrecognized names are ignored. The headers value splits on runs of
// whitespace; when the field is absent (or empty), the list defaults to
// DefaultSignedHeaders.
//
// Parsing never fails; Validate reports what is missing afterwards.
//
// Spec reference: https://datatracker.ietf.org/doc/html/draft-cavage-http-signatures-12#section-4.1
func ParseSignatureHeader(raw string) Descriptor {
	d := Descriptor{Headers: DefaultSignedHeaders()}

	for _, token := range splitQuoteAware(raw, ',') {
		name, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}

		value, ok = unquoteField(strings.TrimSpace(value))
		if !ok {
			continue
		}

		switch strings.TrimSpace(name) {
		case fieldKeyID:
			d.KeyID = value

		case fieldAlgorithm:
			d.Algorithm = Algorithm(value)

		case fieldHeaders:
			if headers := strings.Fields(value); len(headers) > 0 {
				d.Headers = headers
			}

		case fieldSignature:
			d.Signature = value
		}
	}

	return d
}

// Validate checks that the mandatory descriptor fields are present. It
// does not check algorithm support; that is verification's concern.
func (d Descriptor) Validate() error {
	if d.KeyID == "" {
		return fmt.Errorf("%w: keyId is a mandatory signature component", ErrInvalidDescriptor)
	}

	if d.Signature == "" {
		return fmt.Errorf("%w: signature is a mandatory signature component", ErrInvalidDescriptor)
	}

	return nil
}

// String renders the descriptor in wire form, all four fields in fixed
// order with double-quoted values. Parsing the result yields a descriptor
// semantically identical to d.
func (d Descriptor) String() string {
	var b strings.Builder

	b.WriteString(fieldKeyID + `="` + d.KeyID + `"`)
	b.WriteString("," + fieldAlgorithm + `="` + d.Algorithm.String() + `"`)
	b.WriteString("," + fieldHeaders + `="` + strings.Join(d.Headers, " ") + `"`)
	b.WriteString("," + fieldSignature + `="` + d.Signature + `"`)

	return b.String()
}

// Attach writes the descriptor onto the request in the given placement.
// An empty placement means PlacementSignature.
func (d Descriptor) Attach(r *http.Request, placement Placement) {
	switch placement {
	case PlacementAuthorization:
		r.Header.Set("Authorization", authorizationScheme+" "+d.String())
	default:
		r.Header.Set(SignatureHeader, d.String())
	}
}

// DescriptorFromRequest extracts a signature descriptor from the request,
// consulting the Signature header first and falling back to an
// Authorization header with the Signature scheme. The second return value
// reports whether either header was present.
func DescriptorFromRequest(r *http.Request) (Descriptor, bool) {
	if raw := r.Header.Get(SignatureHeader); raw != "" {
		return ParseSignatureHeader(raw), true
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, rest, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, authorizationScheme) {
			return ParseSignatureHeader(rest), true
		}
	}

	return Descriptor{}, false
}

// splitQuoteAware splits s on delim outside double-quoted regions. Parts
// are trimmed of surrounding whitespace; empty parts are dropped.
func splitQuoteAware(s string, delim byte) []string {
	var parts []string
	var part strings.Builder
	inQuote := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch {
		case ch == '"':
			inQuote = !inQuote
			part.WriteByte(ch)

		case ch == delim && !inQuote:
			if p := strings.TrimSpace(part.String()); p != "" {
				parts = append(parts, p)
			}

			part.Reset()

		default:
			part.WriteByte(ch)
		}
	}

	if p := strings.TrimSpace(part.String()); p != "" {
		parts = append(parts, p)
	}

	return parts
}

// unquoteField strips the surrounding double quotes from a field value.
// Unquoted values pass through as-is. A value that opens a quote without
// closing it is malformed and reported with ok == false so the caller can
// drop the token.
func unquoteField(s string) (string, bool) {
	if !strings.HasPrefix(s, `"`) {
		return s, true
	}

	if len(s) < 2 || !strings.HasSuffix(s[1:], `"`) {
		return "", false
	}

	return s[1 : len(s)-1], true
}
