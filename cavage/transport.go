package cavage

import (
	"net/http"
	"time"
)

// TransportConfig configures the signing Transport.
type TransportConfig struct {
	// Target describes the signing identity and key. Required.
	Target OutboundTarget

	// DefaultHeaders selects the signed components for targets that
	// carry no selection of their own. When both are nil,
	// DefaultSignedHeaders applies.
	DefaultHeaders *HeadersConfig

	// Observe, when set, is called after every signing attempt with the
	// algorithm token and the signing error (nil on success).
	Observe func(algorithm string, err error)
}

// Transport is an http.RoundTripper that signs outgoing requests with the
// Signature header scheme.
//
// Use NewTransport to create a Transport with a configured *http.Transport
// for proxy, TLS, and timeout settings.
type Transport struct {
	base    http.RoundTripper
	target  OutboundTarget
	observe func(string, error)
}

// NewTransport creates a signing Transport that delegates to base after
// signing each request. When base is nil, a clone of http.DefaultTransport
// is used, giving an independent connection pool with default proxy, TLS,
// and timeout settings.
//
//	base := &http.Transport{
//	    Proxy:           http.ProxyFromEnvironment,
//	    TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13},
//	    IdleConnTimeout: 90 * time.Second,
//	}
//	transport := cavage.NewTransport(base, cavage.TransportConfig{Target: target})
func NewTransport(base *http.Transport, cfg TransportConfig) *Transport {
	var rt http.RoundTripper
	if base != nil {
		rt = base
	} else {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}

	target := cfg.Target
	if target.SignedHeaders == nil {
		target.SignedHeaders = cfg.DefaultHeaders
	}

	return &Transport{
		base:    rt,
		target:  target,
		observe: cfg.Observe,
	}
}

// RoundTrip clones the request, sets Date when absent, signs the clone
// and delegates to the base transport. The original request is never
// mutated. When GetBody is available, the clone receives its own body
// copy so that digest computation does not consume the caller's body.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if clone.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}

		clone.Body = body
	}

	if clone.Header.Get("Date") == "" {
		clone.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}

	d, err := SignRequest(clone, t.target)

	if t.observe != nil {
		t.observe(d.Algorithm.String(), err)
	}

	if err != nil {
		return nil, err
	}

	return t.base.RoundTrip(clone)
}
