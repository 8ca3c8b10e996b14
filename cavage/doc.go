// Package cavage implements HTTP request signatures in the Signature
// header scheme of draft-cavage-http-signatures, with optional body
// integrity via the Digest header (RFC 3230).
//
// It provides both client-side signing (via Transport) and server-side
// verification (via Middleware), plus the underlying primitives for
// callers that work outside net/http.
//
// # Supported Algorithms
//
// Five signature algorithms are supported:
//
//   - rsa-sha256 (RSASSA-PKCS1-v1_5 with SHA-256)
//   - rsa-sha512 (RSASSA-PKCS1-v1_5 with SHA-512)
//   - hmac-sha256 (HMAC with SHA-256)
//   - hmac-sha512 (HMAC with SHA-512)
//   - ed25519 (Edwards-Curve DSA)
//
// The set is closed; an unrecognized algorithm token fails verification
// with ErrUnsupportedAlgorithm.
//
// # Signing Requests
//
// Use SignRequest to sign a request against an outbound target definition:
//
//	target := cavage.OutboundTarget{
//	    KeyID: "billing-key-1",
//	    Key:   cavage.PrivateKeyMaterial(privateKey),
//	    SignedHeaders: &cavage.HeadersConfig{
//	        Default: []string{cavage.ComponentRequestTarget, "host", "date"},
//	    },
//	}
//
//	if _, err := cavage.SignRequest(req, target); err != nil {
//	    log.Fatal(err)
//	}
//
// The signed headers resolve per HTTP method, fall back to the target's
// default list, and finally to DefaultSignedHeaders. Headers absent from
// the request are skipped rather than failing the signature.
//
// # Verifying Requests
//
// Use VerifyRequest to verify the signature on an incoming request:
//
//	resolver := cavage.StaticResolver(cavage.InboundClient{
//	    KeyID:     "billing-key-1",
//	    Principal: "billing",
//	    Key:       cavage.PublicKeyMaterial(publicKey),
//	})
//
//	d, err := cavage.VerifyRequest(req, cavage.VerifyConfig{
//	    Resolver:        resolver,
//	    RequiredHeaders: []string{"date"},
//	})
//
// # Client Transport
//
// NewTransport creates an http.RoundTripper that signs all outgoing
// requests and sets a Date header when the request carries none. Pass an
// *http.Transport to configure proxy, TLS, and timeout settings; pass nil
// for sensible defaults:
//
//	client := &http.Client{
//	    Transport: cavage.NewTransport(nil, cavage.TransportConfig{
//	        Target: target,
//	    }),
//	}
//
//	resp, err := client.Get("https://api.example.com/resource")
//
// # Server Middleware
//
// Middleware returns a func(http.Handler) http.Handler that verifies
// signatures on incoming requests and rejects failures with 401:
//
//	mw, err := cavage.Middleware(cavage.MiddlewareConfig{
//	    Verify: cavage.VerifyConfig{
//	        Resolver:        resolver,
//	        RequiredHeaders: []string{"date"},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.Use(mw)
//
// Handlers behind the middleware read the verified descriptor with
// SignatureFromContext.
//
// # Digest
//
// Optional Digest support (RFC 3230) can be used standalone or integrated
// with signing:
//
//	// Standalone usage:
//	err := cavage.SetDigest(req, cavage.DigestSHA256)
//
//	// Integrated with signing (sets Digest and covers the "digest"
//	// header automatically):
//	_, err := cavage.SignRequest(req, cavage.OutboundTarget{
//	    KeyID:           "billing-key-1",
//	    Key:             cavage.PrivateKeyMaterial(privateKey),
//	    DigestAlgorithm: cavage.DigestSHA256,
//	})
//
// Spec reference: https://datatracker.ietf.org/doc/html/draft-cavage-http-signatures-12
package cavage
