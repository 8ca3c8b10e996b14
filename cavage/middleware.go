package cavage

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// MiddlewareConfig configures the server-side signature verification
// middleware.
type MiddlewareConfig struct {
	// Verify configures how signatures are verified.
	Verify VerifyConfig

	// Optional admits requests carrying no signature at all, leaving them
	// unauthenticated (SignatureFromContext reports absence). A present
	// but invalid signature is still rejected.
	Optional bool

	// OnError is called when verification fails. When nil, a 401
	// Unauthorized response with a WWW-Authenticate challenge is sent;
	// the error is never written to the response.
	OnError func(w http.ResponseWriter, r *http.Request, err error)

	// Observe, when set, is called after every verification attempt with
	// the algorithm token (empty when no descriptor was parsed), the
	// verification error (nil on success) and the elapsed time.
	Observe func(algorithm string, err error, elapsed time.Duration)
}

// Middleware returns a middleware that verifies request signatures. On
// success the verified descriptor is stored in the request context and
// can be read with SignatureFromContext.
//
// It returns ErrNoResolver if VerifyConfig.Resolver is nil.
func Middleware(cfg MiddlewareConfig) (func(http.Handler) http.Handler, error) {
	if cfg.Verify.Resolver == nil {
		return nil, ErrNoResolver
	}

	onError := cfg.OnError
	if onError == nil {
		onError = challengeOnError(cfg.Verify.RequiredHeaders)
	}

	verifyCfg := cfg.Verify

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Optional {
				if _, ok := DescriptorFromRequest(r); !ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			d, err := VerifyRequest(r, verifyCfg)

			if cfg.Observe != nil {
				cfg.Observe(d.Algorithm.String(), err, time.Since(start))
			}

			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSignature(r.Context(), d)))
		})
	}, nil
}

// challengeOnError builds the default error responder: 401 with a
// WWW-Authenticate challenge advertising the headers a signer must cover.
func challengeOnError(required []string) func(http.ResponseWriter, *http.Request, error) {
	challenge := authorizationScheme
	if len(required) > 0 {
		challenge += ` headers="` + strings.Join(required, " ") + `"`
	}

	return func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.Header().Set("WWW-Authenticate", challenge)
		w.WriteHeader(http.StatusUnauthorized)
	}
}

// signatureContextKey is the context key for the verified descriptor.
type signatureContextKey struct{}

// ContextWithSignature returns a context carrying a verified descriptor.
func ContextWithSignature(ctx context.Context, d Descriptor) context.Context {
	return context.WithValue(ctx, signatureContextKey{}, d)
}

// SignatureFromContext returns the descriptor stored by Middleware after
// successful verification. The second return value reports presence.
func SignatureFromContext(ctx context.Context) (Descriptor, bool) {
	d, ok := ctx.Value(signatureContextKey{}).(Descriptor)

	return d, ok
}
