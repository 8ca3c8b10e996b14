// Package metrics exposes Prometheus collectors for the cavage signing and
// verification paths.
//
// Collectors are package-level and shared; call Register once at startup to
// attach them to a registry. MiddlewareObserver and TransportObserver build
// the observe hooks that cavage.Middleware and cavage.NewTransport accept:
//
//	if err := metrics.Register(nil); err != nil {
//		log.Fatal(err)
//	}
//
//	handler := cavage.Middleware(cavage.MiddlewareConfig{
//		Resolver: ring.Resolver(),
//		Observe:  metrics.MiddlewareObserver(),
//	})(next)
//
// Verification outcomes are reported under the result label as one of:
// success, mismatch, missing_signature, invalid_descriptor, unknown_key,
// algorithm_rejected, missing_header, digest_rejected, or error.
package metrics
