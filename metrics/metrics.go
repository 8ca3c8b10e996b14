package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitalvas/httpsign/cavage"
)

var (
	SignaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "httpsign_signatures_total",
		Help: "Signatures produced for outbound requests",
	}, []string{"algorithm"})

	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "httpsign_verifications_total",
		Help: "Verification attempts for inbound requests",
	}, []string{"algorithm", "result"})

	VerificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "httpsign_verification_duration_seconds",
		Help:    "Time spent verifying inbound request signatures",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
)

// Register registers the httpsign metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(SignaturesTotal); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	if err := reg.Register(VerificationsTotal); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	if err := reg.Register(VerificationDuration); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	return nil
}

// MiddlewareObserver returns an observe hook for cavage.MiddlewareConfig that
// records every verification attempt.
func MiddlewareObserver() func(algorithm string, err error, elapsed time.Duration) {
	return func(algorithm string, err error, elapsed time.Duration) {
		VerificationsTotal.WithLabelValues(algorithmLabel(algorithm), resultLabel(err)).Inc()
		VerificationDuration.Observe(elapsed.Seconds())
	}
}

// TransportObserver returns an observe hook for cavage.TransportConfig that
// counts the signatures the transport attaches. Failed signing attempts
// produce no signature and are not counted.
func TransportObserver() func(algorithm string, err error) {
	return func(algorithm string, err error) {
		if err != nil {
			return
		}
		SignaturesTotal.WithLabelValues(algorithmLabel(algorithm)).Inc()
	}
}

func algorithmLabel(algorithm string) string {
	if algorithm == "" {
		return "none"
	}
	return algorithm
}

// resultLabel collapses the cavage error taxonomy into a bounded label set.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, cavage.ErrSignatureMismatch):
		return "mismatch"
	case errors.Is(err, cavage.ErrSignatureNotFound):
		return "missing_signature"
	case errors.Is(err, cavage.ErrInvalidDescriptor):
		return "invalid_descriptor"
	case errors.Is(err, cavage.ErrUnknownKeyID):
		return "unknown_key"
	case errors.Is(err, cavage.ErrUnsupportedAlgorithm), errors.Is(err, cavage.ErrAlgorithmNotAllowed):
		return "algorithm_rejected"
	case errors.Is(err, cavage.ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, cavage.ErrDigestMismatch), errors.Is(err, cavage.ErrDigestNotFound), errors.Is(err, cavage.ErrUnsupportedDigest):
		return "digest_rejected"
	default:
		return "error"
	}
}
