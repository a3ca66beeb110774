package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SuitabilityMetrics holds all Prometheus metrics for the Suitability module
type SuitabilityMetrics struct {
	// Registry metrics
	VerifierChanges      *prometheus.CounterVec
	CertificatesAttested prometheus.Counter

	// Challenge metrics
	ChallengesCreated prometheus.Counter
	Responses         *prometheus.CounterVec
	VerificationTime  prometheus.Histogram
}

var (
	suitabilityMetricsOnce sync.Once
	suitabilityMetrics     *SuitabilityMetrics
)

// NewSuitabilityMetrics creates and registers suitability metrics (singleton pattern)
func NewSuitabilityMetrics() *SuitabilityMetrics {
	suitabilityMetricsOnce.Do(func() {
		suitabilityMetrics = &SuitabilityMetrics{
			VerifierChanges: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "suitability",
					Name:      "verifier_changes_total",
					Help:      "Verifier registry mutations by action",
				},
				[]string{"action"},
			),
			CertificatesAttested: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "suitability",
					Name:      "certificates_attested_total",
					Help:      "Total number of certificates attested",
				},
			),
			ChallengesCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "suitability",
					Name:      "challenges_created_total",
					Help:      "Total number of challenges created",
				},
			),
			Responses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "suitability",
					Name:      "responses_total",
					Help:      "Challenge responses by outcome",
				},
				[]string{"outcome"},
			),
			VerificationTime: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "zksuit",
					Subsystem: "suitability",
					Name:      "response_verification_seconds",
					Help:      "Time spent verifying response proofs",
					Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
				},
			),
		}
	})
	return suitabilityMetrics
}
