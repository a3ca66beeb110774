package prover

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProverMetrics holds the Prometheus metrics of the proving backend
type ProverMetrics struct {
	ProofsGenerated      *prometheus.CounterVec
	ProofGenerationTime  prometheus.Histogram
	ProofsVerified       *prometheus.CounterVec
	VerificationTime     prometheus.Histogram
	ActiveSessions       prometheus.Gauge
	ArtifactLoadFailures prometheus.Counter
}

var (
	proverMetricsOnce sync.Once
	proverMetrics     *ProverMetrics
)

// NewProverMetrics creates and registers prover metrics (singleton pattern)
func NewProverMetrics() *ProverMetrics {
	proverMetricsOnce.Do(func() {
		proverMetrics = &ProverMetrics{
			ProofsGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "proofs_generated_total",
					Help:      "Proof generation attempts by outcome",
				},
				[]string{"outcome"},
			),
			ProofGenerationTime: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "proof_generation_seconds",
					Help:      "Time spent in Groth16 proving",
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
			),
			ProofsVerified: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "proofs_verified_total",
					Help:      "Proof verifications by result",
				},
				[]string{"result"},
			),
			VerificationTime: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "verification_seconds",
					Help:      "Time spent verifying proofs",
					Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
				},
			),
			ActiveSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "active_sessions",
					Help:      "Backend sessions currently acquired",
				},
			),
			ArtifactLoadFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zksuit",
					Subsystem: "prover",
					Name:      "artifact_load_failures_total",
					Help:      "Failed attempts to open the proving backend",
				},
			),
		}
	})
	return proverMetrics
}
