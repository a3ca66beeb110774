package protocol

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/prover"
	"github.com/zksuit/zksuit/x/suitability/types"
)

const tracerName = "github.com/zksuit/zksuit/x/suitability/protocol"

// Prover produces suitability proofs. *prover.Backend satisfies it.
type Prover interface {
	Prove(ctx context.Context, w prover.Witness) (*prover.Proof, error)
}

// RetryConfig bounds the retries of infrastructure failures.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// ProofRequest carries prover inputs as they arrive from callers: decimal or
// 0x-hex strings plus typed directions.
type ProofRequest struct {
	Password    string
	Salt        string
	Attributes  []string
	Certificate string
	Directions  []types.Direction
	Thresholds  []string
}

// ProofResult is a finished proof with its calldata split into the proof
// group and the public-signal group.
type ProofResult struct {
	JobID         string
	Proof         []string
	PublicSignals []string
	Calldata      types.Calldata
	Attempts      int
	Duration      time.Duration
}

// Orchestrator turns caller requests into proofs and calldata.
type Orchestrator struct {
	prover Prover
	retry  RetryConfig
	logger log.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg RetryConfig) OrchestratorOption {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates an orchestrator over p.
func NewOrchestrator(p Prover, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		prover: p,
		retry:  DefaultRetryConfig(),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("module", "x/suitability/protocol")
	return o
}

// DeriveIdentity returns the identity commitment of (password, salt) in decimal.
func (o *Orchestrator) DeriveIdentity(password, salt string) (string, error) {
	return DeriveIdentity(password, salt)
}

// DeriveCertificate returns the certificate of identity and attributes in decimal.
func (o *Orchestrator) DeriveCertificate(identity string, attributes []string) (string, error) {
	return DeriveCertificate(identity, attributes)
}

// DeriveIdentity parses its inputs and delegates to the commitment engine.
func DeriveIdentity(password, salt string) (string, error) {
	pw, err := commitment.ParseFieldElement(password)
	if err != nil {
		return "", fmt.Errorf("password: %w", err)
	}
	s, err := commitment.ParseFieldElement(salt)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	id, err := commitment.DeriveIdentity(pw, s)
	if err != nil {
		return "", err
	}
	return commitment.FormatFieldElement(id), nil
}

// DeriveCertificate parses its inputs and delegates to the commitment engine.
func DeriveCertificate(identity string, attributes []string) (string, error) {
	id, err := commitment.ParseFieldElement(identity)
	if err != nil {
		return "", fmt.Errorf("identity: %w", err)
	}
	attrs, err := parseAttributes("attribute", attributes)
	if err != nil {
		return "", err
	}
	cert, err := commitment.DeriveCertificate(id, attrs)
	if err != nil {
		return "", err
	}
	return commitment.FormatFieldElement(cert), nil
}

func parseAttributes(label string, values []string) ([]*big.Int, error) {
	if len(values) != types.AttributeCount {
		return nil, fmt.Errorf("%w: expected %d %ss, got %d", types.ErrDimensionMismatch, types.AttributeCount, label, len(values))
	}
	out := make([]*big.Int, len(values))
	for i, v := range values {
		x, err := commitment.ParseAttribute(v)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", label, i, err)
		}
		out[i] = x
	}
	return out, nil
}

// Witness converts the request into prover input.
func (r ProofRequest) Witness() (prover.Witness, error) {
	if len(r.Directions) != types.AttributeCount {
		return prover.Witness{}, fmt.Errorf("%w: expected %d directions, got %d",
			types.ErrDimensionMismatch, types.AttributeCount, len(r.Directions))
	}
	attrs, err := parseAttributes("attribute", r.Attributes)
	if err != nil {
		return prover.Witness{}, err
	}
	thresholds, err := parseAttributes("threshold", r.Thresholds)
	if err != nil {
		return prover.Witness{}, err
	}
	pw, err := commitment.ParseFieldElement(r.Password)
	if err != nil {
		return prover.Witness{}, fmt.Errorf("password: %w", err)
	}
	salt, err := commitment.ParseFieldElement(r.Salt)
	if err != nil {
		return prover.Witness{}, fmt.Errorf("salt: %w", err)
	}
	cert, err := commitment.ParseFieldElement(r.Certificate)
	if err != nil {
		return prover.Witness{}, fmt.Errorf("certificate: %w", err)
	}
	return prover.Witness{
		Password:    pw,
		Salt:        salt,
		Attributes:  attrs,
		Certificate: cert,
		Directions:  append([]types.Direction(nil), r.Directions...),
		Thresholds:  thresholds,
	}, nil
}

// BuildSuitabilityProof validates req, proves it and encodes the calldata.
//
// Infrastructure failures (types.IsRetryable) are retried with exponential
// backoff. Everything else is returned on the first attempt with its kind
// intact.
func (o *Orchestrator) BuildSuitabilityProof(ctx context.Context, req ProofRequest) (*ProofResult, error) {
	return o.build(ctx, uuid.NewString(), req)
}

func (o *Orchestrator) build(ctx context.Context, jobID string, req ProofRequest) (_ *ProofResult, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "suitability.BuildProof",
		trace.WithAttributes(attribute.String("job.id", jobID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	w, err := req.Witness()
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.retry.InitialInterval
	bo.MaxInterval = o.retry.MaxInterval
	// WithMaxRetries bounds the loop; an elapsed-time cap would cut it short
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, o.retry.MaxRetries), ctx)

	var (
		proof    *prover.Proof
		attempts int
	)
	operation := func() error {
		attempts++
		span.AddEvent("prove", trace.WithAttributes(attribute.Int("attempt", attempts)))
		p, err := o.prover.Prove(ctx, w)
		if err != nil {
			if types.IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		proof = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		o.logger.Info("retrying suitability proof",
			"job_id", jobID,
			"attempt", attempts,
			"wait", wait.String(),
			"error", err.Error(),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		o.logger.Error("suitability proof failed",
			"job_id", jobID,
			"attempts", attempts,
			"error", err.Error(),
		)
		return nil, err
	}

	cd, err := prover.EncodeCalldata(proof, w.Public())
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("proof.attempts", attempts))
	result := &ProofResult{
		JobID:         jobID,
		Proof:         cd.Proof,
		PublicSignals: cd.PublicSignals,
		Calldata:      cd,
		Attempts:      attempts,
		Duration:      time.Since(start),
	}
	o.logger.Info("suitability proof built",
		"job_id", jobID,
		"attempts", attempts,
		"duration", result.Duration.String(),
	)
	return result, nil
}
