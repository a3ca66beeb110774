package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/zksuit/zksuit/x/suitability/artifacts"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// Function variables for testing
var (
	groth16Prove  = groth16.Prove
	groth16Verify = groth16.Verify
)

// Backend holds the compiled suitability circuit and its Groth16 keys. It is
// read-only after construction and safe for concurrent use. Work runs inside
// a Session; Close waits for every session to be released and then drops the
// keys, after which all operations fail with types.ErrBackendClosed.
type Backend struct {
	mu       sync.RWMutex
	closed   bool
	sessions sync.WaitGroup

	ccs      constraint.ConstraintSystem
	pk       groth16.ProvingKey
	vk       groth16.VerifyingKey
	metadata *artifacts.Metadata

	logger  log.Logger
	metrics *ProverMetrics
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(logger log.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

func newBackend(opts ...Option) *Backend {
	b := &Backend{
		logger:  log.NewNopLogger(),
		metrics: NewProverMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("module", "x/suitability/prover")
	return b
}

// Open loads the circuit, proving key and verifying key from store. When the
// store carries metadata, every artifact is checked against its recorded
// checksum.
//
// Missing artifacts yield types.ErrArtifactUnavailable; artifacts that exist
// but cannot be read or decoded yield types.ErrProvingIO.
func Open(ctx context.Context, store artifacts.Store, opts ...Option) (*Backend, error) {
	b := newBackend(opts...)
	start := time.Now()

	meta, err := artifacts.ReadMetadata(ctx, store)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrArtifactUnavailable):
		meta = nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		b.metrics.ArtifactLoadFailures.Inc()
		return nil, fmt.Errorf("%w: %s: %v", types.ErrProvingIO, artifacts.MetadataFile, err)
	}

	ccs := groth16.NewCS(ecc.BN254)
	pk := groth16.NewProvingKey(ecc.BN254)
	vk := groth16.NewVerifyingKey(ecc.BN254)

	for _, a := range []struct {
		name string
		dst  io.ReaderFrom
	}{
		{artifacts.CircuitFile, ccs},
		{artifacts.ProvingKeyFile, pk},
		{artifacts.VerifyingKeyFile, vk},
	} {
		if err := readArtifact(ctx, store, a.name, meta, a.dst); err != nil {
			b.metrics.ArtifactLoadFailures.Inc()
			b.logger.Error("failed to load suitability artifact", "artifact", a.name, "error", err)
			return nil, err
		}
	}

	if err := b.install(ccs, pk, vk); err != nil {
		b.metrics.ArtifactLoadFailures.Inc()
		return nil, err
	}
	b.metadata = meta

	keyID := ""
	if meta != nil {
		keyID = meta.KeyID
	}
	b.logger.Info("suitability backend opened",
		"key_id", keyID,
		"constraints", ccs.GetNbConstraints(),
		"duration", time.Since(start).String(),
	)
	return b, nil
}

// New builds a backend from keys already in memory.
func New(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, opts ...Option) (*Backend, error) {
	b := newBackend(opts...)
	if err := b.install(ccs, pk, vk); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) install(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	if ccs == nil || pk == nil || vk == nil {
		return fmt.Errorf("%w: incomplete key material", types.ErrArtifactUnavailable)
	}
	if got := vk.NbPublicWitness(); got != types.PublicSignalCount {
		return fmt.Errorf("%w: verifying key expects %d public inputs, circuit has %d",
			types.ErrProvingIO, got, types.PublicSignalCount)
	}
	b.ccs, b.pk, b.vk = ccs, pk, vk
	return nil
}

func readArtifact(ctx context.Context, store artifacts.Store, name string, meta *artifacts.Metadata, dst io.ReaderFrom) error {
	data, err := store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, types.ErrArtifactUnavailable) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", types.ErrProvingIO, name, err)
	}
	if meta != nil {
		if err := meta.VerifyChecksum(name, data); err != nil {
			return fmt.Errorf("%w: %v", types.ErrProvingIO, err)
		}
	}
	if _, err := dst.ReadFrom(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: decode %s: %v", types.ErrProvingIO, name, err)
	}
	return nil
}

// Metadata returns the artifact metadata, or nil when none was published.
func (b *Backend) Metadata() *artifacts.Metadata {
	return b.metadata
}

// Acquire reserves the backend. The session must be released.
func (b *Backend) Acquire() (*Session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, types.ErrBackendClosed
	}
	b.sessions.Add(1)
	b.metrics.ActiveSessions.Inc()
	return &Session{backend: b}, nil
}

// Close waits for outstanding sessions and releases the keys. It is safe to
// call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.sessions.Wait()

	b.mu.Lock()
	b.ccs, b.pk, b.vk = nil, nil, nil
	b.mu.Unlock()

	b.logger.Info("suitability backend closed")
	return nil
}

// Prove acquires a session for the duration of one proof.
func (b *Backend) Prove(ctx context.Context, w Witness) (*Proof, error) {
	s, err := b.Acquire()
	if err != nil {
		return nil, err
	}
	defer s.Release()
	return s.Prove(ctx, w)
}

// Verify acquires a session for the duration of one verification.
func (b *Backend) Verify(proof *Proof, pub PublicInputs) (bool, error) {
	s, err := b.Acquire()
	if err != nil {
		return false, err
	}
	defer s.Release()
	return s.Verify(proof, pub)
}

// VerifyCalldata decodes and verifies wire calldata.
func (b *Backend) VerifyCalldata(cd types.Calldata) (bool, error) {
	s, err := b.Acquire()
	if err != nil {
		return false, err
	}
	defer s.Release()
	return s.VerifyCalldata(cd)
}

// ExportSolidity writes the verifier contract for the loaded verifying key.
func (b *Backend) ExportSolidity(w io.Writer) error {
	s, err := b.Acquire()
	if err != nil {
		return err
	}
	defer s.Release()
	return s.ExportSolidity(w)
}

var _ types.ProofVerifier = (*Backend)(nil)

// Session is a reservation of the backend. Release is idempotent; a released
// session refuses further work.
type Session struct {
	backend  *Backend
	once     sync.Once
	released atomic.Bool
}

// Release returns the session to the backend.
func (s *Session) Release() {
	s.once.Do(func() {
		s.released.Store(true)
		s.backend.metrics.ActiveSessions.Dec()
		s.backend.sessions.Done()
	})
}

func (s *Session) check() error {
	if s.released.Load() {
		return fmt.Errorf("%w: session released", types.ErrBackendClosed)
	}
	return nil
}

// Prove generates a proof for w.
//
// The statement is validated and solved before any proving work starts: a
// false statement fails with types.ErrConstraintUnsatisfied and never reaches
// groth16.Prove. If ctx is cancelled while proving, Prove returns ctx.Err();
// the abandoned computation keeps the backend open until it finishes.
func (s *Session) Prove(ctx context.Context, w Witness) (*Proof, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := s.backend
	start := time.Now()

	if err := w.Validate(); err != nil {
		b.metrics.ProofsGenerated.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := w.precheck(); err != nil {
		b.metrics.ProofsGenerated.WithLabelValues("unsatisfied").Inc()
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(w.assignment(), ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create witness: %v", types.ErrProvingIO, err)
	}
	if err := b.ccs.IsSolved(fullWitness); err != nil {
		b.metrics.ProofsGenerated.WithLabelValues("unsatisfied").Inc()
		return nil, fmt.Errorf("%w: %v", types.ErrConstraintUnsatisfied, err)
	}

	type result struct {
		proof groth16.Proof
		err   error
	}
	done := make(chan result, 1)
	b.sessions.Add(1)
	go func() {
		defer b.sessions.Done()
		proof, err := groth16Prove(b.ccs, b.pk, fullWitness)
		done <- result{proof, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		b.metrics.ProofsGenerated.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		b.metrics.ProofsGenerated.WithLabelValues("error").Inc()
		b.logger.Error("groth16 proving failed", "error", res.err)
		return nil, fmt.Errorf("%w: %v", types.ErrProvingIO, res.err)
	}
	groth, ok := res.proof.(*groth16bn254.Proof)
	if !ok {
		b.metrics.ProofsGenerated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: unexpected proof type %T", types.ErrProvingIO, res.proof)
	}

	elapsed := time.Since(start)
	b.metrics.ProofsGenerated.WithLabelValues("success").Inc()
	b.metrics.ProofGenerationTime.Observe(elapsed.Seconds())
	b.logger.Debug("suitability proof generated", "duration", elapsed.String())

	return &Proof{groth: groth}, nil
}

// Verify checks proof against pub. It returns (false, nil) for a proof that
// does not verify.
func (s *Session) Verify(proof *Proof, pub PublicInputs) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	if proof == nil || proof.groth == nil {
		return false, fmt.Errorf("%w: nil proof", types.ErrMalformedProof)
	}
	if err := pub.Validate(); err != nil {
		return false, err
	}
	b := s.backend
	start := time.Now()

	publicWitness, err := frontend.NewWitness(pub.assignment(), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("%w: failed to create public witness: %v", types.ErrProvingIO, err)
	}

	err = groth16Verify(proof.groth, b.vk, publicWitness)
	b.metrics.VerificationTime.Observe(time.Since(start).Seconds())
	if err != nil {
		b.metrics.ProofsVerified.WithLabelValues("rejected").Inc()
		b.logger.Debug("suitability proof rejected", "error", err.Error())
		return false, nil
	}

	b.metrics.ProofsVerified.WithLabelValues("accepted").Inc()
	return true, nil
}

// VerifyCalldata decodes cd and verifies it against its own public signals.
func (s *Session) VerifyCalldata(cd types.Calldata) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	proof, pub, err := DecodeCalldata(cd)
	if err != nil {
		return false, err
	}
	return s.Verify(proof, pub)
}

// ExportSolidity writes the verifier contract for the loaded verifying key.
func (s *Session) ExportSolidity(w io.Writer) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.backend.vk.ExportSolidity(w); err != nil {
		return fmt.Errorf("%w: export solidity: %v", types.ErrProvingIO, err)
	}
	return nil
}
