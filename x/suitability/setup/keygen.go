package setup

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"cosmossdk.io/log"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/google/uuid"

	"github.com/zksuit/zksuit/x/suitability/artifacts"
	"github.com/zksuit/zksuit/x/suitability/circuits"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// KeyGenerator runs the single-party Groth16 setup for the suitability
// circuit and publishes the resulting artifacts to a Store.
//
// The toxic waste of a single-party setup is known to whoever ran it. Use
// the artifacts for development and testing, or replace them with the
// output of a multi-party ceremony before relying on soundness.
type KeyGenerator struct {
	circuitName string
	keyVersion  uint64
	storage     artifacts.Store
	logger      log.Logger
	now         func() time.Time
}

// Option configures a KeyGenerator.
type Option func(*KeyGenerator)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(kg *KeyGenerator) { kg.logger = logger }
}

// WithKeyVersion sets the version recorded in the metadata.
func WithKeyVersion(v uint64) Option {
	return func(kg *KeyGenerator) { kg.keyVersion = v }
}

// NewKeyGenerator creates a new key generator instance.
func NewKeyGenerator(storage artifacts.Store, opts ...Option) *KeyGenerator {
	kg := &KeyGenerator{
		circuitName: circuits.CircuitName,
		keyVersion:  1,
		storage:     storage,
		logger:      log.NewNopLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(kg)
	}
	return kg
}

// Compile compiles the suitability circuit to R1CS over BN254.
func Compile() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuits.SuitabilityCircuit{})
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	return ccs, nil
}

// GenerateKeys compiles the circuit, runs the setup and stores the circuit,
// proving key, verifying key, Solidity verifier and metadata. Metadata is
// written last, so a store with metadata always holds a complete set.
func (kg *KeyGenerator) GenerateKeys(ctx context.Context) (*artifacts.Metadata, error) {
	startTime := kg.now()

	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("failed to setup keys: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blobs := make(map[string][]byte, 4)
	if blobs[artifacts.CircuitFile], err = serialize(ccs); err != nil {
		return nil, fmt.Errorf("failed to serialize constraint system: %w", err)
	}
	if blobs[artifacts.ProvingKeyFile], err = serialize(pk); err != nil {
		return nil, fmt.Errorf("failed to serialize proving key: %w", err)
	}
	if blobs[artifacts.VerifyingKeyFile], err = serialize(vk); err != nil {
		return nil, fmt.Errorf("failed to serialize verifying key: %w", err)
	}
	sol := new(bytes.Buffer)
	if err := vk.ExportSolidity(sol); err != nil {
		return nil, fmt.Errorf("failed to export solidity verifier: %w", err)
	}
	blobs[artifacts.SolidityVerifierFile] = sol.Bytes()

	metadata := &artifacts.Metadata{
		KeyID:           generateKeyID(kg.circuitName, kg.keyVersion),
		CircuitName:     kg.circuitName,
		Version:         kg.keyVersion,
		CreatedAt:       startTime.UTC(),
		Algorithm:       "groth16",
		Curve:           "bn254",
		ConstraintCount: ccs.GetNbConstraints(),
		PublicInputs:    ccs.GetNbPublicVariables() - 1, // minus the constant wire
		CalldataVersion: types.CalldataVersion,
		CeremonyID:      "direct-setup-" + uuid.NewString(),
		GeneratedBy:     "zksuit-setup",
		Checksums:       make(map[string]string, len(blobs)),
	}

	for _, name := range []string{
		artifacts.CircuitFile,
		artifacts.ProvingKeyFile,
		artifacts.VerifyingKeyFile,
		artifacts.SolidityVerifierFile,
	} {
		data := blobs[name]
		metadata.Checksums[name] = artifacts.Checksum(data)
		if err := kg.storage.Store(ctx, name, data); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", name, err)
		}
	}
	if err := artifacts.WriteMetadata(ctx, kg.storage, metadata); err != nil {
		return nil, fmt.Errorf("failed to store metadata: %w", err)
	}

	kg.logger.Info("suitability artifacts generated",
		"key_id", metadata.KeyID,
		"constraints", metadata.ConstraintCount,
		"proving_key_bytes", len(blobs[artifacts.ProvingKeyFile]),
		"duration", time.Since(startTime).String(),
	)

	// Increment version for next key generation
	kg.keyVersion++

	return metadata, nil
}

func serialize(w io.WriterTo) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := w.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func generateKeyID(circuitName string, version uint64) string {
	h := sha256.New()
	h.Write([]byte(circuitName))
	versionBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(versionBytes, version)
	h.Write(versionBytes)
	hash := h.Sum(nil)
	return fmt.Sprintf("%s-v%d-%x", circuitName, version, hash[:8])
}
