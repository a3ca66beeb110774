package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes a published artifact set.
type Metadata struct {
	KeyID           string            `json:"key_id"`
	CircuitName     string            `json:"circuit_name"`
	Version         uint64            `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	Algorithm       string            `json:"algorithm"` // "groth16"
	Curve           string            `json:"curve"`     // "bn254"
	ConstraintCount int               `json:"constraint_count"`
	PublicInputs    int               `json:"public_inputs"`
	CalldataVersion string            `json:"calldata_version"`
	CeremonyID      string            `json:"ceremony_id"`
	GeneratedBy     string            `json:"generated_by"`
	Checksums       map[string]string `json:"checksums"`
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum compares data against the recorded checksum for name.
// Artifacts without a recorded checksum pass.
func (m *Metadata) VerifyChecksum(name string, data []byte) error {
	want, ok := m.Checksums[name]
	if !ok {
		return nil
	}
	if got := Checksum(data); got != want {
		return fmt.Errorf("artifact %s checksum mismatch: got %s, want %s", name, got, want)
	}
	return nil
}

// WriteMetadata stores m under MetadataFile.
func WriteMetadata(ctx context.Context, store Store, m *Metadata) error {
	bz, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return store.Store(ctx, MetadataFile, bz)
}

// ReadMetadata loads MetadataFile.
func ReadMetadata(ctx context.Context, store Store) (*Metadata, error) {
	bz, err := store.Load(ctx, MetadataFile)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(bz, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &m, nil
}
