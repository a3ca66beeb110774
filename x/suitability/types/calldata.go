package types

import (
	"fmt"
)

// CalldataVersion identifies the proof encoding below. Decoders reject any
// other value.
const CalldataVersion = "suitability-groth16-bn254/v1"

// Calldata is the wire form of a suitability proof.
//
// Proof holds the eight Groth16 scalars in verifier-contract order
// [A.x, A.y, B.x.a1, B.x.a0, B.y.a1, B.y.a0, C.x, C.y]. PublicSignals holds
// [certificate, dir0, dir1, dir2, thr0, thr1, thr2]. Every scalar is a
// decimal string.
type Calldata struct {
	Version       string   `json:"version" yaml:"version"`
	Proof         []string `json:"proof" yaml:"proof"`
	PublicSignals []string `json:"public_signals" yaml:"public_signals"`
}

// NewCalldataFromScalars splits a flat scalar list as emitted by solidity
// calldata exporters: the first eight scalars are the proof, the remainder
// are the public signals.
func NewCalldataFromScalars(scalars []string) (Calldata, error) {
	if len(scalars) != ProofScalarCount+PublicSignalCount {
		return Calldata{}, fmt.Errorf("%w: expected %d scalars, got %d",
			ErrMalformedProof, ProofScalarCount+PublicSignalCount, len(scalars))
	}
	cd := Calldata{
		Version:       CalldataVersion,
		Proof:         append([]string(nil), scalars[:ProofScalarCount]...),
		PublicSignals: append([]string(nil), scalars[ProofScalarCount:]...),
	}
	return cd, nil
}

// ValidateBasic checks the envelope only: version and scalar counts.
// Scalar contents are checked by the proof decoder.
func (c Calldata) ValidateBasic() error {
	if c.Version != CalldataVersion {
		return fmt.Errorf("%w: unsupported calldata version %q", ErrMalformedProof, c.Version)
	}
	if len(c.Proof) != ProofScalarCount {
		return fmt.Errorf("%w: expected %d proof scalars, got %d", ErrMalformedProof, ProofScalarCount, len(c.Proof))
	}
	if len(c.PublicSignals) != PublicSignalCount {
		return fmt.Errorf("%w: expected %d public signals, got %d", ErrMalformedProof, PublicSignalCount, len(c.PublicSignals))
	}
	for i, s := range c.Proof {
		if s == "" {
			return fmt.Errorf("%w: proof scalar %d is empty", ErrMalformedProof, i)
		}
	}
	for i, s := range c.PublicSignals {
		if s == "" {
			return fmt.Errorf("%w: public signal %d is empty", ErrMalformedProof, i)
		}
	}
	return nil
}

// Scalars returns the flat proof-then-signals list.
func (c Calldata) Scalars() []string {
	out := make([]string, 0, len(c.Proof)+len(c.PublicSignals))
	out = append(out, c.Proof...)
	return append(out, c.PublicSignals...)
}

// CertificateSignal returns the certificate public signal.
func (c Calldata) CertificateSignal() string {
	return c.PublicSignals[0]
}

// DirectionSignals returns the direction public signals.
func (c Calldata) DirectionSignals() []string {
	return c.PublicSignals[1 : 1+AttributeCount]
}

// ThresholdSignals returns the threshold public signals.
func (c Calldata) ThresholdSignals() []string {
	return c.PublicSignals[1+AttributeCount:]
}
