package prover

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// Proof is a Groth16 proof over BN254 for the suitability circuit.
type Proof struct {
	groth *groth16bn254.Proof
}

// Scalars returns the eight proof scalars in verifier-contract order
// [A.x, A.y, B.x.a1, B.x.a0, B.y.a1, B.y.a0, C.x, C.y].
func (p *Proof) Scalars() []string {
	g := p.groth
	return []string{
		fpString(&g.Ar.X), fpString(&g.Ar.Y),
		fpString(&g.Bs.X.A1), fpString(&g.Bs.X.A0),
		fpString(&g.Bs.Y.A1), fpString(&g.Bs.Y.A0),
		fpString(&g.Krs.X), fpString(&g.Krs.Y),
	}
}

func fpString(e *fp.Element) string {
	return e.BigInt(new(big.Int)).String()
}

// PublicSignals renders p as [certificate, dir0, dir1, dir2, thr0, thr1, thr2].
func (p PublicInputs) PublicSignals() []string {
	out := make([]string, 0, types.PublicSignalCount)
	out = append(out, commitment.FormatFieldElement(p.Certificate))
	for _, d := range p.Directions {
		out = append(out, fmt.Sprintf("%d", d.Uint64()))
	}
	for _, thr := range p.Thresholds {
		out = append(out, commitment.FormatFieldElement(thr))
	}
	return out
}

// EncodeCalldata produces the wire form of proof for statement pub.
func EncodeCalldata(proof *Proof, pub PublicInputs) (types.Calldata, error) {
	if proof == nil || proof.groth == nil {
		return types.Calldata{}, fmt.Errorf("%w: nil proof", types.ErrMalformedProof)
	}
	if err := pub.Validate(); err != nil {
		return types.Calldata{}, err
	}
	return types.Calldata{
		Version:       types.CalldataVersion,
		Proof:         proof.Scalars(),
		PublicSignals: pub.PublicSignals(),
	}, nil
}

// DecodeCalldata parses calldata back into a proof and its statement.
// Every failure wraps types.ErrMalformedProof.
func DecodeCalldata(cd types.Calldata) (*Proof, PublicInputs, error) {
	if err := cd.ValidateBasic(); err != nil {
		return nil, PublicInputs{}, err
	}
	proof, err := DecodeProof(cd.Proof)
	if err != nil {
		return nil, PublicInputs{}, err
	}
	pub, err := DecodePublicSignals(cd.PublicSignals)
	if err != nil {
		return nil, PublicInputs{}, err
	}
	return proof, pub, nil
}

// DecodeProof parses the eight proof scalars and checks every point is on
// the curve and in the prime-order subgroup.
func DecodeProof(scalars []string) (*Proof, error) {
	if len(scalars) != types.ProofScalarCount {
		return nil, fmt.Errorf("%w: expected %d proof scalars, got %d", types.ErrMalformedProof, types.ProofScalarCount, len(scalars))
	}

	var coords [types.ProofScalarCount]fp.Element
	for i, s := range scalars {
		x, err := parseDecimal(s)
		if err != nil {
			return nil, fmt.Errorf("proof scalar %d: %w", i, err)
		}
		if x.Cmp(fp.Modulus()) >= 0 {
			return nil, fmt.Errorf("%w: proof scalar %d exceeds the base field", types.ErrMalformedProof, i)
		}
		coords[i].SetBigInt(x)
	}

	g := new(groth16bn254.Proof)
	g.Ar.X, g.Ar.Y = coords[0], coords[1]
	g.Bs.X.A1, g.Bs.X.A0 = coords[2], coords[3]
	g.Bs.Y.A1, g.Bs.Y.A0 = coords[4], coords[5]
	g.Krs.X, g.Krs.Y = coords[6], coords[7]

	if !g.Ar.IsOnCurve() || !g.Ar.IsInSubGroup() {
		return nil, fmt.Errorf("%w: A is not a valid G1 point", types.ErrMalformedProof)
	}
	if !g.Bs.IsOnCurve() || !g.Bs.IsInSubGroup() {
		return nil, fmt.Errorf("%w: B is not a valid G2 point", types.ErrMalformedProof)
	}
	if !g.Krs.IsOnCurve() || !g.Krs.IsInSubGroup() {
		return nil, fmt.Errorf("%w: C is not a valid G1 point", types.ErrMalformedProof)
	}

	return &Proof{groth: g}, nil
}

// DecodePublicSignals parses the seven public signals. Directions must be 0
// or 1 and thresholds must fit the attribute width; anything else is not a
// statement the circuit can express.
func DecodePublicSignals(signals []string) (PublicInputs, error) {
	if len(signals) != types.PublicSignalCount {
		return PublicInputs{}, fmt.Errorf("%w: expected %d public signals, got %d", types.ErrMalformedProof, types.PublicSignalCount, len(signals))
	}

	values := make([]*big.Int, len(signals))
	for i, s := range signals {
		x, err := parseDecimal(s)
		if err != nil {
			return PublicInputs{}, fmt.Errorf("public signal %d: %w", i, err)
		}
		if err := commitment.ValidateFieldElement(x); err != nil {
			return PublicInputs{}, fmt.Errorf("%w: public signal %d: %v", types.ErrMalformedProof, i, err)
		}
		values[i] = x
	}

	pub := PublicInputs{
		Certificate: values[0],
		Directions:  make([]types.Direction, types.AttributeCount),
		Thresholds:  make([]*big.Int, types.AttributeCount),
	}
	for i := 0; i < types.AttributeCount; i++ {
		raw := values[1+i]
		if !raw.IsUint64() {
			return PublicInputs{}, fmt.Errorf("%w: direction %d out of range", types.ErrMalformedProof, i)
		}
		d, err := types.DirectionFromUint(raw.Uint64())
		if err != nil {
			return PublicInputs{}, fmt.Errorf("%w: direction %d: %v", types.ErrMalformedProof, i, err)
		}
		pub.Directions[i] = d

		thr := values[1+types.AttributeCount+i]
		if thr.BitLen() > types.AttributeBits {
			return PublicInputs{}, fmt.Errorf("%w: threshold %d exceeds %d bits", types.ErrMalformedProof, i, types.AttributeBits)
		}
		pub.Thresholds[i] = thr
	}
	return pub, nil
}

// parseDecimal accepts only unsigned base-10 digit strings.
func parseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty scalar", types.ErrMalformedProof)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q is not a decimal scalar", types.ErrMalformedProof, s)
		}
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal scalar", types.ErrMalformedProof, s)
	}
	return x, nil
}
