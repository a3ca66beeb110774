package prover

import (
	"fmt"
	"math/big"

	"github.com/zksuit/zksuit/x/suitability/circuits"
	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// PublicInputs is the statement a proof is checked against.
type PublicInputs struct {
	Certificate *big.Int
	Directions  []types.Direction
	Thresholds  []*big.Int
}

// Witness is the full prover input: the secret credentials and attributes
// plus the public statement.
type Witness struct {
	Password   *big.Int
	Salt       *big.Int
	Attributes []*big.Int

	Certificate *big.Int
	Directions  []types.Direction
	Thresholds  []*big.Int
}

// Public returns the public part of w.
func (w Witness) Public() PublicInputs {
	return PublicInputs{
		Certificate: w.Certificate,
		Directions:  w.Directions,
		Thresholds:  w.Thresholds,
	}
}

// Validate checks dimensions, field membership and bit widths.
func (p PublicInputs) Validate() error {
	if len(p.Directions) != types.AttributeCount {
		return fmt.Errorf("%w: expected %d directions, got %d", types.ErrDimensionMismatch, types.AttributeCount, len(p.Directions))
	}
	if len(p.Thresholds) != types.AttributeCount {
		return fmt.Errorf("%w: expected %d thresholds, got %d", types.ErrDimensionMismatch, types.AttributeCount, len(p.Thresholds))
	}
	if err := commitment.ValidateFieldElement(p.Certificate); err != nil {
		return fmt.Errorf("certificate: %w", err)
	}
	for i, d := range p.Directions {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("direction %d: %w", i, err)
		}
	}
	for i, thr := range p.Thresholds {
		if err := commitment.ValidateAttribute(thr); err != nil {
			return fmt.Errorf("threshold %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the public statement and the private inputs.
func (w Witness) Validate() error {
	if len(w.Attributes) != types.AttributeCount {
		return fmt.Errorf("%w: expected %d attributes, got %d", types.ErrDimensionMismatch, types.AttributeCount, len(w.Attributes))
	}
	if err := w.Public().Validate(); err != nil {
		return err
	}
	if err := commitment.ValidateFieldElement(w.Password); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	if err := commitment.ValidateFieldElement(w.Salt); err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	for i, a := range w.Attributes {
		if err := commitment.ValidateAttribute(a); err != nil {
			return fmt.Errorf("attribute %d: %w", i, err)
		}
	}
	return nil
}

// precheck evaluates the statement off-circuit so a false statement is
// reported with the failing part named. The solver remains authoritative.
func (w Witness) precheck() error {
	identity, err := commitment.DeriveIdentity(w.Password, w.Salt)
	if err != nil {
		return err
	}
	cert, err := commitment.DeriveCertificate(identity, w.Attributes)
	if err != nil {
		return err
	}
	if cert.Cmp(w.Certificate) != 0 {
		return fmt.Errorf("%w: certificate does not match credentials and attributes", types.ErrConstraintUnsatisfied)
	}
	for i := range w.Attributes {
		if !w.Directions[i].Satisfied(w.Attributes[i], w.Thresholds[i]) {
			return fmt.Errorf("%w: axis %d: attribute not %s threshold %s",
				types.ErrConstraintUnsatisfied, i, w.Directions[i], w.Thresholds[i])
		}
	}
	return nil
}

func (p PublicInputs) assign(c *circuits.SuitabilityCircuit) {
	c.Certificate = p.Certificate
	for i := 0; i < types.AttributeCount; i++ {
		c.Direction[i] = p.Directions[i].Uint64()
		c.Thresholds[i] = p.Thresholds[i]
	}
}

func (w Witness) assignment() *circuits.SuitabilityCircuit {
	c := &circuits.SuitabilityCircuit{
		Password: w.Password,
		Salt:     w.Salt,
	}
	w.Public().assign(c)
	for i := 0; i < types.AttributeCount; i++ {
		c.Attributes[i] = w.Attributes[i]
	}
	return c
}

func (p PublicInputs) assignment() *circuits.SuitabilityCircuit {
	c := &circuits.SuitabilityCircuit{}
	p.assign(c)
	return c
}
