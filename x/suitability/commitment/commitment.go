package commitment

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// Modulus returns a copy of the BN254 scalar field order r.
func Modulus() *big.Int {
	return fr.Modulus()
}

// ValidateFieldElement rejects nil, negative and non-canonical (>= r) values.
func ValidateFieldElement(x *big.Int) error {
	if x == nil {
		return fmt.Errorf("%w: nil value", types.ErrInvalidFieldElement)
	}
	if x.Sign() < 0 {
		return fmt.Errorf("%w: negative value %s", types.ErrInvalidFieldElement, x)
	}
	if x.Cmp(fr.Modulus()) >= 0 {
		return fmt.Errorf("%w: value %s is not below the field order", types.ErrInvalidFieldElement, x)
	}
	return nil
}

// ValidateAttribute checks x is a field element below 2^AttributeBits.
func ValidateAttribute(x *big.Int) error {
	if err := ValidateFieldElement(x); err != nil {
		return err
	}
	if x.BitLen() > types.AttributeBits {
		return fmt.Errorf("%w: %s needs %d bits, limit is %d", types.ErrRangeOverflow, x, x.BitLen(), types.AttributeBits)
	}
	return nil
}

// Hash commits to inputs. The arity is absorbed ahead of the inputs.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty input", types.ErrInvalidFieldElement)
	}
	for i, x := range inputs {
		if err := ValidateFieldElement(x); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	h := mimc.NewMiMC()
	var e fr.Element
	e.SetUint64(uint64(len(inputs)))
	if err := absorb(h, &e); err != nil {
		return nil, err
	}
	for _, x := range inputs {
		e.SetBigInt(x)
		if err := absorb(h, &e); err != nil {
			return nil, err
		}
	}

	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

type writer interface {
	Write(p []byte) (int, error)
}

func absorb(h writer, e *fr.Element) error {
	b := e.Bytes()
	if _, err := h.Write(b[:]); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidFieldElement, err)
	}
	return nil
}

// DeriveIdentity returns Hash(password, salt).
func DeriveIdentity(password, salt *big.Int) (*big.Int, error) {
	return Hash(password, salt)
}

// DeriveCertificate returns Hash(identity, attributes...). Exactly
// types.AttributeCount attributes are required, each below 2^AttributeBits.
func DeriveCertificate(identity *big.Int, attributes []*big.Int) (*big.Int, error) {
	if len(attributes) != types.AttributeCount {
		return nil, fmt.Errorf("%w: expected %d attributes, got %d",
			types.ErrDimensionMismatch, types.AttributeCount, len(attributes))
	}
	if err := ValidateFieldElement(identity); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	for i, a := range attributes {
		if err := ValidateAttribute(a); err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
	}

	inputs := make([]*big.Int, 0, len(attributes)+1)
	inputs = append(inputs, identity)
	inputs = append(inputs, attributes...)
	return Hash(inputs...)
}

// ParseFieldElement parses a decimal or 0x-prefixed hex string.
func ParseFieldElement(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", types.ErrInvalidFieldElement)
	}

	var (
		x  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		x, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		x, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", types.ErrInvalidFieldElement, s)
	}
	if err := ValidateFieldElement(x); err != nil {
		return nil, err
	}
	return x, nil
}

// ParseAttribute parses s and checks it fits the attribute bit width.
func ParseAttribute(s string) (*big.Int, error) {
	x, err := ParseFieldElement(s)
	if err != nil {
		return nil, err
	}
	if err := ValidateAttribute(x); err != nil {
		return nil, err
	}
	return x, nil
}

// FormatFieldElement renders x in decimal.
func FormatFieldElement(x *big.Int) string {
	return x.Text(10)
}
