package types

import (
	"fmt"
	"math/big"
	"strings"
)

// Direction selects how an attribute is compared against its threshold.
// The numeric values are the circuit and wire encoding.
type Direction uint32

const (
	// GreaterOrEqual requires attribute >= threshold.
	GreaterOrEqual Direction = 0
	// LessOrEqual requires attribute <= threshold.
	LessOrEqual Direction = 1
)

// DirectionFromUint converts a raw circuit/wire value into a Direction.
func DirectionFromUint(v uint64) (Direction, error) {
	switch v {
	case 0:
		return GreaterOrEqual, nil
	case 1:
		return LessOrEqual, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, v)
	}
}

// ParseDirection accepts the numeric encoding or a symbolic name.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "ge", ">=", "gte", "greater_or_equal":
		return GreaterOrEqual, nil
	case "1", "le", "<=", "lte", "less_or_equal":
		return LessOrEqual, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Uint64 returns the circuit/wire encoding.
func (d Direction) Uint64() uint64 {
	return uint64(d)
}

// Validate rejects values outside the two-variant enumeration.
func (d Direction) Validate() error {
	if d != GreaterOrEqual && d != LessOrEqual {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, uint32(d))
	}
	return nil
}

func (d Direction) String() string {
	switch d {
	case GreaterOrEqual:
		return "greater_or_equal"
	case LessOrEqual:
		return "less_or_equal"
	default:
		return fmt.Sprintf("direction(%d)", uint32(d))
	}
}

// Satisfied reports whether attribute compares to threshold in direction d.
func (d Direction) Satisfied(attribute, threshold *big.Int) bool {
	c := attribute.Cmp(threshold)
	if d == LessOrEqual {
		return c <= 0
	}
	return c >= 0
}
