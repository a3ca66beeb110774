package circuits

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/math/cmp"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// CircuitName identifies the compiled constraint system in artifact metadata.
const CircuitName = "suitability-v1"

// SuitabilityCircuit proves that a committed attribute vector satisfies a
// public threshold condition.
//
// Circuit Statement: "I know (password, salt, attributes) such that
// MiMC(2, MiMC(2, password, salt), attributes...) = Certificate, hashing with
// the arity prefix on both levels, and every attribute compares to its
// threshold in the declared direction."
//
// Direction[i] = 0 asserts Attributes[i] >= Thresholds[i]; 1 asserts <=.
// Public input order is fixed: Certificate, Direction, Thresholds.
type SuitabilityCircuit struct {
	// Public inputs
	Certificate frontend.Variable                       `gnark:",public"`
	Direction   [types.AttributeCount]frontend.Variable `gnark:",public"`
	Thresholds  [types.AttributeCount]frontend.Variable `gnark:",public"`

	// Private inputs
	Password   frontend.Variable                       `gnark:",secret"`
	Salt       frontend.Variable                       `gnark:",secret"`
	Attributes [types.AttributeCount]frontend.Variable `gnark:",secret"`
}

// Define implements the gnark Circuit interface.
func (circuit *SuitabilityCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return fmt.Errorf("failed to initialize MiMC hasher: %w", err)
	}

	// identity = MiMC(2, password, salt)
	h.Reset()
	h.Write(2, circuit.Password, circuit.Salt)
	identity := h.Sum()

	// certificate = MiMC(N+1, identity, attributes...)
	h.Reset()
	h.Write(types.AttributeCount+1, identity)
	for i := 0; i < types.AttributeCount; i++ {
		h.Write(circuit.Attributes[i])
	}
	api.AssertIsEqual(h.Sum(), circuit.Certificate)

	// Both operands are decomposed into AttributeBits bits, so their
	// difference is bounded by 2^AttributeBits and cannot wrap the field.
	bound := new(big.Int).Lsh(big.NewInt(1), types.AttributeBits)
	comparator := cmp.NewBoundedComparator(api, bound, false)

	for i := 0; i < types.AttributeCount; i++ {
		api.AssertIsBoolean(circuit.Direction[i])
		api.ToBinary(circuit.Attributes[i], types.AttributeBits)
		api.ToBinary(circuit.Thresholds[i], types.AttributeBits)

		// direction 1: attribute <= threshold, direction 0: threshold <= attribute
		lo := api.Select(circuit.Direction[i], circuit.Attributes[i], circuit.Thresholds[i])
		hi := api.Select(circuit.Direction[i], circuit.Thresholds[i], circuit.Attributes[i])
		comparator.AssertIsLessEq(lo, hi)
	}

	return nil
}

// GetConstraintCount returns the estimated number of R1CS constraints.
func (circuit *SuitabilityCircuit) GetConstraintCount() int {
	// - MiMC: 8 absorbed elements × ~330 constraints = 2,640
	// - Bit decompositions: 6 × 65 = 390
	// - Bounded comparisons and selects: 3 × ~70 = 210
	return 3300
}

// GetPublicInputCount returns the number of public inputs for witness construction.
func (circuit *SuitabilityCircuit) GetPublicInputCount() int {
	return types.PublicSignalCount
}

// GetCircuitName returns a human-readable circuit identifier.
func (circuit *SuitabilityCircuit) GetCircuitName() string {
	return CircuitName
}
