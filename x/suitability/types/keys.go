package types

const (
	// ModuleName defines the module name
	ModuleName = "suitability"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

const (
	// AttributeCount is the number of attribute axes the deployed circuit compares.
	AttributeCount = 3

	// AttributeBits bounds every attribute and threshold to [0, 2^AttributeBits).
	AttributeBits = 64

	// ProofScalarCount is the number of scalars in the Groth16 proof group (A, B, C).
	ProofScalarCount = 8

	// PublicSignalCount is certificate + directions + thresholds.
	PublicSignalCount = 1 + 2*AttributeCount
)
