package types

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// Suitability module sentinel errors

var (
	// Field and statement errors
	ErrInvalidFieldElement   = sdkerrors.Register(ModuleName, 2, "invalid field element")
	ErrRangeOverflow         = sdkerrors.Register(ModuleName, 3, "value exceeds attribute bit width")
	ErrConstraintUnsatisfied = sdkerrors.Register(ModuleName, 4, "circuit constraint unsatisfied")
	ErrInvalidDirection      = sdkerrors.Register(ModuleName, 5, "invalid comparison direction")
	ErrDimensionMismatch     = sdkerrors.Register(ModuleName, 6, "vector dimension mismatch")

	// Proving infrastructure errors
	ErrProvingIO           = sdkerrors.Register(ModuleName, 10, "proving backend I/O failure")
	ErrArtifactUnavailable = sdkerrors.Register(ModuleName, 11, "circuit artifact unavailable")
	ErrBackendClosed       = sdkerrors.Register(ModuleName, 12, "proving backend closed")

	// Verification errors
	ErrMalformedProof = sdkerrors.Register(ModuleName, 20, "malformed proof")
	ErrProofRejected  = sdkerrors.Register(ModuleName, 21, "proof rejected")

	// State model errors
	ErrUnauthorized       = sdkerrors.Register(ModuleName, 30, "unauthorized")
	ErrNotFound           = sdkerrors.Register(ModuleName, 31, "not found")
	ErrAlreadyResponded   = sdkerrors.Register(ModuleName, 32, "already responded to challenge")
	ErrInvalidAddress     = sdkerrors.Register(ModuleName, 33, "invalid address")
	ErrInvalidDescription = sdkerrors.Register(ModuleName, 34, "invalid challenge description")
	ErrInvalidGenesis     = sdkerrors.Register(ModuleName, 35, "invalid genesis state")
)

// ErrorWithRecovery wraps an error with recovery suggestions
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithRecovery) Unwrap() error {
	return e.Err
}

// RecoverySuggestions provides actionable recovery steps for each error type
var RecoverySuggestions = map[error]string{
	ErrInvalidFieldElement:   "Values must be decimal or 0x-hex integers in [0, r) where r is the BN254 scalar field order.",
	ErrRangeOverflow:         "Attributes and thresholds must fit in 64 bits. Rescale the attribute before certification.",
	ErrConstraintUnsatisfied: "The statement is false for these inputs. Check the certificate derivation and that every attribute satisfies its threshold. Retrying will not help.",
	ErrInvalidDirection:      "Directions are 0 (greater-or-equal) or 1 (less-or-equal).",
	ErrDimensionMismatch:     "Direction and threshold vectors must both have exactly one entry per attribute axis.",

	ErrProvingIO:           "Transient proving failure. Retry the same inputs later.",
	ErrArtifactUnavailable: "Circuit artifacts missing. Run the setup command or point artifacts.dir at a published artifact directory.",
	ErrBackendClosed:       "The proving backend was shut down. Open a new backend.",

	ErrMalformedProof: "Calldata could not be parsed. Regenerate the proof and submit the 8 proof scalars and 7 public signals unchanged.",
	ErrProofRejected:  "The proof does not verify against the certificate and challenge on record. Regenerate it for this challenge.",

	ErrUnauthorized:       "Only the module owner manages verifiers and only active verifiers attest certificates.",
	ErrNotFound:           "Check the challenge id, verifier index and that the verifier attested a certificate for you.",
	ErrAlreadyResponded:   "Each account may respond to a challenge once.",
	ErrInvalidAddress:     "Addresses must be valid bech32 account addresses.",
	ErrInvalidDescription: "Descriptions must be non-empty and within the configured maximum length.",
}

// WrapWithRecovery wraps an error with recovery suggestion
func WrapWithRecovery(err error, msg string, args ...interface{}) error {
	wrapped := sdkerrors.Wrapf(err, msg, args...)

	if suggestion, ok := RecoverySuggestions[err]; ok {
		return &ErrorWithRecovery{
			Err:      wrapped,
			Recovery: suggestion,
		}
	}

	return wrapped
}

// GetRecoverySuggestion returns the recovery suggestion for an error. A
// suggestion attached by WrapWithRecovery wins over the sentinel lookup.
func GetRecoverySuggestion(err error) (string, bool) {
	var withRecovery *ErrorWithRecovery
	if errors.As(err, &withRecovery) {
		return withRecovery.Recovery, true
	}
	for sentinel, suggestion := range RecoverySuggestions {
		if errors.Is(err, sentinel) {
			return suggestion, true
		}
	}

	return "", false
}

// IsRetryable reports whether err is an infrastructure failure that may succeed
// when retried with the same inputs. Statement and authorization failures are
// never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProvingIO) || errors.Is(err, ErrArtifactUnavailable)
}
