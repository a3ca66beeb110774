package types

// ProofVerifier checks suitability calldata against the published verifying
// key. Implementations return (false, nil) for a well-formed proof that does
// not verify and ErrMalformedProof for calldata that cannot be decoded.
type ProofVerifier interface {
	VerifyCalldata(calldata Calldata) (bool, error)
}
