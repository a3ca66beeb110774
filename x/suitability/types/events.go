package types

// Event types for the Suitability module
const (
	EventTypeVerifierAdded       = "suitability_verifier_added"
	EventTypeVerifierRemoved     = "suitability_verifier_removed"
	EventTypeCertificateAttested = "suitability_certificate_attested"
	EventTypeChallengeCreated    = "suitability_challenge_created"
	EventTypeChallengeResponded  = "suitability_challenge_responded"
	EventTypeParamsUpdated       = "suitability_params_updated"
)

// Event attribute keys
const (
	AttributeKeyVerifier      = "verifier"
	AttributeKeyVerifierIndex = "verifier_index"
	AttributeKeyUser          = "user"
	AttributeKeyCertificate   = "certificate"
	AttributeKeyChallengeID   = "challenge_id"
	AttributeKeyCreator       = "creator"
	AttributeKeyResponder     = "responder"
	AttributeKeyReactivated   = "reactivated"
)
