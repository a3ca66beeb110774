/*
Package keeper implements the challenge/response state of the suitability
module.

# Core Functionality

The keeper holds a verifier registry managed by the module owner, the
certificates verifiers attest for users, and the challenges anyone may post.
A user responds to a challenge with calldata proving that the attributes
committed in an attested certificate satisfy the challenge's thresholds.
The keeper checks that the proof's public signals match the certificate and
the challenge held in state, verifies the proof through a ProofVerifier, and
appends the responder.

# Key Types

  - Keeper: store access, registry, certificates, challenges and responses
  - SuitabilityMetrics: Prometheus counters for every mutation

# Invariants

  - unique-responses: no responder appears twice on a challenge
  - challenge-ids: challenge ids are contiguous from 0
  - verifier-index: verifier indexes are contiguous and the owner is 0
*/
package keeper
