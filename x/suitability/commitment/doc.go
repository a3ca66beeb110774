// Package commitment derives user identities and attribute certificates.
//
// Every commitment is a MiMC hash over the BN254 scalar field. The first
// absorbed element is the arity of the input, so commitments of different
// shapes never share a domain. The in-circuit gadget in package circuits
// absorbs the same prefix, and the two sides agree element for element.
//
// All functions are pure and safe for concurrent use.
package commitment
