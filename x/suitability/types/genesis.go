package types

import (
	"fmt"
	"math/big"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the exported module state.
type GenesisState struct {
	Params          Params              `json:"params" yaml:"params"`
	Owner           string              `json:"owner" yaml:"owner"`
	Verifiers       []Verifier          `json:"verifiers" yaml:"verifiers"`
	Certificates    []CertificateRecord `json:"certificates" yaml:"certificates"`
	Challenges      []Challenge         `json:"challenges" yaml:"challenges"`
	NextChallengeId uint64              `json:"next_challenge_id" yaml:"next_challenge_id"`
}

// DefaultGenesis returns the default genesis state. The owner is filled in by
// the chain operator; InitGenesis registers it as verifier 0.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:          DefaultParams(),
		Verifiers:       []Verifier{},
		Certificates:    []CertificateRecord{},
		Challenges:      []Challenge{},
		NextChallengeId: 0,
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	if gs.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(gs.Owner); err != nil {
			return fmt.Errorf("invalid owner address %s: %w", gs.Owner, err)
		}
	}

	// Verifier indices must be exactly 0..n-1 with unique addresses
	seenVerifierAddrs := make(map[string]bool)
	for i, v := range gs.Verifiers {
		if v.Index != uint64(i) {
			return fmt.Errorf("verifier %d: index %d is not sequential", i, v.Index)
		}
		if _, err := sdk.AccAddressFromBech32(v.Address); err != nil {
			return fmt.Errorf("verifier %d: invalid address %s: %w", i, v.Address, err)
		}
		if seenVerifierAddrs[v.Address] {
			return fmt.Errorf("verifier %d: duplicate address %s", i, v.Address)
		}
		seenVerifierAddrs[v.Address] = true
	}
	if gs.Owner != "" && len(gs.Verifiers) > 0 && gs.Verifiers[0].Address != gs.Owner {
		return fmt.Errorf("verifier 0 must be the owner %s, got %s", gs.Owner, gs.Verifiers[0].Address)
	}

	// InitGenesis registers the owner as verifier 0 when none are listed
	knownVerifiers := uint64(len(gs.Verifiers))
	if knownVerifiers == 0 {
		knownVerifiers = 1
	}

	seenCerts := make(map[string]bool)
	for i, c := range gs.Certificates {
		if _, err := sdk.AccAddressFromBech32(c.User); err != nil {
			return fmt.Errorf("certificate %d: invalid user address %s: %w", i, c.User, err)
		}
		if c.VerifierIndex >= knownVerifiers {
			return fmt.Errorf("certificate %d: unknown verifier index %d", i, c.VerifierIndex)
		}
		if _, ok := new(big.Int).SetString(c.Certificate, 10); !ok {
			return fmt.Errorf("certificate %d: certificate %q is not a decimal integer", i, c.Certificate)
		}
		key := fmt.Sprintf("%s/%d", c.User, c.VerifierIndex)
		if seenCerts[key] {
			return fmt.Errorf("certificate %d: duplicate certificate for user %s and verifier %d", i, c.User, c.VerifierIndex)
		}
		seenCerts[key] = true
	}

	for i, ch := range gs.Challenges {
		if ch.Id != uint64(i) {
			return fmt.Errorf("challenge %d: id %d is not sequential", i, ch.Id)
		}
		if _, err := sdk.AccAddressFromBech32(ch.Creator); err != nil {
			return fmt.Errorf("challenge %d: invalid creator address %s: %w", i, ch.Creator, err)
		}
		// the length limit applies at creation; params may have shrunk since
		if ch.Description == "" {
			return fmt.Errorf("challenge %d: empty description", i)
		}
		if len(ch.Directions) != AttributeCount || len(ch.Thresholds) != AttributeCount {
			return fmt.Errorf("challenge %d: expected %d directions and thresholds, got %d and %d",
				i, AttributeCount, len(ch.Directions), len(ch.Thresholds))
		}
		for j, d := range ch.Directions {
			if err := d.Validate(); err != nil {
				return fmt.Errorf("challenge %d: direction %d: %w", i, j, err)
			}
		}
		seenResponders := make(map[string]bool)
		for j, r := range ch.Responses {
			if _, err := sdk.AccAddressFromBech32(r); err != nil {
				return fmt.Errorf("challenge %d: response %d: invalid address %s: %w", i, j, r, err)
			}
			if seenResponders[r] {
				return fmt.Errorf("challenge %d: duplicate response from %s", i, r)
			}
			seenResponders[r] = true
		}
	}

	if gs.NextChallengeId != uint64(len(gs.Challenges)) {
		return fmt.Errorf("next_challenge_id %d must equal challenge count %d", gs.NextChallengeId, len(gs.Challenges))
	}

	return nil
}
