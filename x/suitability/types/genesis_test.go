package types

import (
	"strings"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func testAddr(b byte) string {
	return sdk.AccAddress([]byte(strings.Repeat(string([]byte{b}), 20))).String()
}

func validGenesis() GenesisState {
	owner := testAddr(1)
	return GenesisState{
		Params: DefaultParams(),
		Owner:  owner,
		Verifiers: []Verifier{
			{Index: 0, Address: owner, Active: true},
			{Index: 1, Address: testAddr(2), Active: false},
		},
		Certificates: []CertificateRecord{
			{User: testAddr(3), VerifierIndex: 1, Certificate: "12345"},
		},
		Challenges: []Challenge{
			{
				Id:          0,
				Creator:     testAddr(4),
				Description: "adult with good credit",
				Directions:  []Direction{GreaterOrEqual, GreaterOrEqual, LessOrEqual},
				Thresholds:  []uint64{0, 70, 670},
				Responses:   []string{testAddr(3)},
			},
		},
		NextChallengeId: 1,
	}
}

func TestDefaultGenesis(t *testing.T) {
	genesis := DefaultGenesis()
	require.NotNil(t, genesis)
	require.NoError(t, genesis.Validate())
	require.Equal(t, DefaultMaxDescriptionLength, genesis.Params.MaxDescriptionLength)
	require.Zero(t, genesis.NextChallengeId)
}

func TestGenesisStateValidate(t *testing.T) {
	gs := validGenesis()
	require.NoError(t, gs.Validate())

	tests := []struct {
		name    string
		mutate  func(*GenesisState)
		wantErr string
	}{
		{"zero max description", func(gs *GenesisState) { gs.Params.MaxDescriptionLength = 0 }, "invalid params"},
		{"bad owner", func(gs *GenesisState) { gs.Owner = "nope" }, "invalid owner"},
		{"gap in verifier index", func(gs *GenesisState) { gs.Verifiers[1].Index = 5 }, "not sequential"},
		{"duplicate verifier", func(gs *GenesisState) { gs.Verifiers[1].Address = gs.Owner }, "duplicate address"},
		{"owner not verifier 0", func(gs *GenesisState) { gs.Owner = testAddr(9) }, "verifier 0 must be the owner"},
		{"unknown certificate verifier", func(gs *GenesisState) { gs.Certificates[0].VerifierIndex = 4 }, "unknown verifier index"},
		{"non decimal certificate", func(gs *GenesisState) { gs.Certificates[0].Certificate = "0xabc" }, "not a decimal integer"},
		{"duplicate certificate", func(gs *GenesisState) {
			gs.Certificates = append(gs.Certificates, gs.Certificates[0])
		}, "duplicate certificate"},
		{"challenge id gap", func(gs *GenesisState) { gs.Challenges[0].Id = 3 }, "not sequential"},
		{"empty description", func(gs *GenesisState) { gs.Challenges[0].Description = "" }, "empty description"},
		{"dimension mismatch", func(gs *GenesisState) { gs.Challenges[0].Thresholds = []uint64{1} }, "expected 3"},
		{"bad direction", func(gs *GenesisState) { gs.Challenges[0].Directions[1] = Direction(4) }, "direction 1"},
		{"duplicate response", func(gs *GenesisState) {
			gs.Challenges[0].Responses = append(gs.Challenges[0].Responses, gs.Challenges[0].Responses[0])
		}, "duplicate response"},
		{"next id mismatch", func(gs *GenesisState) { gs.NextChallengeId = 7 }, "next_challenge_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := validGenesis()
			tt.mutate(&gs)
			err := gs.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChallengeHasResponded(t *testing.T) {
	ch := validGenesis().Challenges[0]
	require.True(t, ch.HasResponded(testAddr(3)))
	require.False(t, ch.HasResponded(testAddr(4)))
}

func TestGenesisStateValidateEdgeCases(t *testing.T) {
	// owner-only registry is implied when no verifiers are listed
	gs := validGenesis()
	gs.Verifiers = nil
	gs.Certificates[0].VerifierIndex = 0
	require.NoError(t, gs.Validate())

	gs.Certificates[0].VerifierIndex = 1
	require.ErrorContains(t, gs.Validate(), "unknown verifier index")

	// descriptions created under a larger limit stay valid
	gs = validGenesis()
	gs.Params.MaxDescriptionLength = 4
	require.NoError(t, gs.Validate())
}
