package keeper_test

import (
	"errors"
	"strings"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/zksuit/zksuit/testutil/keeper"
	"github.com/zksuit/zksuit/x/suitability/keeper"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// stubVerifier answers VerifyCalldata with a fixed outcome and records calls.
type stubVerifier struct {
	ok    bool
	err   error
	calls int
}

func (s *stubVerifier) VerifyCalldata(types.Calldata) (bool, error) {
	s.calls++
	return s.ok, s.err
}

var (
	owner     = keepertest.SuitabilityOwner
	verifierA = keepertest.TestAddr(0x11)
	verifierB = keepertest.TestAddr(0x12)
	alice     = keepertest.TestAddr(0x21)
	bob       = keepertest.TestAddr(0x22)

	scenarioDirections = []types.Direction{types.GreaterOrEqual, types.GreaterOrEqual, types.LessOrEqual}
	scenarioThresholds = []string{"0", "70", "670"}
)

const aliceCertificate = "4242424242"

func setupKeeper(t *testing.T, v *stubVerifier) (*keeper.Keeper, sdk.Context) {
	t.Helper()
	k, ctx := keepertest.SuitabilityKeeper(t, v)
	return k, ctx
}

// setupChallenge registers verifierA (index 1), attests aliceCertificate for
// alice and creates challenge 0 with the scenario condition.
func setupChallenge(t *testing.T, k *keeper.Keeper, ctx sdk.Context) {
	t.Helper()
	idx, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	require.EqualValues(t, 1, idx)
	require.NoError(t, k.AttestCertificate(ctx, verifierA, alice, aliceCertificate))
	id, err := k.CreateChallenge(ctx, bob, "senior engineer", scenarioDirections, scenarioThresholds)
	require.NoError(t, err)
	require.EqualValues(t, 0, id)
}

// matchingCalldata carries public signals equal to the state created by
// setupChallenge. The proof group is opaque to the stub verifier.
func matchingCalldata() types.Calldata {
	return types.Calldata{
		Version:       types.CalldataVersion,
		Proof:         []string{"1", "2", "3", "4", "5", "6", "7", "8"},
		PublicSignals: []string{aliceCertificate, "0", "0", "1", "0", "70", "670"},
	}
}

func TestOwnerIsVerifierZero(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	v, found := k.GetVerifier(ctx, 0)
	require.True(t, found)
	require.Equal(t, owner.String(), v.Address)
	require.True(t, v.Active)
	require.True(t, k.IsAuthorizedVerifier(ctx, owner))
	require.False(t, k.IsAuthorizedVerifier(ctx, verifierA))
}

func TestAddVerifierIdempotent(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	first, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	second, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Len(t, k.GetAllVerifiers(ctx), 2)
	require.True(t, k.IsAuthorizedVerifier(ctx, verifierA))

	idx, err := k.AddVerifier(ctx, owner, verifierB)
	require.NoError(t, err)
	require.EqualValues(t, 2, idx)
}

func TestAddVerifierUnauthorized(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	_, err := k.AddVerifier(ctx, alice, verifierA)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.False(t, k.IsAuthorizedVerifier(ctx, verifierA))

	_, err = k.AddVerifier(ctx, owner, sdk.AccAddress{})
	require.ErrorIs(t, err, types.ErrInvalidAddress)
}

func TestRemoveAndReactivateVerifier(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	idx, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)

	require.ErrorIs(t, k.RemoveVerifier(ctx, alice, verifierA), types.ErrUnauthorized)
	require.True(t, k.IsAuthorizedVerifier(ctx, verifierA))

	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierA))
	require.False(t, k.IsAuthorizedVerifier(ctx, verifierA))
	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierA))
	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierB))

	again, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	require.Equal(t, idx, again)
	require.True(t, k.IsAuthorizedVerifier(ctx, verifierA))
	require.Len(t, k.GetAllVerifiers(ctx), 2)

	require.ErrorIs(t, k.RemoveVerifier(ctx, owner, owner), types.ErrUnauthorized)
}

func TestVerifierEvents(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})
	ctx = ctx.WithEventManager(sdk.NewEventManager())

	_, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	_, err = k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)
	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierA))

	var kinds []string
	for _, ev := range ctx.EventManager().Events() {
		kinds = append(kinds, ev.Type)
	}
	require.Equal(t, []string{types.EventTypeVerifierAdded, types.EventTypeVerifierRemoved}, kinds)
}

func TestAttestCertificate(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})
	_, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)

	_, found := k.GetCertificate(ctx, alice, 1)
	require.False(t, found)

	require.NoError(t, k.AttestCertificate(ctx, verifierA, alice, "0x10"))
	cert, found := k.GetCertificate(ctx, alice, 1)
	require.True(t, found)
	require.Equal(t, "16", cert)

	require.NoError(t, k.AttestCertificate(ctx, verifierA, alice, "17"))
	cert, _ = k.GetCertificate(ctx, alice, 1)
	require.Equal(t, "17", cert)

	_, found = k.GetCertificate(ctx, alice, 0)
	require.False(t, found)
	require.Len(t, k.GetAllCertificates(ctx), 1)
}

func TestAttestCertificateRejected(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})
	_, err := k.AddVerifier(ctx, owner, verifierA)
	require.NoError(t, err)

	require.ErrorIs(t, k.AttestCertificate(ctx, verifierB, alice, "1"), types.ErrUnauthorized)
	require.ErrorIs(t, k.AttestCertificate(ctx, verifierA, alice, "not-a-number"), types.ErrInvalidFieldElement)
	require.ErrorIs(t, k.AttestCertificate(ctx, verifierA, sdk.AccAddress{}, "1"), types.ErrInvalidAddress)

	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierA))
	require.ErrorIs(t, k.AttestCertificate(ctx, verifierA, alice, "1"), types.ErrUnauthorized)
	require.Empty(t, k.GetAllCertificates(ctx))
}

func TestCreateChallenge(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	for i := 0; i < 3; i++ {
		id, err := k.CreateChallenge(ctx, bob, "analyst", scenarioDirections, scenarioThresholds)
		require.NoError(t, err)
		require.EqualValues(t, i, id)
	}
	require.EqualValues(t, 3, k.ChallengeCount(ctx))

	c, err := k.GetChallenge(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, bob.String(), c.Creator)
	require.Equal(t, "analyst", c.Description)
	require.Equal(t, scenarioDirections, c.Directions)
	require.Equal(t, []uint64{0, 70, 670}, c.Thresholds)
	require.Empty(t, c.Responses)

	_, err = k.GetChallenge(ctx, 3)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreateChallengeValidation(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	tests := []struct {
		name        string
		creator     sdk.AccAddress
		description string
		directions  []types.Direction
		thresholds  []string
		wantErr     error
	}{
		{"empty creator", sdk.AccAddress{}, "d", scenarioDirections, scenarioThresholds, types.ErrInvalidAddress},
		{"short directions", bob, "d", scenarioDirections[:2], scenarioThresholds, types.ErrDimensionMismatch},
		{"long thresholds", bob, "d", scenarioDirections, []string{"1", "2", "3", "4"}, types.ErrDimensionMismatch},
		{"bad direction", bob, "d", []types.Direction{0, 2, 1}, scenarioThresholds, types.ErrInvalidDirection},
		{"threshold not a number", bob, "d", scenarioDirections, []string{"1", "x", "3"}, types.ErrInvalidFieldElement},
		{"threshold overflow", bob, "d", scenarioDirections, []string{"1", "18446744073709551616", "3"}, types.ErrRangeOverflow},
		{"empty description", bob, "", scenarioDirections, scenarioThresholds, types.ErrInvalidDescription},
		{"description too long", bob, strings.Repeat("x", int(types.DefaultMaxDescriptionLength)+1), scenarioDirections, scenarioThresholds, types.ErrInvalidDescription},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := k.CreateChallenge(ctx, tc.creator, tc.description, tc.directions, tc.thresholds)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
	require.Zero(t, k.ChallengeCount(ctx))
}

func TestRespond(t *testing.T) {
	v := &stubVerifier{ok: true}
	k, ctx := setupKeeper(t, v)
	setupChallenge(t, k, ctx)
	ctx = ctx.WithEventManager(sdk.NewEventManager())

	require.NoError(t, k.Respond(ctx, alice, 0, 1, matchingCalldata()))
	require.Equal(t, 1, v.calls)

	c, err := k.GetChallenge(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{alice.String()}, c.Responses)
	require.True(t, c.HasResponded(alice.String()))

	events := ctx.EventManager().Events()
	require.Len(t, events, 1)
	require.Equal(t, types.EventTypeChallengeResponded, events[0].Type)
}

func TestRespondTwiceRejected(t *testing.T) {
	v := &stubVerifier{ok: true}
	k, ctx := setupKeeper(t, v)
	setupChallenge(t, k, ctx)

	require.NoError(t, k.Respond(ctx, alice, 0, 1, matchingCalldata()))
	before, err := k.GetChallenge(ctx, 0)
	require.NoError(t, err)

	err = k.Respond(ctx, alice, 0, 1, matchingCalldata())
	require.ErrorIs(t, err, types.ErrAlreadyResponded)
	require.Equal(t, 1, v.calls, "a repeat response is rejected before verification")

	after, err := k.GetChallenge(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, before.Responses, after.Responses)
}

func TestRespondLookupFailures(t *testing.T) {
	v := &stubVerifier{ok: true}
	k, ctx := setupKeeper(t, v)
	setupChallenge(t, k, ctx)
	_, err := k.AddVerifier(ctx, owner, verifierB)
	require.NoError(t, err)

	require.ErrorIs(t, k.Respond(ctx, alice, 7, 1, matchingCalldata()), types.ErrNotFound)
	require.ErrorIs(t, k.Respond(ctx, alice, 0, 9, matchingCalldata()), types.ErrNotFound)
	require.ErrorIs(t, k.Respond(ctx, alice, 0, 2, matchingCalldata()), types.ErrNotFound)
	require.ErrorIs(t, k.Respond(ctx, bob, 0, 1, matchingCalldata()), types.ErrNotFound)
	require.ErrorIs(t, k.Respond(ctx, sdk.AccAddress{}, 0, 1, matchingCalldata()), types.ErrInvalidAddress)

	require.NoError(t, k.RemoveVerifier(ctx, owner, verifierA))
	require.ErrorIs(t, k.Respond(ctx, alice, 0, 1, matchingCalldata()), types.ErrUnauthorized)

	require.Zero(t, v.calls)
	c, err := k.GetChallenge(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, c.Responses)
}

func TestRespondPublicSignalMismatch(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cd *types.Calldata)
		wantErr error
	}{
		{"other certificate", func(cd *types.Calldata) { cd.PublicSignals[0] = "4242424243" }, types.ErrProofRejected},
		{"flipped direction", func(cd *types.Calldata) { cd.PublicSignals[3] = "0" }, types.ErrProofRejected},
		{"lower threshold", func(cd *types.Calldata) { cd.PublicSignals[5] = "69" }, types.ErrProofRejected},
		{"signed signal", func(cd *types.Calldata) { cd.PublicSignals[4] = "+0" }, types.ErrMalformedProof},
		{"hex signal", func(cd *types.Calldata) { cd.PublicSignals[6] = "0x29e" }, types.ErrMalformedProof},
		{"short proof", func(cd *types.Calldata) { cd.Proof = cd.Proof[:7] }, types.ErrMalformedProof},
		{"wrong version", func(cd *types.Calldata) { cd.Version = "v0" }, types.ErrMalformedProof},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := &stubVerifier{ok: true}
			k, ctx := setupKeeper(t, v)
			setupChallenge(t, k, ctx)

			cd := matchingCalldata()
			tc.mutate(&cd)
			require.ErrorIs(t, k.Respond(ctx, alice, 0, 1, cd), tc.wantErr)
			require.Zero(t, v.calls)

			c, err := k.GetChallenge(ctx, 0)
			require.NoError(t, err)
			require.Empty(t, c.Responses)
		})
	}
}

func TestRespondVerificationOutcomes(t *testing.T) {
	t.Run("proof does not verify", func(t *testing.T) {
		v := &stubVerifier{ok: false}
		k, ctx := setupKeeper(t, v)
		setupChallenge(t, k, ctx)
		ctx = ctx.WithEventManager(sdk.NewEventManager())

		require.ErrorIs(t, k.Respond(ctx, alice, 0, 1, matchingCalldata()), types.ErrProofRejected)
		require.Equal(t, 1, v.calls)
		require.Empty(t, ctx.EventManager().Events())

		c, err := k.GetChallenge(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, c.Responses)
	})

	t.Run("malformed proof propagates", func(t *testing.T) {
		v := &stubVerifier{err: errors.Join(types.ErrMalformedProof, errors.New("point not on curve"))}
		k, ctx := setupKeeper(t, v)
		setupChallenge(t, k, ctx)

		err := k.Respond(ctx, alice, 0, 1, matchingCalldata())
		require.ErrorIs(t, err, types.ErrMalformedProof)
		require.NotErrorIs(t, err, types.ErrProofRejected)
	})
}

func TestParams(t *testing.T) {
	k, ctx := setupKeeper(t, &stubVerifier{})

	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, types.DefaultParams(), params)

	require.ErrorIs(t, k.UpdateParams(ctx, alice, types.Params{MaxDescriptionLength: 4}), types.ErrUnauthorized)
	require.Error(t, k.UpdateParams(ctx, owner, types.Params{MaxDescriptionLength: 0}))
	require.NoError(t, k.UpdateParams(ctx, owner, types.Params{MaxDescriptionLength: 4}))

	_, err = k.CreateChallenge(ctx, bob, "12345", scenarioDirections, scenarioThresholds)
	require.ErrorIs(t, err, types.ErrInvalidDescription)
	_, err = k.CreateChallenge(ctx, bob, "1234", scenarioDirections, scenarioThresholds)
	require.NoError(t, err)
}
