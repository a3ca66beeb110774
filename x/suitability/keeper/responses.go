package keeper

import (
	"context"
	"fmt"
	"math/big"
	"time"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// Respond records that responder satisfies challenge challengeID, proven
// against the certificate attested by verifier verifierIndex. Every check
// runs before the first write: a rejected response leaves state untouched.
func (k Keeper) Respond(
	ctx context.Context,
	responder sdk.AccAddress,
	challengeID uint64,
	verifierIndex uint64,
	calldata types.Calldata,
) error {
	if err := sdk.VerifyAddressFormat(responder); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "responder: %s", err)
	}

	challenge, err := k.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	verifier, found := k.GetVerifier(ctx, verifierIndex)
	if !found {
		return errorsmod.Wrapf(types.ErrNotFound, "verifier %d", verifierIndex)
	}
	if !verifier.Active {
		return errorsmod.Wrapf(types.ErrUnauthorized, "verifier %d has been removed", verifierIndex)
	}
	certificate, found := k.GetCertificate(ctx, responder, verifierIndex)
	if !found {
		return errorsmod.Wrapf(types.ErrNotFound, "no certificate for %s from verifier %d", responder, verifierIndex)
	}
	if k.hasResponded(ctx, challengeID, responder) {
		return errorsmod.Wrapf(types.ErrAlreadyResponded, "%s already responded to challenge %d", responder, challengeID)
	}

	if err := calldata.ValidateBasic(); err != nil {
		return err
	}
	if err := matchPublicSignals(calldata, certificate, challenge); err != nil {
		k.rejectResponse(ctx, challengeID, responder, "public_signals")
		return err
	}

	start := time.Now()
	ok, err := k.verifier.VerifyCalldata(calldata)
	k.metrics.VerificationTime.Observe(time.Since(start).Seconds())
	if err != nil {
		k.rejectResponse(ctx, challengeID, responder, "malformed")
		return err
	}
	if !ok {
		k.rejectResponse(ctx, challengeID, responder, "invalid_proof")
		return errorsmod.Wrapf(types.ErrProofRejected, "proof for challenge %d does not verify", challengeID)
	}

	k.appendResponse(ctx, challengeID, responder)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeChallengeResponded,
			sdk.NewAttribute(types.AttributeKeyChallengeID, fmt.Sprintf("%d", challengeID)),
			sdk.NewAttribute(types.AttributeKeyResponder, responder.String()),
			sdk.NewAttribute(types.AttributeKeyVerifierIndex, fmt.Sprintf("%d", verifierIndex)),
		),
	)
	k.metrics.Responses.WithLabelValues("accepted").Inc()
	k.Logger(ctx).Info("challenge response accepted", "challenge_id", challengeID, "responder", responder.String())

	return nil
}

// rejectResponse counts and logs a rejected response. It emits no event: a
// failed mutation leaves no trace in the event stream.
func (k Keeper) rejectResponse(ctx context.Context, challengeID uint64, responder sdk.AccAddress, reason string) {
	k.metrics.Responses.WithLabelValues("rejected_" + reason).Inc()
	k.Logger(ctx).Warn("challenge response rejected",
		"challenge_id", challengeID,
		"responder", responder.String(),
		"reason", reason,
	)
}

// matchPublicSignals checks that the statement the proof claims is the one
// held in state: the attested certificate and the challenge's condition.
func matchPublicSignals(cd types.Calldata, certificate string, challenge types.Challenge) error {
	want, _ := new(big.Int).SetString(certificate, 10)
	if err := matchSignal(cd.CertificateSignal(), want, "certificate"); err != nil {
		return err
	}
	for i, s := range cd.DirectionSignals() {
		want := new(big.Int).SetUint64(challenge.Directions[i].Uint64())
		if err := matchSignal(s, want, fmt.Sprintf("direction %d", i)); err != nil {
			return err
		}
	}
	for i, s := range cd.ThresholdSignals() {
		want := new(big.Int).SetUint64(challenge.Thresholds[i])
		if err := matchSignal(s, want, fmt.Sprintf("threshold %d", i)); err != nil {
			return err
		}
	}
	return nil
}

func matchSignal(signal string, want *big.Int, name string) error {
	for _, c := range signal {
		if c < '0' || c > '9' {
			return errorsmod.Wrapf(types.ErrMalformedProof, "%s signal %q is not a decimal integer", name, signal)
		}
	}
	got, ok := new(big.Int).SetString(signal, 10)
	if !ok {
		return errorsmod.Wrapf(types.ErrMalformedProof, "%s signal %q is not a decimal integer", name, signal)
	}
	if got.Cmp(want) != 0 {
		return errorsmod.Wrapf(types.ErrProofRejected, "%s signal does not match state", name)
	}
	return nil
}

func (k Keeper) hasResponded(ctx context.Context, challengeID uint64, responder sdk.AccAddress) bool {
	return k.getStore(ctx).Has(ResponseIndexKey(challengeID, responder))
}

func (k Keeper) appendResponse(ctx context.Context, challengeID uint64, responder sdk.AccAddress) {
	store := k.getStore(ctx)
	seq := k.getUint64(ctx, ResponseCountKey(challengeID))
	store.Set(ResponseKey(challengeID, seq), responder.Bytes())
	store.Set(ResponseIndexKey(challengeID, responder), sdk.Uint64ToBigEndian(seq))
	k.setUint64(ctx, ResponseCountKey(challengeID), seq+1)
}

func (k Keeper) getResponses(ctx context.Context, challengeID uint64) []string {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), ResponsePrefixForChallenge(challengeID))
	defer iterator.Close()

	responses := []string{}
	for ; iterator.Valid(); iterator.Next() {
		responses = append(responses, sdk.AccAddress(iterator.Value()).String())
	}
	return responses
}
