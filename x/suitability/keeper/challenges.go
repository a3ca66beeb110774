package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// CreateChallenge posts a new suitability condition and returns its id. Any
// account may create a challenge. thresholds are decimal or 0x-prefixed hex
// attribute values.
func (k Keeper) CreateChallenge(
	ctx context.Context,
	creator sdk.AccAddress,
	description string,
	directions []types.Direction,
	thresholds []string,
) (uint64, error) {
	if err := sdk.VerifyAddressFormat(creator); err != nil {
		return 0, errorsmod.Wrapf(types.ErrInvalidAddress, "creator: %s", err)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	if description == "" {
		return 0, errorsmod.Wrap(types.ErrInvalidDescription, "description must not be empty")
	}
	if uint64(len(description)) > params.MaxDescriptionLength {
		return 0, errorsmod.Wrapf(types.ErrInvalidDescription,
			"description length %d exceeds maximum %d", len(description), params.MaxDescriptionLength)
	}

	if len(directions) != types.AttributeCount || len(thresholds) != types.AttributeCount {
		return 0, errorsmod.Wrapf(types.ErrDimensionMismatch,
			"expected %d directions and thresholds, got %d and %d",
			types.AttributeCount, len(directions), len(thresholds))
	}
	for i, d := range directions {
		if err := d.Validate(); err != nil {
			return 0, errorsmod.Wrapf(err, "direction %d", i)
		}
	}
	values := make([]uint64, len(thresholds))
	for i, s := range thresholds {
		t, err := commitment.ParseAttribute(s)
		if err != nil {
			return 0, errorsmod.Wrapf(err, "threshold %d", i)
		}
		values[i] = t.Uint64()
	}

	challenge := types.Challenge{
		Id:          k.getUint64(ctx, NextChallengeIDKey),
		Creator:     creator.String(),
		Description: description,
		Directions:  append([]types.Direction(nil), directions...),
		Thresholds:  values,
	}
	if err := k.setChallenge(ctx, challenge); err != nil {
		return 0, err
	}
	k.setUint64(ctx, NextChallengeIDKey, challenge.Id+1)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeChallengeCreated,
			sdk.NewAttribute(types.AttributeKeyChallengeID, fmt.Sprintf("%d", challenge.Id)),
			sdk.NewAttribute(types.AttributeKeyCreator, challenge.Creator),
		),
	)
	k.metrics.ChallengesCreated.Inc()
	k.Logger(ctx).Info("challenge created", "challenge_id", challenge.Id, "creator", challenge.Creator)

	return challenge.Id, nil
}

// GetChallenge returns the challenge with its responses in response order.
func (k Keeper) GetChallenge(ctx context.Context, id uint64) (types.Challenge, error) {
	bz := k.getStore(ctx).Get(ChallengeKey(id))
	if bz == nil {
		return types.Challenge{}, errorsmod.Wrapf(types.ErrNotFound, "challenge %d", id)
	}
	var challenge types.Challenge
	k.cdc.MustUnmarshal(bz, &challenge)
	challenge.Responses = k.getResponses(ctx, id)
	return challenge, nil
}

// GetAllChallenges returns every challenge in id order.
func (k Keeper) GetAllChallenges(ctx context.Context) []types.Challenge {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), ChallengeKeyPrefix)
	defer iterator.Close()

	challenges := []types.Challenge{}
	for ; iterator.Valid(); iterator.Next() {
		var challenge types.Challenge
		k.cdc.MustUnmarshal(iterator.Value(), &challenge)
		challenge.Responses = k.getResponses(ctx, challenge.Id)
		challenges = append(challenges, challenge)
	}
	return challenges
}

// ChallengeCount returns the number of challenges created so far, which is
// also the next challenge id.
func (k Keeper) ChallengeCount(ctx context.Context) uint64 {
	return k.getUint64(ctx, NextChallengeIDKey)
}

// setChallenge stores the immutable part of a challenge. Responses live
// under their own prefix.
func (k Keeper) setChallenge(ctx context.Context, challenge types.Challenge) error {
	challenge.Responses = nil
	bz, err := k.cdc.Marshal(&challenge)
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}
	k.getStore(ctx).Set(ChallengeKey(challenge.Id), bz)
	return nil
}
