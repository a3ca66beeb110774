package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// InitGenesis initializes the suitability module's state from a genesis
// state. With no verifiers in genesis the module owner is registered as
// verifier 0.
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidGenesis, err.Error())
	}
	if data.Owner != "" && data.Owner != k.authority {
		return errorsmod.Wrapf(types.ErrInvalidGenesis, "genesis owner %s does not match module authority %s", data.Owner, k.authority)
	}

	if err := k.SetParams(ctx, data.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	verifiers := data.Verifiers
	if len(verifiers) == 0 {
		verifiers = []types.Verifier{{Index: 0, Address: k.authority, Active: true}}
	} else if verifiers[0].Address != k.authority {
		return errorsmod.Wrap(types.ErrInvalidGenesis, "verifier 0 must be the module authority")
	}
	for _, v := range verifiers {
		if err := k.setVerifier(ctx, v); err != nil {
			return fmt.Errorf("failed to set verifier %d: %w", v.Index, err)
		}
	}
	k.setUint64(ctx, NextVerifierIndexKey, uint64(len(verifiers)))

	for _, record := range data.Certificates {
		if err := k.setCertificate(ctx, record); err != nil {
			return fmt.Errorf("failed to set certificate: %w", err)
		}
	}

	for _, challenge := range data.Challenges {
		if err := k.setChallenge(ctx, challenge); err != nil {
			return fmt.Errorf("failed to set challenge %d: %w", challenge.Id, err)
		}
		for _, r := range challenge.Responses {
			responder, err := sdk.AccAddressFromBech32(r)
			if err != nil {
				return errorsmod.Wrapf(types.ErrInvalidGenesis, "challenge %d responder: %s", challenge.Id, err)
			}
			k.appendResponse(ctx, challenge.Id, responder)
		}
	}
	k.setUint64(ctx, NextChallengeIDKey, data.NextChallengeId)

	return nil
}

// ExportGenesis returns the suitability module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	return &types.GenesisState{
		Params:          params,
		Owner:           k.authority,
		Verifiers:       k.GetAllVerifiers(ctx),
		Certificates:    k.GetAllCertificates(ctx),
		Challenges:      k.GetAllChallenges(ctx),
		NextChallengeId: k.ChallengeCount(ctx),
	}, nil
}
