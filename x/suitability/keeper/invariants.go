package keeper

import (
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// RegisterInvariants registers all suitability module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "unique-responses",
		UniqueResponsesInvariant(k))
	ir.RegisterRoute(types.ModuleName, "challenge-ids",
		ChallengeIDsInvariant(k))
	ir.RegisterRoute(types.ModuleName, "verifier-index",
		VerifierIndexInvariant(k))
}

// AllInvariants runs all invariants of the suitability module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := UniqueResponsesInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = ChallengeIDsInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return VerifierIndexInvariant(k)(ctx)
	}
}

// UniqueResponsesInvariant checks that no challenge lists a responder twice
// and that the response index agrees with the response list.
func UniqueResponsesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		for _, challenge := range k.GetAllChallenges(ctx) {
			seen := make(map[string]bool, len(challenge.Responses))
			for _, r := range challenge.Responses {
				if seen[r] {
					broken = true
					msg += fmt.Sprintf("challenge %d: duplicate responder %s\n", challenge.Id, r)
				}
				seen[r] = true

				addr, err := sdk.AccAddressFromBech32(r)
				if err != nil || !k.hasResponded(ctx, challenge.Id, addr) {
					broken = true
					msg += fmt.Sprintf("challenge %d: responder %s missing from index\n", challenge.Id, r)
				}
			}
			if count := k.getUint64(ctx, ResponseCountKey(challenge.Id)); count != uint64(len(challenge.Responses)) {
				broken = true
				msg += fmt.Sprintf("challenge %d: response count %d, listed %d\n", challenge.Id, count, len(challenge.Responses))
			}
		}

		return sdk.FormatInvariant(
			types.ModuleName, "unique-responses",
			msg,
		), broken
	}
}

// ChallengeIDsInvariant checks that challenge ids are contiguous from 0 and
// that the id counter points just past the last one.
func ChallengeIDsInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		challenges := k.GetAllChallenges(ctx)
		for i, challenge := range challenges {
			if challenge.Id != uint64(i) {
				broken = true
				msg += fmt.Sprintf("challenge at position %d has id %d\n", i, challenge.Id)
			}
		}
		if next := k.ChallengeCount(ctx); next != uint64(len(challenges)) {
			broken = true
			msg += fmt.Sprintf("next challenge id %d, stored challenges %d\n", next, len(challenges))
		}

		return sdk.FormatInvariant(
			types.ModuleName, "challenge-ids",
			msg,
		), broken
	}
}

// VerifierIndexInvariant checks that verifier indexes are contiguous, that
// the address index resolves every entry, and that the owner is verifier 0.
func VerifierIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		verifiers := k.GetAllVerifiers(ctx)
		for i, v := range verifiers {
			if v.Index != uint64(i) {
				broken = true
				msg += fmt.Sprintf("verifier at position %d has index %d\n", i, v.Index)
			}
			addr, err := sdk.AccAddressFromBech32(v.Address)
			if err != nil {
				broken = true
				msg += fmt.Sprintf("verifier %d: invalid address %s\n", v.Index, v.Address)
				continue
			}
			if byAddr, found := k.GetVerifierByAddress(ctx, addr); !found || byAddr.Index != v.Index {
				broken = true
				msg += fmt.Sprintf("verifier %d: address index out of sync\n", v.Index)
			}
		}

		iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), VerifierByAddressPrefix)
		defer iterator.Close()
		var indexed int
		for ; iterator.Valid(); iterator.Next() {
			indexed++
		}
		if indexed != len(verifiers) {
			broken = true
			msg += fmt.Sprintf("address index has %d entries, registry has %d\n", indexed, len(verifiers))
		}

		if len(verifiers) > 0 && verifiers[0].Address != k.authority {
			broken = true
			msg += fmt.Sprintf("verifier 0 is %s, expected owner %s\n", verifiers[0].Address, k.authority)
		}
		if next := k.getUint64(ctx, NextVerifierIndexKey); next != uint64(len(verifiers)) {
			broken = true
			msg += fmt.Sprintf("next verifier index %d, registry has %d\n", next, len(verifiers))
		}

		return sdk.FormatInvariant(
			types.ModuleName, "verifier-index",
			msg,
		), broken
	}
}
