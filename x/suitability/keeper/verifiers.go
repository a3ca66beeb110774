package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// AddVerifier registers verifier in the registry and returns its index. Only
// the owner may add verifiers. Adding an active verifier is a no-op; adding a
// removed one reactivates its original index.
func (k Keeper) AddVerifier(ctx context.Context, sender, verifier sdk.AccAddress) (uint64, error) {
	if !k.isOwner(sender) {
		return 0, errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the module owner", sender)
	}
	if err := sdk.VerifyAddressFormat(verifier); err != nil {
		return 0, errorsmod.Wrapf(types.ErrInvalidAddress, "verifier: %s", err)
	}

	if existing, found := k.GetVerifierByAddress(ctx, verifier); found {
		if existing.Active {
			return existing.Index, nil
		}
		existing.Active = true
		if err := k.setVerifier(ctx, existing); err != nil {
			return 0, err
		}
		k.emitVerifierAdded(ctx, existing, true)
		return existing.Index, nil
	}

	entry := types.Verifier{
		Index:   k.getUint64(ctx, NextVerifierIndexKey),
		Address: verifier.String(),
		Active:  true,
	}
	if err := k.setVerifier(ctx, entry); err != nil {
		return 0, err
	}
	k.setUint64(ctx, NextVerifierIndexKey, entry.Index+1)
	k.emitVerifierAdded(ctx, entry, false)

	return entry.Index, nil
}

func (k Keeper) emitVerifierAdded(ctx context.Context, v types.Verifier, reactivated bool) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeVerifierAdded,
			sdk.NewAttribute(types.AttributeKeyVerifier, v.Address),
			sdk.NewAttribute(types.AttributeKeyVerifierIndex, fmt.Sprintf("%d", v.Index)),
			sdk.NewAttribute(types.AttributeKeyReactivated, fmt.Sprintf("%t", reactivated)),
		),
	)
	k.metrics.VerifierChanges.WithLabelValues("added").Inc()
	k.Logger(ctx).Info("verifier registered", "verifier", v.Address, "index", v.Index, "reactivated", reactivated)
}

// RemoveVerifier deactivates verifier. Only the owner may remove verifiers,
// and the owner itself cannot be removed. Removing an unknown or inactive
// verifier is a no-op. The index stays reserved and attested certificates are
// kept, but they cannot back new responses until the verifier is re-added.
func (k Keeper) RemoveVerifier(ctx context.Context, sender, verifier sdk.AccAddress) error {
	if !k.isOwner(sender) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the module owner", sender)
	}
	if k.isOwner(verifier) {
		return errorsmod.Wrap(types.ErrUnauthorized, "the module owner cannot be removed from the registry")
	}

	existing, found := k.GetVerifierByAddress(ctx, verifier)
	if !found || !existing.Active {
		return nil
	}
	existing.Active = false
	if err := k.setVerifier(ctx, existing); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeVerifierRemoved,
			sdk.NewAttribute(types.AttributeKeyVerifier, existing.Address),
			sdk.NewAttribute(types.AttributeKeyVerifierIndex, fmt.Sprintf("%d", existing.Index)),
		),
	)
	k.metrics.VerifierChanges.WithLabelValues("removed").Inc()
	k.Logger(ctx).Info("verifier removed", "verifier", existing.Address, "index", existing.Index)

	return nil
}

// IsAuthorizedVerifier reports whether addr is an active verifier.
func (k Keeper) IsAuthorizedVerifier(ctx context.Context, addr sdk.AccAddress) bool {
	v, found := k.GetVerifierByAddress(ctx, addr)
	return found && v.Active
}

// GetVerifier returns the registry entry at index.
func (k Keeper) GetVerifier(ctx context.Context, index uint64) (types.Verifier, bool) {
	bz := k.getStore(ctx).Get(VerifierKey(index))
	if bz == nil {
		return types.Verifier{}, false
	}
	var v types.Verifier
	k.cdc.MustUnmarshal(bz, &v)
	return v, true
}

// GetVerifierByAddress returns the registry entry for addr.
func (k Keeper) GetVerifierByAddress(ctx context.Context, addr sdk.AccAddress) (types.Verifier, bool) {
	bz := k.getStore(ctx).Get(VerifierByAddressKey(addr))
	if bz == nil {
		return types.Verifier{}, false
	}
	return k.GetVerifier(ctx, sdk.BigEndianToUint64(bz))
}

// GetAllVerifiers returns the registry, active and removed, in index order.
func (k Keeper) GetAllVerifiers(ctx context.Context) []types.Verifier {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), VerifierKeyPrefix)
	defer iterator.Close()

	verifiers := []types.Verifier{}
	for ; iterator.Valid(); iterator.Next() {
		var v types.Verifier
		k.cdc.MustUnmarshal(iterator.Value(), &v)
		verifiers = append(verifiers, v)
	}
	return verifiers
}

func (k Keeper) setVerifier(ctx context.Context, v types.Verifier) error {
	addr, err := sdk.AccAddressFromBech32(v.Address)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "verifier %d: %s", v.Index, err)
	}
	bz, err := k.cdc.Marshal(&v)
	if err != nil {
		return fmt.Errorf("failed to encode verifier: %w", err)
	}
	store := k.getStore(ctx)
	store.Set(VerifierKey(v.Index), bz)
	store.Set(VerifierByAddressKey(addr), sdk.Uint64ToBigEndian(v.Index))
	return nil
}
