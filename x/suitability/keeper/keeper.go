package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// Keeper of the suitability store
type Keeper struct {
	storeKey  storetypes.StoreKey
	cdc       *codec.LegacyAmino
	verifier  types.ProofVerifier
	authority string

	metrics *SuitabilityMetrics
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new suitability Keeper instance. authority is the
// module owner: it manages the verifier registry and is verifier 0.
func NewKeeper(
	cdc *codec.LegacyAmino,
	key storetypes.StoreKey,
	verifier types.ProofVerifier,
	authority string,
) *Keeper {
	if _, err := sdk.AccAddressFromBech32(authority); err != nil {
		panic(fmt.Errorf("invalid suitability authority address: %w", err))
	}
	return &Keeper{
		storeKey:  key,
		cdc:       cdc,
		verifier:  verifier,
		authority: authority,
		metrics:   NewSuitabilityMetrics(),
	}
}

// GetAuthority returns the module owner address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// getStore returns the KVStore for the suitability module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}

	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

func (k Keeper) isOwner(addr sdk.AccAddress) bool {
	return addr.String() == k.authority
}

func (k Keeper) getUint64(ctx context.Context, key []byte) uint64 {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (k Keeper) setUint64(ctx context.Context, key []byte, v uint64) {
	k.getStore(ctx).Set(key, sdk.Uint64ToBigEndian(v))
}

// GetParams returns the module parameters.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz := k.getStore(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}
	var params types.Params
	if err := k.cdc.Unmarshal(bz, &params); err != nil {
		return types.Params{}, fmt.Errorf("failed to decode params: %w", err)
	}
	return params, nil
}

// SetParams stores the module parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := k.cdc.Marshal(&params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	k.getStore(ctx).Set(ParamsKey, bz)
	return nil
}

// UpdateParams replaces the parameters. Only the owner may call it.
func (k Keeper) UpdateParams(ctx context.Context, sender sdk.AccAddress, params types.Params) error {
	if !k.isOwner(sender) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the module owner", sender)
	}
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeParamsUpdated,
			sdk.NewAttribute("max_description_length", fmt.Sprintf("%d", params.MaxDescriptionLength)),
		),
	)
	return nil
}
