package keeper

import (
	"bytes"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/zksuit/zksuit/x/suitability/keeper"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// SuitabilityOwner is the module authority used by SuitabilityKeeper.
var SuitabilityOwner = sdk.AccAddress(bytes.Repeat([]byte{0x0a}, 20))

// TestAddr returns a deterministic 20-byte account address.
func TestAddr(b byte) sdk.AccAddress {
	return sdk.AccAddress(bytes.Repeat([]byte{b}, 20))
}

// SuitabilityKeeper creates a test keeper for the Suitability module backed by
// an in-memory store, with default genesis applied so that SuitabilityOwner is
// verifier 0.
func SuitabilityKeeper(t testing.TB, verifier types.ProofVerifier) (*keeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	k := keeper.NewKeeper(types.ModuleCdc, storeKey, verifier, SuitabilityOwner.String())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx
}
