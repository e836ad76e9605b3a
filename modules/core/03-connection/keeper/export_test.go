package keeper

/*
	This file is to allow for unexported functions and fields to be accessible to the testing package.
*/

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// GetBlockDelay is a wrapper around getBlockDelay to allow the function to be directly called in tests.
func (k Keeper) GetBlockDelay(ctx sdk.Context, connection exported.ConnectionI) uint64 {
	return k.getBlockDelay(ctx, connection)
}
