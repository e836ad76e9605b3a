package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// ClientKeeper expected account IBC client keeper
type ClientKeeper interface {
	GetClientStatus(ctx sdk.Context, clientState exported.ClientState, clientID string) exported.Status
	GetClientState(ctx sdk.Context, clientID string) (exported.ClientState, bool)
	GetClientConsensusState(ctx sdk.Context, clientID string, height exported.Height) (exported.ConsensusState, bool)
	GetSelfConsensusState(ctx sdk.Context, height exported.Height) (exported.ConsensusState, error)
	GetOldestSelfHeight(ctx sdk.Context) exported.Height
	ValidateSelfClient(ctx sdk.Context, clientState exported.ClientState) error
	ClientStore(ctx sdk.Context, clientID string) sdk.KVStore
}
