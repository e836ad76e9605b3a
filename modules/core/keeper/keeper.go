package keeper

import (
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/tendermint/tendermint/libs/log"

	clientkeeper "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/keeper"
	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectionkeeper "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/keeper"
	channelkeeper "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/keeper"
	porttypes "github.com/hyperspace-relayer/ibc-core/modules/core/05-port/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// Keeper defines each ICS keeper for IBC
type Keeper struct {
	ClientKeeper     clientkeeper.Keeper
	ConnectionKeeper connectionkeeper.Keeper
	ChannelKeeper    channelkeeper.Keeper
	Router           *porttypes.Router

	cdc *codec.LegacyAmino
}

// NewKeeper creates a new ibc Keeper
func NewKeeper(
	cdc *codec.LegacyAmino, key sdk.StoreKey,
	hostKeeper clienttypes.HostKeeper, consensusHost clienttypes.ConsensusHost,
) *Keeper {
	clientKeeper := clientkeeper.NewKeeper(cdc, key, hostKeeper, consensusHost)
	connectionKeeper := connectionkeeper.NewKeeper(cdc, key, clientKeeper)
	channelKeeper := channelkeeper.NewKeeper(cdc, key, clientKeeper, connectionKeeper)

	return &Keeper{
		cdc:              cdc,
		ClientKeeper:     clientKeeper,
		ConnectionKeeper: connectionKeeper,
		ChannelKeeper:    channelKeeper,
	}
}

// Codec returns the IBC module codec.
func (k Keeper) Codec() *codec.LegacyAmino {
	return k.cdc
}

// SetRouter sets the Router in IBC Keeper and seals it. The method panics if
// there is an existing router that's already sealed.
func (k *Keeper) SetRouter(rtr *porttypes.Router) {
	if k.Router != nil && k.Router.Sealed() {
		panic("cannot reset a sealed router")
	}

	k.Router = rtr
	k.Router.Seal()
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+exported.ModuleName)
}
