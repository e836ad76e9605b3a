package types

import (
	"github.com/cosmos/cosmos-sdk/codec"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
)

// RegisterLegacyAminoCodec registers the IBC interfaces and every concrete
// light client type stored behind them.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	clienttypes.RegisterLegacyAminoCodec(cdc)
	ibctm.RegisterLegacyAminoCodec(cdc)
}

// NewCodec returns a sealed amino codec with all IBC types registered.
func NewCodec() *codec.LegacyAmino {
	cdc := codec.NewLegacyAmino()
	RegisterLegacyAminoCodec(cdc)
	cdc.Seal()
	return cdc
}
