package tendermint

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// RegisterLegacyAminoCodec registers the tendermint client and consensus
// states as concrete implementations of the 02-client interfaces.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&ClientState{}, "ibc/client/tendermint/ClientState", nil)
	cdc.RegisterConcrete(&ConsensusState{}, "ibc/client/tendermint/ConsensusState", nil)
}
