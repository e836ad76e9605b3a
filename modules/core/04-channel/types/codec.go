package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// SubModuleCdc encodes the acknowledgement envelope as JSON.
var SubModuleCdc = codec.NewLegacyAmino()
