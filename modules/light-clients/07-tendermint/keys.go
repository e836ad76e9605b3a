package tendermint

import (
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

const (
	// ModuleName is the error codespace of the tendermint light client.
	ModuleName = "07-tendermint"

	// ClientType is the client type registered with 02-client.
	ClientType = exported.Tendermint
)
