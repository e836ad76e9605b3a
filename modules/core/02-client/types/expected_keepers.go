package types

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// HostKeeper expected keeper holding the host chain's own header history and
// staking parameters.
type HostKeeper interface {
	GetHistoricalInfo(ctx sdk.Context, height int64) (HistoricalInfo, bool)
	GetOldestHistoricalHeight(ctx sdk.Context) int64
	UnbondingTime(ctx sdk.Context) time.Duration
}

// ConsensusHost defines an interface which encapsulates the host chain's own
// consensus: the consensus state a counterparty client should hold of it, and
// the checks a counterparty client state of this chain must pass.
type ConsensusHost interface {
	GetSelfConsensusState(ctx sdk.Context, height exported.Height) (exported.ConsensusState, error)
	ValidateSelfClient(ctx sdk.Context, clientState exported.ClientState) error
}
