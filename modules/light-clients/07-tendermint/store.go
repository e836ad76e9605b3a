package tendermint

import (
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// The client store is written by 02-client only. The functions below read
// the consensus states and the metadata 02-client keeps next to them.

// GetConsensusState retrieves the consensus state from the client prefixed
// store. An error is returned if the consensus state does not exist or it
// is not a tendermint consensus state.
func GetConsensusState(store sdk.KVStore, cdc *codec.LegacyAmino, height exported.Height) (*ConsensusState, error) {
	bz := store.Get(host.ConsensusStateKey(height))
	if bz == nil {
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrConsensusStateNotFound,
			"consensus state does not exist for height %s", height,
		)
	}
	return unmarshalConsensusState(cdc, bz)
}

func unmarshalConsensusState(cdc *codec.LegacyAmino, bz []byte) (*ConsensusState, error) {
	consensusStateI, err := clienttypes.UnmarshalConsensusState(cdc, bz)
	if err != nil {
		return nil, err
	}

	consensusState, ok := consensusStateI.(*ConsensusState)
	if !ok {
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrInvalidConsensus,
			"invalid consensus type %T, expected %T", consensusStateI, &ConsensusState{},
		)
	}
	return consensusState, nil
}

// GetProcessedTime gets the time (in nanoseconds) at which this chain received
// and processed a tendermint header. This is used to validate that a received
// packet has passed the time delay period.
func GetProcessedTime(clientStore sdk.KVStore, height exported.Height) (uint64, bool) {
	bz := clientStore.Get(host.ProcessedTimeKey(height))
	if len(bz) == 0 {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

// GetProcessedHeight gets the height at which this chain received and processed
// a tendermint header. This is used to validate that a received packet has
// passed the block delay period.
func GetProcessedHeight(clientStore sdk.KVStore, height exported.Height) (exported.Height, bool) {
	bz := clientStore.Get(host.ProcessedHeightKey(height))
	if len(bz) == 0 {
		return nil, false
	}
	processedHeight, err := clienttypes.ParseHeight(string(bz))
	if err != nil {
		return nil, false
	}
	return processedHeight, true
}

// GetNextConsensusState returns the lowest consensus state that is larger than the given height.
// The Iterator returns a storetypes.Iterator which iterates from start (inclusive) to end (exclusive).
// If the starting height exists in store, we need to call iterator.Next() to get the next consenus state.
// Otherwise, the iterator is already at the next consensus state so we can call iterator.Value() immediately.
func GetNextConsensusState(clientStore sdk.KVStore, cdc *codec.LegacyAmino, height exported.Height) (*ConsensusState, bool) {
	iterateStore := prefix.NewStore(clientStore, []byte(host.KeyIterateConsensusStates))
	iterator := iterateStore.Iterator(host.BigEndianHeightBytes(height.Increment()), nil)
	defer iterator.Close()

	if !iterator.Valid() {
		return nil, false
	}

	return getConsensusStateAtKey(clientStore, cdc, iterator.Value())
}

// GetPreviousConsensusState returns the highest consensus state that is lower than the given height.
// The Iterator returns a storetypes.Iterator which iterates from the end (exclusive) to start (inclusive).
// Thus to get previous consensus state we call iterator.Value() immediately.
func GetPreviousConsensusState(clientStore sdk.KVStore, cdc *codec.LegacyAmino, height exported.Height) (*ConsensusState, bool) {
	iterateStore := prefix.NewStore(clientStore, []byte(host.KeyIterateConsensusStates))
	iterator := iterateStore.ReverseIterator(nil, host.BigEndianHeightBytes(height))
	defer iterator.Close()

	if !iterator.Valid() {
		return nil, false
	}

	return getConsensusStateAtKey(clientStore, cdc, iterator.Value())
}

func getConsensusStateAtKey(clientStore sdk.KVStore, cdc *codec.LegacyAmino, key []byte) (*ConsensusState, bool) {
	bz := clientStore.Get(key)
	if bz == nil {
		return nil, false
	}
	consensusState, err := unmarshalConsensusState(cdc, bz)
	if err != nil {
		return nil, false
	}
	return consensusState, true
}
