package host

import (
	"encoding/binary"
	"fmt"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// KeyClientStorePrefix defines the KVStore key prefix for IBC clients
var KeyClientStorePrefix = []byte("clients")

const (
	KeyClientState            = "clientState"
	KeyConsensusStatePrefix   = "consensusStates"
	KeyNextClientSequence     = "nextClientSequence"
	KeyProcessedTimePrefix    = "processedTime"
	KeyProcessedHeightPrefix  = "processedHeight"
	KeyHistoricalInfoPrefix   = "historicalInfo"
	KeyOldestHistoricalHeight = "oldestHistoricalHeight"
	KeyIterateConsensusStates = "iterateConsensusStates"
)

// FullClientPath returns the full path of a specific client path in the format:
// "clients/{clientID}/{path}" as a string.
func FullClientPath(clientID string, path string) string {
	return fmt.Sprintf("%s/%s/%s", KeyClientStorePrefix, clientID, path)
}

// FullClientKey returns the full path of specific client path in the format:
// "clients/{clientID}/{path}" as a byte array.
func FullClientKey(clientID string, path []byte) []byte {
	return []byte(FullClientPath(clientID, string(path)))
}

// ICS02
// The following paths are the keys to the store as defined in https://github.com/cosmos/ibc/tree/master/spec/core/ics-002-client-semantics#path-space

// FullClientStatePath takes a client identifier and returns a Path under which to store a
// particular client state
func FullClientStatePath(clientID string) string {
	return FullClientPath(clientID, KeyClientState)
}

// FullClientStateKey takes a client identifier and returns a Key under which to store a
// particular client state.
func FullClientStateKey(clientID string) []byte {
	return FullClientKey(clientID, []byte(KeyClientState))
}

// ClientStateKey returns a store key under which a particular client state is stored
// in a client prefixed store
func ClientStateKey() []byte {
	return []byte(KeyClientState)
}

// FullConsensusStatePath takes a client identifier and returns a Path under which to
// store the consensus state of a client.
func FullConsensusStatePath(clientID string, height exported.Height) string {
	return FullClientPath(clientID, ConsensusStatePath(height))
}

// FullConsensusStateKey returns the store key for the consensus state of a particular
// client.
func FullConsensusStateKey(clientID string, height exported.Height) []byte {
	return []byte(FullConsensusStatePath(clientID, height))
}

// ConsensusStatePath returns the suffix store key for the consensus state at a
// particular height stored in a client prefixed store.
func ConsensusStatePath(height exported.Height) string {
	return fmt.Sprintf("%s/%s", KeyConsensusStatePrefix, height)
}

// ConsensusStateKey returns the store key for a the consensus state of a particular
// client stored in a client prefixed store.
func ConsensusStateKey(height exported.Height) []byte {
	return []byte(ConsensusStatePath(height))
}

// ProcessedTimeKey returns the key under which the host time a consensus state
// was installed at is stored in a client prefixed store.
func ProcessedTimeKey(height exported.Height) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", KeyConsensusStatePrefix, height, KeyProcessedTimePrefix))
}

// ProcessedHeightKey returns the key under which the host height a consensus
// state was installed at is stored in a client prefixed store.
func ProcessedHeightKey(height exported.Height) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", KeyConsensusStatePrefix, height, KeyProcessedHeightPrefix))
}

// HistoricalInfoKey returns the key under which the host stores its own
// header summary for the given block height.
func HistoricalInfoKey(height int64) []byte {
	return []byte(fmt.Sprintf("%s/%d", KeyHistoricalInfoPrefix, height))
}

// IterationKey returns the key under which the consensus state key for the
// given height is indexed. The height is encoded big endian so that the index
// iterates in height order.
func IterationKey(height exported.Height) []byte {
	return append([]byte(KeyIterateConsensusStates), BigEndianHeightBytes(height)...)
}

// BigEndianHeightBytes encodes the revision number followed by the revision height.
func BigEndianHeightBytes(height exported.Height) []byte {
	heightBytes := make([]byte, 16)
	binary.BigEndian.PutUint64(heightBytes, height.GetRevisionNumber())
	binary.BigEndian.PutUint64(heightBytes[8:], height.GetRevisionHeight())
	return heightBytes
}
