package keeper

import (
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// Keeper represents a type that grants read and write permissions to any client
// state information
type Keeper struct {
	storeKey      sdk.StoreKey
	cdc           *codec.LegacyAmino
	hostKeeper    types.HostKeeper
	consensusHost types.ConsensusHost
}

// NewKeeper creates a new NewKeeper instance
func NewKeeper(cdc *codec.LegacyAmino, key sdk.StoreKey, hostKeeper types.HostKeeper, consensusHost types.ConsensusHost) Keeper {
	return Keeper{
		storeKey:      key,
		cdc:           cdc,
		hostKeeper:    hostKeeper,
		consensusHost: consensusHost,
	}
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+exported.ModuleName+"/"+types.SubModuleName)
}

// GenerateClientIdentifier returns the next client identifier.
func (k Keeper) GenerateClientIdentifier(ctx sdk.Context, clientType string) string {
	nextClientSeq := k.GetNextClientSequence(ctx)
	clientID := types.FormatClientIdentifier(clientType, nextClientSeq)

	nextClientSeq++
	k.SetNextClientSequence(ctx, nextClientSeq)
	return clientID
}

// GetClientState gets a particular client from the store
func (k Keeper) GetClientState(ctx sdk.Context, clientID string) (exported.ClientState, bool) {
	store := k.ClientStore(ctx, clientID)
	bz := store.Get(host.ClientStateKey())
	if bz == nil {
		return nil, false
	}

	clientState := types.MustUnmarshalClientState(k.cdc, bz)
	return clientState, true
}

// SetClientState sets a particular Client to the store
func (k Keeper) SetClientState(ctx sdk.Context, clientID string, clientState exported.ClientState) {
	store := k.ClientStore(ctx, clientID)
	store.Set(host.ClientStateKey(), types.MustMarshalClientState(k.cdc, clientState))
}

// GetClientConsensusState gets the stored consensus state from a client at a given height.
func (k Keeper) GetClientConsensusState(ctx sdk.Context, clientID string, height exported.Height) (exported.ConsensusState, bool) {
	store := k.ClientStore(ctx, clientID)
	bz := store.Get(host.ConsensusStateKey(height))
	if bz == nil {
		return nil, false
	}

	consensusState := types.MustUnmarshalConsensusState(k.cdc, bz)
	return consensusState, true
}

// SetClientConsensusState sets a ConsensusState to a particular client at the given
// height
func (k Keeper) SetClientConsensusState(ctx sdk.Context, clientID string, height exported.Height, consensusState exported.ConsensusState) {
	store := k.ClientStore(ctx, clientID)
	store.Set(host.ConsensusStateKey(height), types.MustMarshalConsensusState(k.cdc, consensusState))
}

// GetLatestClientConsensusState gets the latest ConsensusState stored for a given client
func (k Keeper) GetLatestClientConsensusState(ctx sdk.Context, clientID string) (exported.ConsensusState, bool) {
	clientState, ok := k.GetClientState(ctx, clientID)
	if !ok {
		return nil, false
	}
	return k.GetClientConsensusState(ctx, clientID, clientState.GetLatestHeight())
}

// setConsensusMetadata records when, in host time and host height, the
// consensus state at the given height was installed, and indexes it for
// ordered iteration. Packet delay periods are measured from these values.
func (k Keeper) setConsensusMetadata(ctx sdk.Context, clientID string, height exported.Height) {
	store := k.ClientStore(ctx, clientID)
	store.Set(host.ProcessedTimeKey(height), sdk.Uint64ToBigEndian(uint64(ctx.BlockTime().UnixNano())))
	store.Set(host.ProcessedHeightKey(height), []byte(types.GetSelfHeight(ctx).String()))
	store.Set(host.IterationKey(height), host.ConsensusStateKey(height))
}

// GetNextClientSequence gets the next client sequence from the store.
// An unset sequence counts from zero.
func (k Keeper) GetNextClientSequence(ctx sdk.Context) uint64 {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get([]byte(types.KeyNextClientSequence))
	if bz == nil {
		return 0
	}

	return sdk.BigEndianToUint64(bz)
}

// SetNextClientSequence sets the next client sequence to the store.
func (k Keeper) SetNextClientSequence(ctx sdk.Context, sequence uint64) {
	store := ctx.KVStore(k.storeKey)
	bz := sdk.Uint64ToBigEndian(sequence)
	store.Set([]byte(types.KeyNextClientSequence), bz)
}

// IterateClientStates provides an iterator over all stored light client State
// objects. For each State object, cb will be called. If the cb returns true,
// the iterator will close and stop.
func (k Keeper) IterateClientStates(ctx sdk.Context, cb func(clientID string, cs exported.ClientState) bool) {
	store := ctx.KVStore(k.storeKey)
	iterator := sdk.KVStorePrefixIterator(store, host.KeyClientStorePrefix)

	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		keySplit := strings.Split(string(iterator.Key()), "/")
		// consensus key is in the format "clients/<clientID>/consensusStates/<height>"
		if keySplit[len(keySplit)-1] != host.KeyClientState {
			continue
		}
		clientState := types.MustUnmarshalClientState(k.cdc, iterator.Value())

		// key is ibc/{clientid}/clientState
		// Thus, keySplit[1] is clientID
		if cb(keySplit[1], clientState) {
			break
		}
	}
}

// GetAllClients returns all stored light client State objects.
func (k Keeper) GetAllClients(ctx sdk.Context) (states []types.IdentifiedClientState) {
	k.IterateClientStates(ctx, func(clientID string, cs exported.ClientState) bool {
		states = append(states, types.NewIdentifiedClientState(clientID, cs))
		return false
	})
	return states
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate
// namespace without being able to read/write other client's data
func (k Keeper) ClientStore(ctx sdk.Context, clientID string) sdk.KVStore {
	clientPrefix := []byte(fmt.Sprintf("%s/%s/", host.KeyClientStorePrefix, clientID))
	return prefix.NewStore(ctx.KVStore(k.storeKey), clientPrefix)
}

// GetClientStatus returns the status for a given clientState. If the client type is not in the allowed
// clients param field, Unauthorized is returned, otherwise the client state status is returned.
func (k Keeper) GetClientStatus(ctx sdk.Context, clientState exported.ClientState, clientID string) exported.Status {
	if clientState == nil {
		return exported.Unknown
	}
	return clientState.Status(ctx, k.ClientStore(ctx, clientID), k.cdc)
}

// GetSelfConsensusState introspects the (self) past historical info at a given height
// and returns the expected consensus state at that height.
func (k Keeper) GetSelfConsensusState(ctx sdk.Context, height exported.Height) (exported.ConsensusState, error) {
	return k.consensusHost.GetSelfConsensusState(ctx, height)
}

// ValidateSelfClient validates the client parameters for a client of the running chain.
// This function is only used to validate the client state the counterparty stores for this chain.
func (k Keeper) ValidateSelfClient(ctx sdk.Context, clientState exported.ClientState) error {
	return k.consensusHost.ValidateSelfClient(ctx, clientState)
}

// GetOldestSelfHeight returns the oldest height of this chain for which
// historical info is still retained.
func (k Keeper) GetOldestSelfHeight(ctx sdk.Context) exported.Height {
	revision := types.ParseChainID(ctx.ChainID())
	return types.NewHeight(revision, uint64(k.hostKeeper.GetOldestHistoricalHeight(ctx)))
}

// GetConsensusStateHeights returns, in ascending order, every height at which
// the client stores a consensus state.
func (k Keeper) GetConsensusStateHeights(ctx sdk.Context, clientID string) ([]exported.Height, error) {
	store := prefix.NewStore(k.ClientStore(ctx, clientID), []byte(host.KeyIterateConsensusStates))
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	var heights []exported.Height
	for ; iterator.Valid(); iterator.Next() {
		// value is the consensus state key, "consensusStates/{height}"
		height, err := types.ParseHeight(strings.TrimPrefix(string(iterator.Value()), host.KeyConsensusStatePrefix+"/"))
		if err != nil {
			return nil, sdkerrors.Wrapf(types.ErrInvalidHeight, "client (%s): %s", clientID, err)
		}
		heights = append(heights, height)
	}
	return heights, nil
}
