package simapp

import (
	"time"

	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
)

// HostStoreKey is the store holding the chain's own header history.
const HostStoreKey = "host"

// HistoricalInfoKey prefixes the historical info entries, keyed by big endian height.
var HistoricalInfoKey = []byte{0x50}

var _ clienttypes.HostKeeper = HostKeeper{}

// HostKeeper records a summary of every block header so that IBC can check
// the consensus states counterparty clients hold of this chain.
type HostKeeper struct {
	cdc      *codec.LegacyAmino
	storeKey sdk.StoreKey

	historicalEntries uint32
	unbondingTime     time.Duration
}

// NewHostKeeper creates a HostKeeper retaining historicalEntries headers.
func NewHostKeeper(cdc *codec.LegacyAmino, key sdk.StoreKey, historicalEntries uint32, unbondingTime time.Duration) HostKeeper {
	return HostKeeper{
		cdc:               cdc,
		storeKey:          key,
		historicalEntries: historicalEntries,
		unbondingTime:     unbondingTime,
	}
}

// HistoricalEntries returns the number of headers retained.
func (k HostKeeper) HistoricalEntries() uint32 {
	return k.historicalEntries
}

// UnbondingTime returns the unbonding period counterparty clients of this
// chain must be configured with.
func (k HostKeeper) UnbondingTime(_ sdk.Context) time.Duration {
	return k.unbondingTime
}

// GetHistoricalInfo gets the historical info at a given height
func (k HostKeeper) GetHistoricalInfo(ctx sdk.Context, height int64) (clienttypes.HistoricalInfo, bool) {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(historicalInfoKey(height))
	if bz == nil {
		return clienttypes.HistoricalInfo{}, false
	}

	var hi clienttypes.HistoricalInfo
	k.cdc.MustUnmarshal(bz, &hi)
	return hi, true
}

// SetHistoricalInfo sets the historical info at a given height
func (k HostKeeper) SetHistoricalInfo(ctx sdk.Context, height int64, hi clienttypes.HistoricalInfo) {
	store := ctx.KVStore(k.storeKey)
	store.Set(historicalInfoKey(height), k.cdc.MustMarshal(&hi))
}

// DeleteHistoricalInfo deletes the historical info at a given height
func (k HostKeeper) DeleteHistoricalInfo(ctx sdk.Context, height int64) {
	store := ctx.KVStore(k.storeKey)
	store.Delete(historicalInfoKey(height))
}

// GetOldestHistoricalHeight returns the lowest height with a retained entry,
// or 0 when nothing is stored yet.
func (k HostKeeper) GetOldestHistoricalHeight(ctx sdk.Context) int64 {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), HistoricalInfoKey)
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	if !iterator.Valid() {
		return 0
	}
	return int64(sdk.BigEndianToUint64(iterator.Key()))
}

// TrackHistoricalInfo saves the latest historical-info and deletes the oldest
// heights that are below pruning height
func (k HostKeeper) TrackHistoricalInfo(ctx sdk.Context) {
	entryNum := k.HistoricalEntries()

	// Prune store to ensure we only have parameter-defined historical entries.
	// In most cases, this will involve removing a single historical entry.
	// In the rare scenario when the historical entries gets reduced to a lower value k'
	// from the original value k. k - k' entries must be deleted from the store.
	// Since the entries to be deleted are always in a continuous range, we can iterate
	// over the historical entries starting from the most recent version to be pruned
	// and then return at the first empty entry.
	for i := ctx.BlockHeight() - int64(entryNum); i >= 0; i-- {
		_, found := k.GetHistoricalInfo(ctx, i)
		if !found {
			break
		}
		k.DeleteHistoricalInfo(ctx, i)
	}

	// if there is no need to persist historicalInfo, return
	if entryNum == 0 {
		return
	}

	historicalEntry := clienttypes.NewHistoricalInfo(ctx.BlockHeader())
	k.SetHistoricalInfo(ctx, ctx.BlockHeight(), historicalEntry)
}

func historicalInfoKey(height int64) []byte {
	return append(append([]byte{}, HistoricalInfoKey...), sdk.Uint64ToBigEndian(uint64(height))...)
}
