package simapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	porttypes "github.com/hyperspace-relayer/ibc-core/modules/core/05-port/types"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibckeeper "github.com/hyperspace-relayer/ibc-core/modules/core/keeper"
	coretypes "github.com/hyperspace-relayer/ibc-core/modules/core/types"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	"github.com/hyperspace-relayer/ibc-core/testing/mock"
)

const (
	// DefaultHistoricalEntries is the number of block headers retained for
	// counterparty consensus state checks.
	DefaultHistoricalEntries uint32 = 1000

	// DefaultUnbondingTime is the unbonding period counterparty clients are
	// expected to carry.
	DefaultUnbondingTime = time.Hour * 24 * 7 * 3

	storePathPrefix = "/store"
	eventsDBPrefix  = "events/"
)

// AppOptions configures a new App.
type AppOptions struct {
	HistoricalEntries uint32
	UnbondingTime     time.Duration
	// MaxExpectedTimePerBlock converts connection delay periods into blocks.
	MaxExpectedTimePerBlock time.Duration
	// IBCModules are routed to by port identifier in addition to the mock port.
	IBCModules map[string]porttypes.IBCModule
}

// DefaultAppOptions returns the options used by the test harness.
func DefaultAppOptions() AppOptions {
	return AppOptions{
		HistoricalEntries:       DefaultHistoricalEntries,
		UnbondingTime:           DefaultUnbondingTime,
		MaxExpectedTimePerBlock: connectiontypes.DefaultTimePerBlock,
	}
}

// TxResult is the outcome of a committed batch of messages.
type TxResult struct {
	Height  int64
	Results []*coretypes.Result
	Events  []abci.Event
}

// App is a minimal application running the IBC keepers on top of a versioned
// IAVL multistore.
type App struct {
	logger log.Logger
	cdc    *codec.LegacyAmino

	cms  *rootmulti.Store
	keys map[string]*sdk.KVStoreKey

	IBCKeeper  *ibckeeper.Keeper
	HostKeeper HostKeeper

	// state of the block in progress
	header      tmproto.Header
	deliverMS   storetypes.CacheMultiStore
	blockEvents []abci.Event

	events eventIndex
}

// NewApp mounts the ibc and host stores on db and loads the latest version.
func NewApp(logger log.Logger, db dbm.DB, opts AppOptions) (*App, error) {
	cdc := coretypes.NewCodec()
	keys := map[string]*sdk.KVStoreKey{
		exported.StoreKey: sdk.NewKVStoreKey(exported.StoreKey),
		HostStoreKey:      sdk.NewKVStoreKey(HostStoreKey),
	}

	cms := rootmulti.NewStore(db)
	cms.SetPruning(storetypes.PruneNothing)
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load latest version: %w", err)
	}

	app := &App{
		logger: logger,
		cdc:    cdc,
		cms:    cms,
		keys:   keys,
		events: newEventIndex(cdc, dbm.NewPrefixDB(db, []byte(eventsDBPrefix))),
	}

	app.HostKeeper = NewHostKeeper(cdc, keys[HostStoreKey], opts.HistoricalEntries, opts.UnbondingTime)
	app.IBCKeeper = ibckeeper.NewKeeper(cdc, keys[exported.StoreKey], app.HostKeeper, ibctm.NewConsensusHost(app.HostKeeper))

	router := porttypes.NewRouter()
	router.AddRoute(mock.PortID, mock.NewIBCModule())
	for portID, module := range opts.IBCModules {
		router.AddRoute(portID, module)
	}
	app.IBCKeeper.SetRouter(router)

	return app, nil
}

// Codec returns the amino codec of the application state.
func (app *App) Codec() *codec.LegacyAmino {
	return app.cdc
}

// GetKey returns the store key registered under name.
func (app *App) GetKey(name string) *sdk.KVStoreKey {
	return app.keys[name]
}

// LastCommitID returns the id of the latest committed version.
func (app *App) LastCommitID() storetypes.CommitID {
	return app.cms.LastCommitID()
}

// LastBlockHeight returns the latest committed height.
func (app *App) LastBlockHeight() int64 {
	return app.cms.LastCommitID().Version
}

// BeginBlock starts the block with the given header. Calling it again before
// Commit only replaces the header, writes made so far are kept.
func (app *App) BeginBlock(header tmproto.Header) {
	if app.deliverMS == nil {
		app.deliverMS = app.cms.CacheMultiStore()
	}
	app.header = header

	app.HostKeeper.TrackHistoricalInfo(app.Context())
}

// Context returns a context over the state of the block in progress.
func (app *App) Context() sdk.Context {
	if app.deliverMS == nil {
		panic("no block in progress, BeginBlock must be called first")
	}
	return sdk.NewContext(app.deliverMS, app.header, false, app.logger)
}

// QueryContext returns a read-only context over the state committed at
// version. Writes to it are discarded.
func (app *App) QueryContext(version int64) (sdk.Context, error) {
	cacheMS, err := app.cms.CacheMultiStoreWithVersion(version)
	if err != nil {
		return sdk.Context{}, sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight, "failed to load state at version %d: %v", version, err)
	}

	header := tmproto.Header{ChainID: app.header.ChainID, Height: version}
	return sdk.NewContext(cacheMS, header, false, app.logger), nil
}

// DeliverMsgs applies msgs to the block in progress. The batch is atomic: if
// any message fails, none of them are applied and the error is returned.
func (app *App) DeliverMsgs(msgs ...exported.Msg) (*TxResult, error) {
	if len(msgs) == 0 {
		return nil, sdkerrors.Wrap(ibcerrors.ErrInvalidRequest, "no messages to deliver")
	}

	ctx := app.Context()
	cacheMS := app.deliverMS.CacheMultiStore()
	ctx = ctx.WithMultiStore(cacheMS)

	txResult := &TxResult{Height: app.header.Height}
	for i, msg := range msgs {
		res, err := app.IBCKeeper.Deliver(ctx, msg)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "message %d", i)
		}

		txResult.Results = append(txResult.Results, res)
		txResult.Events = append(txResult.Events, res.Events.ToABCIEvents()...)
	}

	cacheMS.Write()
	app.blockEvents = append(app.blockEvents, txResult.Events...)

	return txResult, nil
}

// SendPacket sends data on the channel bound to portID/channelID, acting as the
// application that owns the port. The packet takes the next send sequence of
// the channel and its send_packet event is indexed on commit.
func (app *App) SendPacket(
	portID, channelID string, timeoutHeight clienttypes.Height, timeoutTimestamp uint64, data []byte,
) (channeltypes.Packet, error) {
	ctx := app.Context()
	cacheMS := app.deliverMS.CacheMultiStore()
	ctx = ctx.WithMultiStore(cacheMS).WithEventManager(sdk.NewEventManager())

	channelKeeper := app.IBCKeeper.ChannelKeeper
	channel, found := channelKeeper.GetChannel(ctx, portID, channelID)
	if !found {
		return channeltypes.Packet{}, sdkerrors.Wrapf(channeltypes.ErrChannelNotFound, "port ID (%s) channel ID (%s)", portID, channelID)
	}

	sequence, found := channelKeeper.GetNextSequenceSend(ctx, portID, channelID)
	if !found {
		return channeltypes.Packet{}, sdkerrors.Wrapf(channeltypes.ErrSequenceSendNotFound, "port ID (%s) channel ID (%s)", portID, channelID)
	}

	packet := channeltypes.NewPacket(
		data, sequence, portID, channelID,
		channel.Counterparty.PortId, channel.Counterparty.ChannelId,
		timeoutHeight, timeoutTimestamp,
	)
	if err := channelKeeper.SendPacket(ctx, packet); err != nil {
		return channeltypes.Packet{}, err
	}

	cacheMS.Write()
	app.blockEvents = append(app.blockEvents, ctx.EventManager().ABCIEvents()...)

	return packet, nil
}

// Commit persists the block in progress and returns the new commit id.
func (app *App) Commit() (storetypes.CommitID, error) {
	if app.deliverMS == nil {
		return storetypes.CommitID{}, fmt.Errorf("no block in progress")
	}

	app.deliverMS.Write()
	commitID := app.cms.Commit()

	if err := app.events.record(app.header.Height, app.blockEvents); err != nil {
		return commitID, fmt.Errorf("failed to index events of block %d: %w", app.header.Height, err)
	}

	app.deliverMS = nil
	app.blockEvents = nil

	app.logger.Debug("committed state", "height", commitID.Version, "app_hash", fmt.Sprintf("%X", commitID.Hash))
	return commitID, nil
}

// Query answers a store query of the form /store/<store>/key against a
// committed version, with a commitment proof when req.Prove is set.
func (app *App) Query(req abci.RequestQuery) abci.ResponseQuery {
	if !strings.HasPrefix(req.Path, storePathPrefix+"/") {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(ibcerrors.ErrUnknownRequest, "unknown query path %s", req.Path))
	}
	if req.Height > app.LastBlockHeight() {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight,
			"cannot query with height in the future (%d), latest height is %d", req.Height, app.LastBlockHeight()))
	}

	req.Path = strings.TrimPrefix(req.Path, storePathPrefix)
	return app.cms.Query(req)
}

// SentPackets returns the packets sent on port/channel with the given
// sequences, rebuilt from committed send_packet events.
func (app *App) SentPackets(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	return app.events.sentPackets(portID, channelID, seqs)
}

// WrittenAcks returns the acknowledgements written for packets received on
// port/channel with the given sequences, rebuilt from committed events.
func (app *App) WrittenAcks(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	return app.events.writtenAcks(portID, channelID, seqs)
}
