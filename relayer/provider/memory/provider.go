// Package memory implements a ChainProvider over an in-process chain. It is
// the backend of local relays and of the relayer tests.
package memory

import (
	"context"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
	"github.com/hyperspace-relayer/ibc-core/simapp"
)

var _ provider.ChainProvider = (*Provider)(nil)

// Provider serves a simapp.Chain to the relayer.
type Provider struct {
	cfg    Config
	chain  *simapp.Chain
	db     dbm.DB
	logger log.Logger

	mu           sync.RWMutex
	clientID     string
	connectionID string

	// block production runs until Close, independent of any subscriber
	tickerOnce sync.Once
	ticker     sync.WaitGroup
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewProvider opens the chain described by cfg.
func NewProvider(cfg Config, logger log.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = withDefaults(cfg)

	chainID, err := cfg.FullChainID()
	if err != nil {
		return nil, err
	}
	db, err := cfg.openDB(chainID)
	if err != nil {
		return nil, err
	}

	chain, err := simapp.NewChain(simapp.ChainConfig{
		ChainID:    chainID,
		Validators: cfg.Validators,
		DB:         db,
		Logger:     logger,
		App: simapp.AppOptions{
			HistoricalEntries:       simapp.DefaultHistoricalEntries,
			UnbondingTime:           simapp.DefaultUnbondingTime,
			MaxExpectedTimePerBlock: cfg.MaxExpectedTimePerBlock,
		},
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	p := NewProviderWithChain(cfg, chain, logger)
	p.db = db
	return p, nil
}

// NewProviderWithChain serves an existing chain, e.g. one shared with a test
// harness.
func NewProviderWithChain(cfg Config, chain *simapp.Chain, logger log.Logger) *Provider {
	cfg = withDefaults(cfg)
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Provider{
		cfg:          cfg,
		chain:        chain,
		logger:       logger.With("chain", cfg.Name),
		clientID:     cfg.ClientID,
		connectionID: cfg.ConnectionID,
		stop:         make(chan struct{}),
	}
}

func withDefaults(cfg Config) Config {
	if cfg.Name == "" {
		cfg.Name = cfg.ChainID
	}
	if cfg.Validators == 0 {
		cfg.Validators = DefaultValidators
	}
	if cfg.TrustingPeriod == 0 {
		cfg.TrustingPeriod = DefaultTrustingPeriod
	}
	if cfg.MaxClockDrift == 0 {
		cfg.MaxClockDrift = DefaultMaxClockDrift
	}
	if cfg.MaxExpectedTimePerBlock == 0 {
		cfg.MaxExpectedTimePerBlock = connectiontypes.DefaultTimePerBlock
	}
	return cfg
}

// Chain returns the chain served.
func (p *Provider) Chain() *simapp.Chain { return p.chain }

// Close stops block production and releases the chain database.
func (p *Provider) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	p.ticker.Wait()

	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *Provider) Name() string    { return p.cfg.Name }
func (p *Provider) ChainID() string { return p.chain.ChainID }

func (p *Provider) ClientID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clientID
}

// SetClientID sets the client of the counterparty hosted on this chain.
func (p *Provider) SetClientID(clientID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
}

func (p *Provider) ConnectionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connectionID
}

// SetConnectionID sets the connection relayed on.
func (p *Provider) SetConnectionID(connectionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectionID = connectionID
}

func (p *Provider) ClientType() string { return exported.Tendermint }

func (p *Provider) ConnectionPrefix() commitmenttypes.MerklePrefix {
	return commitmenttypes.NewMerklePrefix(p.chain.App.IBCKeeper.ConnectionKeeper.GetCommitmentPrefix().Bytes())
}

func (p *Provider) Signer() string { return p.chain.Signer }

func (p *Provider) ChannelWhitelist() []provider.ChannelPort { return p.cfg.ChannelWhitelist }

// ExpectedBlockTime is the configured block interval.
func (p *Provider) ExpectedBlockTime() time.Duration { return p.cfg.BlockTime }

func (p *Provider) LatestHeightAndTimestamp(ctx context.Context) (clienttypes.Height, uint64, error) {
	if err := ctx.Err(); err != nil {
		return clienttypes.Height{}, 0, err
	}
	header := p.chain.LatestHeader()
	return header.GetHeight().(clienttypes.Height), uint64(header.GetTime().UnixNano()), nil
}

// queryAt returns the value under key and its proof at the header height at.
func (p *Provider) queryAt(ctx context.Context, at clienttypes.Height, key []byte) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if at.RevisionNumber != p.chain.Revision() {
		return nil, nil, sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight, "height %s has a different revision than chain %s", at, p.chain.ChainID)
	}

	value, proof, _, err := p.chain.QueryAtHeight(key, int64(at.RevisionHeight))
	return value, proof, err
}

// stateAt runs fn over the keeper state proven at the header height at.
func (p *Provider) stateAt(ctx context.Context, at clienttypes.Height, fn func(sdk.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if at.RevisionNumber != p.chain.Revision() {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight, "height %s has a different revision than chain %s", at, p.chain.ChainID)
	}
	return p.chain.QueryStateAt(int64(at.RevisionHeight), fn)
}

func (p *Provider) QueryClientState(ctx context.Context, at clienttypes.Height, clientID string) (exported.ClientState, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.FullClientStateKey(clientID))
	if err != nil {
		return nil, nil, err
	}
	if len(bz) == 0 {
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrClientNotFound, "client %s on chain %s at height %s", clientID, p.ChainID(), at)
	}

	clientState, err := clienttypes.UnmarshalClientState(p.chain.App.Codec(), bz)
	if err != nil {
		return nil, nil, err
	}
	return clientState, proof, nil
}

func (p *Provider) QueryClientConsensusState(
	ctx context.Context, at clienttypes.Height, clientID string, consensusHeight exported.Height,
) (exported.ConsensusState, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.FullConsensusStateKey(clientID, consensusHeight))
	if err != nil {
		return nil, nil, err
	}
	if len(bz) == 0 {
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrConsensusStateNotFound, "client %s consensus height %s at height %s", clientID, consensusHeight, at)
	}

	consensusState, err := clienttypes.UnmarshalConsensusState(p.chain.App.Codec(), bz)
	if err != nil {
		return nil, nil, err
	}
	return consensusState, proof, nil
}

func (p *Provider) QueryConnectionEnd(ctx context.Context, at clienttypes.Height, connectionID string) (connectiontypes.ConnectionEnd, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.ConnectionKey(connectionID))
	if err != nil {
		return connectiontypes.ConnectionEnd{}, nil, err
	}
	if len(bz) == 0 {
		return connectiontypes.ConnectionEnd{}, nil, sdkerrors.Wrapf(connectiontypes.ErrConnectionNotFound, "connection %s on chain %s at height %s", connectionID, p.ChainID(), at)
	}

	var connection connectiontypes.ConnectionEnd
	if err := p.chain.App.Codec().Unmarshal(bz, &connection); err != nil {
		return connectiontypes.ConnectionEnd{}, nil, sdkerrors.Wrap(ibcerrors.ErrUnmarshal, err.Error())
	}
	return connection, proof, nil
}

func (p *Provider) QueryConnectionsUsingClient(ctx context.Context, at clienttypes.Height, clientID string) ([]connectiontypes.IdentifiedConnection, error) {
	var connections []connectiontypes.IdentifiedConnection
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) error {
		keeper := p.chain.App.IBCKeeper.ConnectionKeeper
		paths, _ := keeper.GetClientConnectionPaths(sdkCtx, clientID)
		for _, connectionID := range paths {
			connection, found := keeper.GetConnection(sdkCtx, connectionID)
			if !found {
				continue
			}
			connections = append(connections, connectiontypes.NewIdentifiedConnection(connectionID, connection))
		}
		return nil
	})
	return connections, err
}

func (p *Provider) QueryChannelEnd(ctx context.Context, at clienttypes.Height, portID, channelID string) (channeltypes.Channel, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.ChannelKey(portID, channelID))
	if err != nil {
		return channeltypes.Channel{}, nil, err
	}
	if len(bz) == 0 {
		return channeltypes.Channel{}, nil, sdkerrors.Wrapf(channeltypes.ErrChannelNotFound, "port ID (%s) channel ID (%s) on chain %s at height %s", portID, channelID, p.ChainID(), at)
	}

	var channel channeltypes.Channel
	if err := p.chain.App.Codec().Unmarshal(bz, &channel); err != nil {
		return channeltypes.Channel{}, nil, sdkerrors.Wrap(ibcerrors.ErrUnmarshal, err.Error())
	}
	return channel, proof, nil
}

func (p *Provider) QueryConnectionChannels(ctx context.Context, at clienttypes.Height, connectionID string) ([]channeltypes.IdentifiedChannel, error) {
	var channels []channeltypes.IdentifiedChannel
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) error {
		for _, channel := range p.chain.App.IBCKeeper.ChannelKeeper.GetAllChannels(sdkCtx) {
			if len(channel.ConnectionHops) > 0 && channel.ConnectionHops[0] == connectionID {
				channels = append(channels, channel)
			}
		}
		return nil
	})
	return channels, err
}

// QueryPacketCommitment returns the commitment of a sent packet, empty with an
// absence proof when there is none.
func (p *Provider) QueryPacketCommitment(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) ([]byte, []byte, error) {
	return p.queryAt(ctx, at, host.PacketCommitmentKey(portID, channelID, seq))
}

func (p *Provider) QueryPacketAcknowledgement(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) ([]byte, []byte, error) {
	return p.queryAt(ctx, at, host.PacketAcknowledgementKey(portID, channelID, seq))
}

// QueryPacketReceipt reports whether the packet was received. The proof is an
// absence proof when it was not.
func (p *Provider) QueryPacketReceipt(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) (bool, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.PacketReceiptKey(portID, channelID, seq))
	if err != nil {
		return false, nil, err
	}
	return len(bz) > 0, proof, nil
}

func (p *Provider) QueryNextSequenceRecv(ctx context.Context, at clienttypes.Height, portID, channelID string) (uint64, []byte, error) {
	bz, proof, err := p.queryAt(ctx, at, host.NextSequenceRecvKey(portID, channelID))
	if err != nil {
		return 0, nil, err
	}
	if len(bz) == 0 {
		return 0, nil, sdkerrors.Wrapf(channeltypes.ErrSequenceReceiveNotFound, "port ID (%s) channel ID (%s) at height %s", portID, channelID, at)
	}
	return sdk.BigEndianToUint64(bz), proof, nil
}

func (p *Provider) QueryPacketCommitments(ctx context.Context, at clienttypes.Height, portID, channelID string) ([]uint64, error) {
	var seqs []uint64
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) error {
		for _, commitment := range p.chain.App.IBCKeeper.ChannelKeeper.GetAllPacketCommitmentsAtChannel(sdkCtx, portID, channelID) {
			seqs = append(seqs, commitment.Sequence)
		}
		return nil
	})
	return seqs, err
}

func (p *Provider) QueryPacketAcknowledgements(ctx context.Context, at clienttypes.Height, portID, channelID string) ([]uint64, error) {
	var seqs []uint64
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) error {
		for _, ack := range p.chain.App.IBCKeeper.ChannelKeeper.GetAllPacketAcksAtChannel(sdkCtx, portID, channelID) {
			seqs = append(seqs, ack.Sequence)
		}
		return nil
	})
	return seqs, err
}

func (p *Provider) QueryUnreceivedPackets(ctx context.Context, at clienttypes.Height, portID, channelID string, seqs []uint64) ([]uint64, error) {
	var unreceived []uint64
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) (err error) {
		unreceived, err = p.chain.App.IBCKeeper.ChannelKeeper.UnreceivedPackets(sdkCtx, portID, channelID, seqs)
		return err
	})
	return unreceived, err
}

func (p *Provider) QueryUnreceivedAcknowledgements(ctx context.Context, at clienttypes.Height, portID, channelID string, seqs []uint64) ([]uint64, error) {
	var unreceived []uint64
	err := p.stateAt(ctx, at, func(sdkCtx sdk.Context) (err error) {
		unreceived, err = p.chain.App.IBCKeeper.ChannelKeeper.UnreceivedAcks(sdkCtx, portID, channelID, seqs)
		return err
	})
	return unreceived, err
}

func (p *Provider) QuerySendPackets(ctx context.Context, portID, channelID string, seqs []uint64) ([]channeltypes.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := p.chain.SentPackets(portID, channelID, seqs)
	if err != nil {
		return nil, err
	}

	packets := make([]channeltypes.Packet, 0, len(records))
	for _, rec := range records {
		packets = append(packets, rec.Packet)
	}
	return packets, nil
}

func (p *Provider) QueryRecvPackets(ctx context.Context, portID, channelID string, seqs []uint64) ([]provider.PacketAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := p.chain.WrittenAcks(portID, channelID, seqs)
	if err != nil {
		return nil, err
	}

	acks := make([]provider.PacketAck, 0, len(records))
	for _, rec := range records {
		acks = append(acks, provider.PacketAck{Packet: rec.Packet, Ack: rec.Ack})
	}
	return acks, nil
}

func (p *Provider) QueryProof(ctx context.Context, at clienttypes.Height, key []byte) ([]byte, error) {
	_, proof, err := p.queryAt(ctx, at, key)
	return proof, err
}

// InitializeClientState returns a tendermint client of the chain at its
// latest height.
func (p *Provider) InitializeClientState(ctx context.Context) (exported.ClientState, exported.ConsensusState, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	header := p.chain.LatestHeader()

	clientState := ibctm.NewClientState(
		p.chain.ChainID, ibctm.DefaultTrustLevel, p.cfg.TrustingPeriod, simapp.DefaultUnbondingTime, p.cfg.MaxClockDrift,
		header.GetHeight().(clienttypes.Height), commitmenttypes.GetSDKSpecs(),
	)
	return clientState, header.ConsensusState(), nil
}

func (p *Provider) UpdateHeader(ctx context.Context, trustedHeight clienttypes.Height) (exported.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, err := p.chain.UpdateHeader(trustedHeight)
	if err != nil {
		return nil, err
	}
	return header, nil
}

// FinalityNotifications streams a FinalityEvent per committed block until ctx
// is done. The first call starts block production when a block time is
// configured. Blocks keep being produced until Close, so a later call, e.g.
// from a restarted relayer, keeps receiving events.
func (p *Provider) FinalityNotifications(ctx context.Context) (<-chan provider.FinalityEvent, error) {
	sub, cancel := p.chain.Subscribe(16)

	if p.cfg.BlockTime > 0 {
		p.tickerOnce.Do(func() {
			p.ticker.Add(1)
			go p.produceBlocks()
		})
	}

	out := make(chan provider.FinalityEvent, 16)
	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				select {
				case out <- provider.FinalityEvent{Height: ev.Height, Time: ev.Time}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (p *Provider) produceBlocks() {
	defer p.ticker.Done()

	ticker := time.NewTicker(p.cfg.BlockTime)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.chain.NextBlock(); err != nil {
				p.logger.Error("failed to produce block", "err", err)
			}
		}
	}
}

// Submit delivers msgs in one transaction. Without a block time the block is
// sealed right away together with the next one, so the effects of msgs can
// be proven when Submit returns.
func (p *Provider) Submit(ctx context.Context, msgs []exported.Msg) (*provider.TxResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, height := p.chain.DeliverTx(msgs...)
	if res.Code != abci.CodeTypeOK {
		return nil, sdkerrors.ABCIError(res.Codespace, res.Code, res.Log)
	}

	if p.cfg.BlockTime == 0 {
		for i := 0; i < 2; i++ {
			if err := p.chain.NextBlock(); err != nil {
				return nil, err
			}
		}
	}

	p.logger.Debug("submitted messages", "height", height, "msgs", len(msgs))
	return &provider.TxResponse{Height: height, Events: res.Events}, nil
}
