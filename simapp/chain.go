package simapp

import (
	"fmt"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/crypto/tmhash"
	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmprotoversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
	tmversion "github.com/tendermint/tendermint/version"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
)

// ChainConfig configures a new Chain.
type ChainConfig struct {
	ChainID    string
	Validators int
	// DB backs the multistore and the event index. An in-memory database is
	// used when nil.
	DB     dbm.DB
	Logger log.Logger
	// Clock returns the time of each new block. Defaults to the wall clock.
	Clock func() time.Time
	App   AppOptions
}

// FinalityEvent announces a newly committed and signed header.
type FinalityEvent struct {
	Height clienttypes.Height
	Time   time.Time
}

// Chain is an in-process tendermint chain: an App plus the validator set
// signing its headers. The block, delivery, query and subscription methods
// are safe for concurrent use. Direct field access and the header builders
// are meant for single goroutine tests.
type Chain struct {
	mu sync.Mutex

	ChainID string
	App     *App
	Vals    *tmtypes.ValidatorSet
	// Signers are ordered like Vals.Validators.
	Signers []tmtypes.PrivValidator
	// Signer is the bech32 address set as signer of the messages this chain's
	// relayer or test harness builds.
	Signer string

	LastHeader    *ibctm.Header  // header of the last committed block
	CurrentHeader tmproto.Header // header of the block in progress

	clock        func() time.Time
	valsAtHeight map[int64]*tmtypes.ValidatorSet
	subscribers  map[int]chan FinalityEvent
	nextSubID    int
}

// NewChain creates the chain, or reopens it when cfg.DB already holds
// committed state, and leaves a new block in progress.
func NewChain(cfg ChainConfig) (*Chain, error) {
	if cfg.Validators <= 0 {
		return nil, fmt.Errorf("chain %s needs at least one validator", cfg.ChainID)
	}
	if cfg.DB == nil {
		cfg.DB = dbm.NewMemDB()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.App.HistoricalEntries == 0 {
		cfg.App.HistoricalEntries = DefaultHistoricalEntries
	}
	if cfg.App.UnbondingTime == 0 {
		cfg.App.UnbondingTime = DefaultUnbondingTime
	}
	if cfg.App.MaxExpectedTimePerBlock == 0 {
		cfg.App.MaxExpectedTimePerBlock = connectiontypes.DefaultTimePerBlock
	}

	logger := cfg.Logger.With("chain_id", cfg.ChainID)
	app, err := NewApp(logger, cfg.DB, cfg.App)
	if err != nil {
		return nil, err
	}

	vals, signers, err := newValidators(cfg.ChainID, cfg.Validators)
	if err != nil {
		return nil, err
	}

	c := &Chain{
		ChainID:      cfg.ChainID,
		App:          app,
		Vals:         vals,
		Signers:      signers,
		Signer:       sdk.AccAddress(tmhash.SumTruncated([]byte(cfg.ChainID + "/signer"))).String(),
		clock:        cfg.Clock,
		valsAtHeight: make(map[int64]*tmtypes.ValidatorSet),
		subscribers:  make(map[int]chan FinalityEvent),
	}

	if last := app.LastBlockHeight(); last > 0 {
		if err := c.resume(last); err != nil {
			return nil, err
		}
		return c, nil
	}

	c.CurrentHeader = tmproto.Header{
		ChainID:            c.ChainID,
		Height:             1,
		Time:               c.clock(),
		AppHash:            app.LastCommitID().Hash,
		ValidatorsHash:     c.Vals.Hash(),
		NextValidatorsHash: c.Vals.Hash(),
	}
	c.beginBlock()

	params := connectiontypes.NewParams(uint64(cfg.App.MaxExpectedTimePerBlock))
	if err := app.IBCKeeper.ConnectionKeeper.SetParams(app.Context(), params); err != nil {
		return nil, err
	}

	// block 1 commits to no state, so genesis also seals block 2 whose
	// header carries the app hash of the first commit
	for i := 0; i < 2; i++ {
		if err := c.nextBlock(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// resume rebuilds the last header of a reopened chain from the host history
// and begins the block after it.
func (c *Chain) resume(last int64) error {
	ctx := sdk.NewContext(c.App.cms.CacheMultiStore(), tmproto.Header{ChainID: c.ChainID, Height: last}, false, c.App.logger)
	hi, found := c.App.HostKeeper.GetHistoricalInfo(ctx, last)
	if !found {
		return sdkerrors.Wrapf(clienttypes.ErrSelfConsensusStateNotFound, "no historical info for last committed height %d", last)
	}

	c.CurrentHeader = tmproto.Header{
		ChainID:            c.ChainID,
		Height:             last,
		Time:               hi.Time,
		AppHash:            hi.AppHash,
		ValidatorsHash:     c.Vals.Hash(),
		NextValidatorsHash: c.Vals.Hash(),
	}
	header, err := c.CurrentTMClientHeader()
	if err != nil {
		return err
	}
	c.LastHeader = header

	c.advanceHeader()
	c.beginBlock()
	return nil
}

// Revision returns the revision number encoded in the chain id.
func (c *Chain) Revision() uint64 {
	return clienttypes.ParseChainID(c.ChainID)
}

// Context returns a context over the block in progress.
func (c *Chain) Context() sdk.Context {
	return c.App.Context()
}

// SetTime sets the time of the block in progress.
func (c *Chain) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CurrentHeader.Time = t.UTC()
	c.beginBlock()
}

// NextBlock commits the block in progress, signs its header and begins the
// next block. Subscribers are notified of the new header.
func (c *Chain) NextBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nextBlock()
}

func (c *Chain) nextBlock() error {
	if _, err := c.App.Commit(); err != nil {
		return err
	}

	header, err := c.CurrentTMClientHeader()
	if err != nil {
		return err
	}
	c.LastHeader = header

	c.advanceHeader()
	c.beginBlock()

	c.publish(FinalityEvent{
		Height: header.GetHeight().(clienttypes.Height),
		Time:   header.GetTime(),
	})
	return nil
}

// advanceHeader moves the current header to the height after the last commit.
func (c *Chain) advanceHeader() {
	c.CurrentHeader = tmproto.Header{
		ChainID:            c.ChainID,
		Height:             c.App.LastBlockHeight() + 1,
		AppHash:            c.App.LastCommitID().Hash,
		Time:               c.clock(),
		ValidatorsHash:     c.Vals.Hash(),
		NextValidatorsHash: c.Vals.Hash(),
	}
}

func (c *Chain) beginBlock() {
	c.valsAtHeight[c.CurrentHeader.Height] = c.Vals
	c.App.BeginBlock(c.CurrentHeader)
}

// DeliverMsgs applies msgs atomically to the block in progress.
func (c *Chain) DeliverMsgs(msgs ...exported.Msg) (*TxResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.App.DeliverMsgs(msgs...)
}

// DeliverTx applies msgs to the block in progress and reports the outcome the
// way an ABCI application does: failures carry the codespace and code of the
// registered error instead of the error value. The height of the block the
// messages were delivered in is returned alongside.
func (c *Chain) DeliverTx(msgs ...exported.Msg) (abci.ResponseDeliverTx, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	height := c.CurrentHeader.Height
	res, err := c.App.DeliverMsgs(msgs...)
	if err != nil {
		codespace, code, errLog := sdkerrors.ABCIInfo(err, false)
		return abci.ResponseDeliverTx{
			Code:      code,
			Codespace: codespace,
			Log:       errLog,
		}, height
	}

	return abci.ResponseDeliverTx{
		Code:   abci.CodeTypeOK,
		Events: res.Events,
	}, height
}

// SendPacket sends data on portID/channelID from the block in progress.
func (c *Chain) SendPacket(
	portID, channelID string, timeoutHeight clienttypes.Height, timeoutTimestamp uint64, data []byte,
) (channeltypes.Packet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.App.SendPacket(portID, channelID, timeoutHeight, timeoutTimestamp, data)
}

// Query answers a raw store query.
func (c *Chain) Query(req abci.RequestQuery) abci.ResponseQuery {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.App.Query(req)
}

// QueryAtHeight returns the value stored under key in the ibc store as
// committed to by the header at height, together with its encoded proof. The
// proof height is the height of that header: the app hash of a header commits
// to the state of the version before it.
func (c *Chain) QueryAtHeight(key []byte, height int64) ([]byte, []byte, clienttypes.Height, error) {
	if height <= 1 {
		return nil, nil, clienttypes.Height{}, sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "cannot prove state at height %d", height)
	}

	res := c.Query(abci.RequestQuery{
		Path:   fmt.Sprintf("/store/%s/key", exported.StoreKey),
		Height: height - 1,
		Data:   key,
		Prove:  true,
	})
	if !res.IsOK() {
		return nil, nil, clienttypes.Height{}, sdkerrors.ABCIError(res.Codespace, res.Code, res.Log)
	}

	proof, err := commitmenttypes.EncodeProof(res.ProofOps)
	if err != nil {
		return nil, nil, clienttypes.Height{}, err
	}

	return res.Value, proof, clienttypes.NewHeight(c.Revision(), uint64(res.Height)+1), nil
}

// QueryStateAt runs fn over a read-only context of the state committed to by
// the header at height, the same state QueryAtHeight proves.
func (c *Chain) QueryStateAt(height int64, fn func(ctx sdk.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if height <= 1 || height > c.LastHeader.Header.Height {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "cannot query state at height %d, latest height is %d", height, c.LastHeader.Header.Height)
	}

	ctx, err := c.App.QueryContext(height - 1)
	if err != nil {
		return err
	}
	return fn(ctx)
}

// QueryProofAtHeight returns the encoded proof of key at the header height.
func (c *Chain) QueryProofAtHeight(key []byte, height int64) ([]byte, clienttypes.Height, error) {
	_, proof, proofHeight, err := c.QueryAtHeight(key, height)
	return proof, proofHeight, err
}

// QueryProof returns the encoded proof of key at the height of the last
// header.
func (c *Chain) QueryProof(key []byte) ([]byte, clienttypes.Height, error) {
	return c.QueryProofAtHeight(key, int64(c.LatestHeight().RevisionHeight))
}

// LatestHeight returns the height of the last signed header.
func (c *Chain) LatestHeight() clienttypes.Height {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.LastHeader.GetHeight().(clienttypes.Height)
}

// LatestHeader returns the last signed header without trusted fields.
func (c *Chain) LatestHeader() *ibctm.Header {
	c.mu.Lock()
	defer c.mu.Unlock()

	header := *c.LastHeader
	return &header
}

// SentPackets returns the packets sent on port/channel with the given
// sequences.
func (c *Chain) SentPackets(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.App.SentPackets(portID, channelID, seqs)
}

// WrittenAcks returns the acknowledgements written for packets received on
// port/channel with the given sequences.
func (c *Chain) WrittenAcks(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.App.WrittenAcks(portID, channelID, seqs)
}

// Subscribe returns a channel receiving a FinalityEvent per committed block,
// and a function to cancel the subscription. Events are dropped while the
// buffer is full, a subscriber only needs the latest one.
func (c *Chain) Subscribe(buffer int) (<-chan FinalityEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan FinalityEvent, buffer)
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

func (c *Chain) publish(ev FinalityEvent) {
	for _, ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// GetValsAtHeight returns the validator set that signed the header at height.
func (c *Chain) GetValsAtHeight(height int64) (*tmtypes.ValidatorSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.valsAt(height)
}

func (c *Chain) valsAt(height int64) (*tmtypes.ValidatorSet, bool) {
	if height <= 0 || height > c.CurrentHeader.Height {
		return nil, false
	}
	if vals, ok := c.valsAtHeight[height]; ok {
		return vals, true
	}
	// heights committed before a restart were signed by the same set
	return c.Vals, true
}

// UpdateHeader returns the last header with the trusted fields a client
// holding a consensus state at trustedHeight needs to verify it.
func (c *Chain) UpdateHeader(trustedHeight clienttypes.Height) (*ibctm.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if trustedHeight.IsZero() {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeight, "trusted height cannot be zero")
	}

	header := *c.LastHeader

	// the validators trusted at height h are the next validators committed to
	// by header h, i.e. the set of height h+1
	tmTrustedVals, ok := c.valsAt(int64(trustedHeight.RevisionHeight + 1))
	if !ok {
		return nil, sdkerrors.Wrapf(ibctm.ErrInvalidHeaderHeight, "could not retrieve trusted validators at trustedHeight: %d", trustedHeight)
	}

	trustedVals, err := tmTrustedVals.ToProto()
	if err != nil {
		return nil, err
	}
	header.TrustedHeight = trustedHeight
	header.TrustedValidators = trustedVals

	return &header, nil
}

// CurrentTMClientHeader signs the header of the block in progress. The trusted
// fields are left empty.
func (c *Chain) CurrentTMClientHeader() (*ibctm.Header, error) {
	return c.CreateTMClientHeader(c.ChainID, c.CurrentHeader.Height, clienttypes.Height{}, c.CurrentHeader.Time, c.Vals, nil, c.Signers)
}

// CreateTMClientHeader creates a TM header to update the TM client. Args are passed in to allow
// caller flexibility to use params that differ from the chain.
func (c *Chain) CreateTMClientHeader(
	chainID string, blockHeight int64, trustedHeight clienttypes.Height, timestamp time.Time,
	tmValSet, tmTrustedVals *tmtypes.ValidatorSet, signers []tmtypes.PrivValidator,
) (*ibctm.Header, error) {
	if tmValSet == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "validator set cannot be nil")
	}

	vsetHash := tmValSet.Hash()

	tmHeader := tmtypes.Header{
		Version:            tmprotoversion.Consensus{Block: tmversion.BlockProtocol, App: 2},
		ChainID:            chainID,
		Height:             blockHeight,
		Time:               timestamp,
		LastBlockID:        MakeBlockID(make([]byte, tmhash.Size), 10_000, make([]byte, tmhash.Size)),
		LastCommitHash:     tmhash.Sum([]byte("last_commit_hash")),
		DataHash:           tmhash.Sum([]byte("data_hash")),
		ValidatorsHash:     vsetHash,
		NextValidatorsHash: vsetHash,
		ConsensusHash:      tmhash.Sum([]byte("consensus_hash")),
		AppHash:            c.CurrentHeader.AppHash,
		LastResultsHash:    tmhash.Sum([]byte("last_results_hash")),
		EvidenceHash:       tmhash.Sum([]byte("evidence_hash")),
		ProposerAddress:    tmValSet.Proposer.Address,
	}

	hhash := tmHeader.Hash()
	blockID := MakeBlockID(hhash, 3, tmhash.Sum([]byte("part_set")))
	voteSet := tmtypes.NewVoteSet(chainID, blockHeight, 1, tmproto.PrecommitType, tmValSet)

	commit, err := tmtypes.MakeCommit(blockID, blockHeight, 1, voteSet, signers, timestamp)
	if err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "failed to sign header at height %d: %v", blockHeight, err)
	}

	valSet, err := tmValSet.ToProto()
	if err != nil {
		return nil, err
	}

	var trustedVals *tmproto.ValidatorSet
	if tmTrustedVals != nil {
		trustedVals, err = tmTrustedVals.ToProto()
		if err != nil {
			return nil, err
		}
	}

	// The trusted fields may be nil. They may be filled before relaying messages to a client.
	// The relayer is responsible for querying client and injecting appropriate trusted fields.
	return &ibctm.Header{
		SignedHeader: &tmproto.SignedHeader{
			Header: tmHeader.ToProto(),
			Commit: commit.ToProto(),
		},
		ValidatorSet:      valSet,
		TrustedHeight:     trustedHeight,
		TrustedValidators: trustedVals,
	}, nil
}

// MakeBlockID copied unimported test functions from tmtypes to use them here
func MakeBlockID(hash []byte, partSetSize uint32, partSetHash []byte) tmtypes.BlockID {
	return tmtypes.BlockID{
		Hash: hash,
		PartSetHeader: tmtypes.PartSetHeader{
			Total: partSetSize,
			Hash:  partSetHash,
		},
	}
}

// newValidators derives n validators from the chain id, so a reopened chain
// signs with the same keys.
func newValidators(chainID string, n int) (*tmtypes.ValidatorSet, []tmtypes.PrivValidator, error) {
	validators := make([]*tmtypes.Validator, 0, n)
	privVals := make(map[string]tmtypes.PrivValidator, n)
	for i := 0; i < n; i++ {
		privVal := tmtypes.NewMockPVWithParams(ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("%s/validator/%d", chainID, i))), false, false)
		pubKey, err := privVal.GetPubKey()
		if err != nil {
			return nil, nil, err
		}
		validators = append(validators, tmtypes.NewValidator(pubKey, 1))
		privVals[pubKey.Address().String()] = privVal
	}

	valSet := tmtypes.NewValidatorSet(validators)
	signers := make([]tmtypes.PrivValidator, 0, n)
	for _, val := range valSet.Validators {
		signers = append(signers, privVals[val.Address.String()])
	}
	return valSet, signers, nil
}
