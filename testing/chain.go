package ibctesting

import (
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	"github.com/hyperspace-relayer/ibc-core/simapp"
	"github.com/hyperspace-relayer/ibc-core/testing/mock"
)

// TestChain is a testing struct that wraps a simapp.Chain with the last TM Header, the current ABCI
// header and the validators of the chain. The header builders and state queries of the chain are
// available directly; the wrappers below fail the test on errors instead of returning them.
type TestChain struct {
	*simapp.Chain

	TB          testing.TB
	Coordinator *Coordinator
}

// NewTestChain initializes a new test chain with a default of 4 validators. Its block times
// follow the coordinator's clock.
func NewTestChain(t *testing.T, coord *Coordinator, chainID string) *TestChain {
	t.Helper()

	chain, err := simapp.NewChain(simapp.ChainConfig{
		ChainID:    chainID,
		Validators: DefaultValidators,
		Clock:      func() time.Time { return coord.CurrentTime.UTC() },
		App:        simapp.DefaultAppOptions(),
	})
	require.NoError(t, err)

	return &TestChain{
		Chain:       chain,
		TB:          t,
		Coordinator: coord,
	}
}

// GetContext returns the current context for the application.
func (chain *TestChain) GetContext() sdk.Context {
	return chain.Context()
}

// GetMockModule returns the mock application routed on the mock port, whose callbacks tests
// may override.
func (chain *TestChain) GetMockModule() mock.IBCModule {
	module, found := chain.App.IBCKeeper.Router.GetRoute(mock.PortID)
	require.True(chain.TB, found)

	mockModule, ok := module.(mock.IBCModule)
	require.True(chain.TB, ok)

	return mockModule
}

// QueryProof performs an abci query with the given key and returns the proto encoded merkle proof
// for the query and the height at which the proof will succeed on a tendermint verifier.
func (chain *TestChain) QueryProof(key []byte) ([]byte, clienttypes.Height) {
	return chain.QueryProofAtHeight(key, int64(chain.LatestHeight().RevisionHeight))
}

// QueryProofAtHeight performs an abci query with the given key and returns the proto encoded merkle proof
// for the query and the height at which the proof will succeed on a tendermint verifier.
func (chain *TestChain) QueryProofAtHeight(key []byte, height int64) ([]byte, clienttypes.Height) {
	proof, proofHeight, err := chain.Chain.QueryProofAtHeight(key, height)
	require.NoError(chain.TB, err)

	return proof, proofHeight
}

// NextBlock commits the block in progress and begins the next one at the coordinator's time.
// The last header is updated to the committed block.
func (chain *TestChain) NextBlock() {
	require.NoError(chain.TB, chain.Chain.NextBlock())
}

// SendMsgs delivers a transaction of msgs in the block in progress and commits the block. The
// coordinator time is incremented afterwards. An error is returned, and nothing committed, when
// any of the messages fails.
func (chain *TestChain) SendMsgs(msgs ...exported.Msg) (*simapp.TxResult, error) {
	// ensure the chain has the latest time
	chain.Coordinator.UpdateTimeForChain(chain)

	res, err := chain.DeliverMsgs(msgs...)
	if err != nil {
		return nil, err
	}

	chain.NextBlock()
	chain.Coordinator.IncrementTime()

	return res, nil
}

// GetClientState retrieves the client state for the provided clientID. The client is
// expected to exist otherwise testing will fail.
func (chain *TestChain) GetClientState(clientID string) exported.ClientState {
	clientState, found := chain.App.IBCKeeper.ClientKeeper.GetClientState(chain.GetContext(), clientID)
	require.True(chain.TB, found)

	return clientState
}

// GetConsensusState retrieves the consensus state for the provided clientID and height.
// It will return a success boolean depending on if consensus state exists or not.
func (chain *TestChain) GetConsensusState(clientID string, height exported.Height) (exported.ConsensusState, bool) {
	return chain.App.IBCKeeper.ClientKeeper.GetClientConsensusState(chain.GetContext(), clientID, height)
}

// GetPrefix returns the prefix for used by a chain in connection creation
func (chain *TestChain) GetPrefix() commitmenttypes.MerklePrefix {
	return commitmenttypes.NewMerklePrefix(chain.App.IBCKeeper.ConnectionKeeper.GetCommitmentPrefix().Bytes())
}

// GetTimeoutHeight is a convenience function which returns a IBC packet timeout height
// to be used for testing. It returns the current IBC height + 100 blocks
func (chain *TestChain) GetTimeoutHeight() clienttypes.Height {
	return clienttypes.NewHeight(chain.Revision(), uint64(chain.GetContext().BlockHeight())+100)
}

// ConstructUpdateTMClientHeader will construct a valid 07-tendermint Header to update the
// light client on the source chain.
func (chain *TestChain) ConstructUpdateTMClientHeader(counterparty *TestChain, clientID string) (*ibctm.Header, error) {
	trustedHeight := chain.GetClientState(clientID).GetLatestHeight().(clienttypes.Height)
	return counterparty.UpdateHeader(trustedHeight)
}

// CreateTMClientHeader creates a TM header signed by the given signers to update the TM
// client, failing the test on error.
func (chain *TestChain) CreateTMClientHeader(
	chainID string, blockHeight int64, trustedHeight clienttypes.Height, timestamp time.Time,
	tmValSet, tmTrustedVals *tmtypes.ValidatorSet, signers []tmtypes.PrivValidator,
) *ibctm.Header {
	header, err := chain.Chain.CreateTMClientHeader(chainID, blockHeight, trustedHeight, timestamp, tmValSet, tmTrustedVals, signers)
	require.NoError(chain.TB, err)

	return header
}

// ExpireClient fast forwards the chain's block time by the provided amount of time which will
// expire any clients with a trusting period less than or equal to this amount of time.
func (chain *TestChain) ExpireClient(amount time.Duration) {
	chain.Coordinator.IncrementTimeBy(amount)
}

// CreateSortedSignerArray takes two PrivValidators, and the corresponding Validator structs
// (including voting power). It returns a signer array of PrivValidators that matches the
// sorting of ValidatorSet.
// The sorting is first by .VotingPower (descending), with secondary index of .Address (ascending).
func CreateSortedSignerArray(altPrivVal, suitePrivVal tmtypes.PrivValidator,
	altVal, suiteVal *tmtypes.Validator,
) []tmtypes.PrivValidator {
	switch {
	case altVal.VotingPower > suiteVal.VotingPower:
		return []tmtypes.PrivValidator{altPrivVal, suitePrivVal}
	case altVal.VotingPower < suiteVal.VotingPower:
		return []tmtypes.PrivValidator{suitePrivVal, altPrivVal}
	default:
		if string(altVal.Address) < string(suiteVal.Address) {
			return []tmtypes.PrivValidator{altPrivVal, suitePrivVal}
		}
		return []tmtypes.PrivValidator{suitePrivVal, altPrivVal}
	}
}
