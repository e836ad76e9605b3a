package keeper_test

import (
	"fmt"
	"time"

	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

func (suite *KeeperTestSuite) TestCreateClient() {
	var (
		clientState    *ibctm.ClientState
		consensusState exported.ConsensusState
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{
			"success: 07-tendermint client",
			func() {},
			nil,
		},
		{
			"failure: client status is not active",
			func() {
				clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			},
			clienttypes.ErrClientNotActive,
		},
		{
			"failure: consensus state is expired",
			func() {
				consensusState = ibctm.NewConsensusState(
					suite.now.Add(-ibctesting.TrustingPeriod), commitmenttypes.NewMerkleRoot([]byte("hash")), suite.chainB.Vals.Hash(),
				)
			},
			clienttypes.ErrClientNotActive,
		},
		{
			"failure: invalid client state",
			func() {
				clientState.ChainId = ""
			},
			clienttypes.ErrInvalidClient,
		},
		{
			"failure: invalid consensus state",
			func() {
				consensusState = &ibctm.ConsensusState{}
			},
			clienttypes.ErrInvalidConsensus,
		},
	}

	for _, tc := range testCases {
		tc := tc

		suite.Run(fmt.Sprintf("Case %s", tc.msg), func() {
			suite.SetupTest() // reset

			clientState = suite.newClientState(suite.chainB.ChainID, suite.chainB.LastHeader.GetHeight().(clienttypes.Height))
			consensusState = suite.chainB.LastHeader.ConsensusState()

			tc.malleate()

			// failed creations are discarded together with the writes they made
			ctx, write := suite.chainA.GetContext().CacheContext()
			clientID, err := suite.chainA.App.IBCKeeper.ClientKeeper.CreateClient(ctx, clientState, consensusState)
			if err == nil {
				write()
			}

			storedClientState, found := suite.chainA.App.IBCKeeper.ClientKeeper.GetClientState(suite.chainA.GetContext(), clientID)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(ibctesting.FirstClientID, clientID)
				suite.Require().True(found)
				suite.Require().Equal(clientState.LatestHeight, storedClientState.GetLatestHeight())

				storedConsensusState, found := suite.chainA.GetConsensusState(clientID, clientState.LatestHeight)
				suite.Require().True(found)
				suite.Require().Equal(consensusState.GetTimestamp(), storedConsensusState.GetTimestamp())
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Empty(clientID)
				suite.Require().False(found)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestUpdateClientTendermint() {
	var (
		path         *ibctesting.Path
		clientID     string
		updateHeader *ibctm.Header
	)

	// Must create header creation functions since suite.header gets recreated on each test case
	createFutureUpdateFn := func(trustedHeight clienttypes.Height) *ibctm.Header {
		header, err := suite.chainA.ConstructUpdateTMClientHeader(suite.chainB, path.EndpointA.ClientID)
		suite.Require().NoError(err)
		suite.Require().Equal(trustedHeight, header.TrustedHeight)
		return header
	}
	createPastUpdateFn := func(fillHeight, trustedHeight clienttypes.Height) *ibctm.Header {
		consState, found := suite.chainA.GetConsensusState(path.EndpointA.ClientID, trustedHeight)
		suite.Require().True(found)

		return suite.chainB.CreateTMClientHeader(
			suite.chainB.ChainID, int64(fillHeight.RevisionHeight), trustedHeight,
			consState.(*ibctm.ConsensusState).Timestamp.Add(time.Second*5),
			suite.chainB.Vals, suite.chainB.Vals, suite.chainB.Signers,
		)
	}

	testCases := []struct {
		name      string
		malleate  func()
		expErr    error
		expFreeze bool
	}{
		{"valid update", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)

			// commit a block so the header is at a new height
			suite.coordinator.CommitBlock(suite.chainB)
			updateHeader = createFutureUpdateFn(trustHeight)
		}, nil, false},
		{"valid past update", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			fillHeight := clienttypes.NewHeight(trustHeight.RevisionNumber, trustHeight.RevisionHeight+1)

			// commit a couple of blocks and move the client past the fill height
			suite.coordinator.CommitNBlocks(suite.chainB, 2)
			suite.Require().NoError(path.EndpointA.UpdateClient())

			updateHeader = createPastUpdateFn(fillHeight, trustHeight)
		}, nil, false},
		{"valid duplicate update", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			suite.Require().NoError(path.EndpointA.UpdateClient())

			// the same header that was just submitted
			var err error
			updateHeader, err = suite.chainB.UpdateHeader(trustHeight)
			suite.Require().NoError(err)
		}, nil, false},
		{"misbehaviour detection: conflicting header", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			suite.Require().NoError(path.EndpointA.UpdateClient())

			latestHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			consState := path.EndpointA.GetConsensusState(latestHeight).(*ibctm.ConsensusState)

			// a valid header for the stored height which commits to a different block
			updateHeader = suite.chainB.CreateTMClientHeader(
				suite.chainB.ChainID, int64(latestHeight.RevisionHeight), trustHeight,
				consState.Timestamp.Add(time.Second), suite.chainB.Vals, suite.chainB.Vals, suite.chainB.Signers,
			)
		}, nil, true},
		{"misbehaviour detection: monotonic time violation", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			fillHeight := clienttypes.NewHeight(trustHeight.RevisionNumber, trustHeight.RevisionHeight+1)

			suite.coordinator.CommitNBlocks(suite.chainB, 2)
			suite.Require().NoError(path.EndpointA.UpdateClient())

			latestHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			nextConsState := path.EndpointA.GetConsensusState(latestHeight).(*ibctm.ConsensusState)

			// the fill header is timestamped after the consensus state at a greater height
			updateHeader = suite.chainB.CreateTMClientHeader(
				suite.chainB.ChainID, int64(fillHeight.RevisionHeight), trustHeight,
				nextConsState.Timestamp.Add(time.Second), suite.chainB.Vals, suite.chainB.Vals, suite.chainB.Signers,
			)
		}, nil, true},
		{"client state not found", func() {
			updateHeader = createFutureUpdateFn(path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height))
			clientID = ibctesting.InvalidID
		}, clienttypes.ErrClientNotFound, false},
		{"consensus state not found for latest height", func() {
			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			updateHeader = createFutureUpdateFn(clientState.LatestHeight)

			clientState.LatestHeight = clientState.LatestHeight.Increment().(clienttypes.Height)
			path.EndpointA.SetClientState(clientState)
		}, clienttypes.ErrClientNotActive, false},
		{"client is frozen", func() {
			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			updateHeader = createFutureUpdateFn(clientState.LatestHeight)

			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			path.EndpointA.SetClientState(clientState)
		}, clienttypes.ErrClientFrozen, false},
		{"client is expired", func() {
			updateHeader = createFutureUpdateFn(path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height))
			suite.chainA.ExpireClient(ibctesting.TrustingPeriod)
		}, clienttypes.ErrClientNotActive, false},
		{"trusted consensus state not found", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			suite.coordinator.CommitNBlocks(suite.chainB, 2)

			var err error
			updateHeader, err = suite.chainB.UpdateHeader(clienttypes.NewHeight(trustHeight.RevisionNumber, trustHeight.RevisionHeight+1))
			suite.Require().NoError(err)
		}, clienttypes.ErrConsensusStateNotFound, false},
		{"invalid header: signed by an untrusted validator set", func() {
			trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			suite.coordinator.CommitBlock(suite.chainB)

			altPrivVal := tmtypes.NewMockPV()
			altPubKey, err := altPrivVal.GetPubKey()
			suite.Require().NoError(err)
			altValSet := tmtypes.NewValidatorSet([]*tmtypes.Validator{tmtypes.NewValidator(altPubKey, 4)})

			updateHeader = suite.chainB.CreateTMClientHeader(
				suite.chainB.ChainID, suite.chainB.LastHeader.Header.Height, trustHeight,
				suite.chainB.LastHeader.GetTime(), altValSet, suite.chainB.Vals, []tmtypes.PrivValidator{altPrivVal},
			)
		}, clienttypes.ErrInvalidHeader, false},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(fmt.Sprintf("Case %s", tc.name), func() {
			suite.SetupTest()
			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			path.SetupClients()

			clientID = path.EndpointA.ClientID

			tc.malleate()

			prevClientState := suite.chainA.GetClientState(path.EndpointA.ClientID)

			ctx, write := suite.chainA.GetContext().CacheContext()
			err := suite.chainA.App.IBCKeeper.ClientKeeper.UpdateClient(ctx, clientID, updateHeader)
			if err == nil {
				write()
			}

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				return
			}
			suite.Require().NoError(err)

			newClientState := path.EndpointA.GetClientState().(*ibctm.ClientState)

			if tc.expFreeze {
				suite.Require().Equal(updateHeader.GetHeight(), newClientState.FrozenHeight, "client did not freeze after conflicting header was submitted to UpdateClient")
				suite.Require().Equal(exported.Frozen, suite.chainA.App.IBCKeeper.ClientKeeper.GetClientStatus(suite.chainA.GetContext(), newClientState, clientID))
				return
			}

			suite.Require().True(newClientState.FrozenHeight.IsZero())

			expConsensusState := updateHeader.ConsensusState()
			updatedConsState, found := suite.chainA.GetConsensusState(clientID, updateHeader.GetHeight())
			suite.Require().True(found)

			tmConsState := updatedConsState.(*ibctm.ConsensusState)
			suite.Require().True(expConsensusState.Timestamp.Equal(tmConsState.Timestamp))
			suite.Require().Equal(expConsensusState.Root.GetHash(), tmConsState.Root.GetHash())
			suite.Require().Equal([]byte(expConsensusState.NextValidatorsHash), []byte(tmConsState.NextValidatorsHash))

			// the latest height only moves forward
			if updateHeader.GetHeight().GT(prevClientState.GetLatestHeight()) {
				suite.Require().Equal(updateHeader.GetHeight(), newClientState.GetLatestHeight())
			} else {
				suite.Require().Equal(prevClientState.GetLatestHeight(), newClientState.GetLatestHeight())
			}

			clientStore := suite.chainA.App.IBCKeeper.ClientKeeper.ClientStore(suite.chainA.GetContext(), clientID)
			suite.Require().True(clientStore.Has(host.IterationKey(updateHeader.GetHeight())))
		})
	}
}

func (suite *KeeperTestSuite) TestCheckMisbehaviourAndFreeze() {
	var (
		path         *ibctesting.Path
		misbehaviour *ibctm.Misbehaviour
	)

	// headers at heights above the latest client height, trusting the latest consensus state
	newHeader := func(height int64, timestamp time.Time) *ibctm.Header {
		trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
		return suite.chainB.CreateTMClientHeader(
			suite.chainB.ChainID, height, trustHeight, timestamp,
			suite.chainB.Vals, suite.chainB.Vals, suite.chainB.Signers,
		)
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"valid fork misbehaviour", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(height, suite.now.Add(time.Minute)),
				newHeader(height, suite.now.Add(time.Minute+time.Second)),
			)
		}, nil},
		{"valid time misbehaviour", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(height+1, suite.now.Add(time.Minute)),
				newHeader(height, suite.now.Add(time.Minute+time.Second)),
			)
		}, nil},
		{"identical headers", func() {
			header := newHeader(suite.chainB.LastHeader.Header.Height+1, suite.now.Add(time.Minute))
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID, header, header)
		}, clienttypes.ErrInvalidMisbehaviour},
		{"headers at different heights with monotonic time", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(height+1, suite.now.Add(time.Minute+time.Second)),
				newHeader(height, suite.now.Add(time.Minute)),
			)
		}, clienttypes.ErrInvalidMisbehaviour},
		{"client not found", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(height, suite.now.Add(time.Minute)),
				newHeader(height, suite.now.Add(time.Minute+time.Second)),
			)
			misbehaviour.ClientId = "07-tendermint-99"
		}, clienttypes.ErrClientNotFound},
		{"client already frozen", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(height, suite.now.Add(time.Minute)),
				newHeader(height, suite.now.Add(time.Minute+time.Second)),
			)

			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			path.EndpointA.SetClientState(clientState)
		}, clienttypes.ErrClientFrozen},
		{"trusted consensus state not found", func() {
			height := suite.chainB.LastHeader.Header.Height + 1
			header1 := newHeader(height, suite.now.Add(time.Minute))
			header2 := newHeader(height, suite.now.Add(time.Minute+time.Second))
			header2.TrustedHeight = header2.TrustedHeight.Increment().(clienttypes.Height)

			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID, header1, header2)
		}, clienttypes.ErrConsensusStateNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			path.SetupClients()

			tc.malleate()

			ctx, write := suite.chainA.GetContext().CacheContext()
			err := suite.chainA.App.IBCKeeper.ClientKeeper.CheckMisbehaviourAndFreeze(ctx, misbehaviour)
			if err == nil {
				write()
			}

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				return
			}
			suite.Require().NoError(err)

			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			suite.Require().Equal(misbehaviour.GetHeight(), clientState.FrozenHeight)
			suite.Require().Equal(exported.Frozen, suite.chainA.App.IBCKeeper.ClientKeeper.GetClientStatus(suite.chainA.GetContext(), clientState, path.EndpointA.ClientID))
		})
	}
}
