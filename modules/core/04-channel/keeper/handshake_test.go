package keeper_test

import (
	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

// TestChanOpenInit tests the OpenInit handshake call for channels. It uses message passing
// to enter into the appropriate state and then calls ChanOpenInit directly. The channel is
// being created on chainA.
func (s *KeeperTestSuite) TestChanOpenInit() {
	var (
		path         *ibctesting.Path
		channelID    string
		expChannelID string
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {
			path.SetupConnections()
			expChannelID = ibctesting.FirstChannelID
		}, nil},
		{"success: ordered channel", func() {
			path.SetupConnections()
			path.SetChannelOrdered()
			expChannelID = ibctesting.FirstChannelID
		}, nil},
		{"success: caller chosen channel identifier", func() {
			path.SetupConnections()
			channelID = types.FormatChannelIdentifier(7)
			expChannelID = channelID
		}, nil},
		{"chosen channel identifier already bound", func() {
			path.Setup()
			channelID = path.EndpointA.ChannelID
		}, types.ErrChannelExists},
		{"connection doesn't exist", func() {
			path.SetupClients()
			path.EndpointA.ConnectionID = ibctesting.InvalidID
		}, connectiontypes.ErrConnectionNotFound},
		{"connection is not OPEN", func() {
			path.SetupClients()

			err := path.EndpointA.ConnOpenInit()
			s.Require().NoError(err)
		}, types.ErrConnectionNotOpen},
		{"connection has more than one version", func() {
			path.SetupConnections()

			connection := path.EndpointA.GetConnection()
			connection.Versions = append(connection.Versions, connectiontypes.NewVersion("2", []string{"ORDER_UNORDERED"}))
			path.EndpointA.SetConnection(connection)
		}, connectiontypes.ErrInvalidVersion},
		{"connection version does not support channel ordering", func() {
			path.SetupConnections()

			connection := path.EndpointA.GetConnection()
			connection.Versions = []*connectiontypes.Version{connectiontypes.NewVersion(connectiontypes.DefaultIBCVersionIdentifier, []string{"ORDER_ORDERED"})}
			path.EndpointA.SetConnection(connection)
		}, connectiontypes.ErrInvalidVersion},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			channelID, expChannelID = "", ""

			tc.malleate()

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper
			counterparty := types.NewCounterparty(path.EndpointB.ChannelConfig.PortID, "")
			connectionHops := []string{path.EndpointA.ConnectionID}
			portID := path.EndpointA.ChannelConfig.PortID
			order := path.EndpointA.ChannelConfig.Order
			version := path.EndpointA.ChannelConfig.Version

			previous, _ := keeper.GetChannel(ctx, portID, channelID)

			id, err := keeper.ChanOpenInit(ctx, order, connectionHops, portID, channelID, counterparty, version)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(expChannelID, id)

				keeper.WriteOpenInitChannel(ctx, portID, id, order, connectionHops, counterparty, version)

				channel, found := keeper.GetChannel(ctx, portID, id)
				s.Require().True(found)
				s.Require().Equal(types.NewChannel(types.INIT, order, counterparty, connectionHops, version), channel)

				for _, getSeq := range []func() (uint64, bool){
					func() (uint64, bool) { return keeper.GetNextSequenceSend(ctx, portID, id) },
					func() (uint64, bool) { return keeper.GetNextSequenceRecv(ctx, portID, id) },
					func() (uint64, bool) { return keeper.GetNextSequenceAck(ctx, portID, id) },
				} {
					seq, found := getSeq()
					s.Require().True(found)
					s.Require().Equal(uint64(1), seq)
				}
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Empty(id)

				// a rejected init leaves the store untouched
				stored, _ := keeper.GetChannel(ctx, portID, channelID)
				s.Require().Equal(previous, stored)
			}
		})
	}
}

// TestChanOpenInitGeneratedSkipsChosen binds channel-0 by choice, sends a
// packet on it and checks that the next generated identifier neither
// overwrites the channel nor resets its sequences.
func (s *KeeperTestSuite) TestChanOpenInitGeneratedSkipsChosen() {
	path := ibctesting.NewPath(s.chainA, s.chainB)
	path.SetupConnections()

	ctx := s.chainA.GetContext()
	keeper := s.chainA.App.IBCKeeper.ChannelKeeper
	counterparty := types.NewCounterparty(path.EndpointB.ChannelConfig.PortID, "")
	connectionHops := []string{path.EndpointA.ConnectionID}
	portID := path.EndpointA.ChannelConfig.PortID
	version := path.EndpointA.ChannelConfig.Version

	chosenID, err := keeper.ChanOpenInit(ctx, types.UNORDERED, connectionHops, portID, ibctesting.FirstChannelID, counterparty, version)
	s.Require().NoError(err)
	keeper.WriteOpenInitChannel(ctx, portID, chosenID, types.UNORDERED, connectionHops, counterparty, version)
	keeper.SetNextSequenceSend(ctx, portID, chosenID, 4)
	s.Require().Equal(uint64(1), keeper.GetNextChannelSequence(ctx))

	generatedID, err := keeper.ChanOpenInit(ctx, types.ORDERED, connectionHops, portID, "", counterparty, version)
	s.Require().NoError(err)
	s.Require().Equal(types.FormatChannelIdentifier(1), generatedID)
	keeper.WriteOpenInitChannel(ctx, portID, generatedID, types.ORDERED, connectionHops, counterparty, version)

	chosen, found := keeper.GetChannel(ctx, portID, chosenID)
	s.Require().True(found)
	s.Require().Equal(types.UNORDERED, chosen.Ordering)

	seq, found := keeper.GetNextSequenceSend(ctx, portID, chosenID)
	s.Require().True(found)
	s.Require().Equal(uint64(4), seq)
}

// TestChanOpenTry tests the OpenTry handshake call for channels. It uses message passing
// to enter into the appropriate state and then calls ChanOpenTry directly. The channel
// is being created on chainB.
func (s *KeeperTestSuite) TestChanOpenTry() {
	var (
		path                *ibctesting.Path
		previousChannelID   string
		counterpartyVersion string
		expChannelID        string
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"success: crossing hello continues previous INIT channel", func() {
			err := path.EndpointB.ChanOpenInit()
			s.Require().NoError(err)

			previousChannelID = path.EndpointB.ChannelID
			expChannelID = previousChannelID
		}, nil},
		{"previous channel not found", func() {
			previousChannelID = types.FormatChannelIdentifier(10)
		}, types.ErrInvalidChannel},
		{"previous channel fields mismatch", func() {
			err := path.EndpointB.ChanOpenInit()
			s.Require().NoError(err)

			channel := path.EndpointB.GetChannel()
			channel.Version = "other-version"
			path.EndpointB.SetChannel(channel)

			previousChannelID = path.EndpointB.ChannelID
		}, types.ErrInvalidChannel},
		{"previous channel not in INIT", func() {
			err := path.EndpointB.ChanOpenInit()
			s.Require().NoError(err)

			channel := path.EndpointB.GetChannel()
			channel.State = types.TRYOPEN
			path.EndpointB.SetChannel(channel)

			previousChannelID = path.EndpointB.ChannelID
		}, types.ErrInvalidChannelState},
		{"connection doesn't exist", func() {
			path.EndpointB.ConnectionID = ibctesting.InvalidID
		}, connectiontypes.ErrConnectionNotFound},
		{"connection is not OPEN", func() {
			connection := path.EndpointB.GetConnection()
			connection.State = connectiontypes.TRYOPEN
			path.EndpointB.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"connection has more than one version", func() {
			connection := path.EndpointB.GetConnection()
			connection.Versions = append(connection.Versions, connectiontypes.NewVersion("2", []string{"ORDER_UNORDERED"}))
			path.EndpointB.SetConnection(connection)
		}, connectiontypes.ErrInvalidVersion},
		{"connection version does not support channel ordering", func() {
			connection := path.EndpointB.GetConnection()
			connection.Versions = []*connectiontypes.Version{connectiontypes.NewVersion(connectiontypes.DefaultIBCVersionIdentifier, []string{"ORDER_ORDERED"})}
			path.EndpointB.SetConnection(connection)
		}, connectiontypes.ErrInvalidVersion},
		{"counterparty channel was never initialized", func() {
			path.EndpointA.ChannelID = types.FormatChannelIdentifier(5)
		}, clienttypes.ErrFailedChannelStateVerification},
		{"counterparty version mismatch", func() {
			counterpartyVersion = "other-version"
		}, clienttypes.ErrFailedChannelStateVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetupConnections()

			err := path.EndpointA.ChanOpenInit()
			s.Require().NoError(err)

			previousChannelID = ""
			counterpartyVersion = path.EndpointA.ChannelConfig.Version
			expChannelID = ibctesting.FirstChannelID

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err = path.EndpointB.UpdateClient()
			s.Require().NoError(err)

			channelKey := host.ChannelKey(path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID)
			proof, proofHeight := s.chainA.QueryProof(channelKey)

			ctx := s.chainB.GetContext()
			keeper := s.chainB.App.IBCKeeper.ChannelKeeper
			counterparty := types.NewCounterparty(path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID)
			connectionHops := []string{path.EndpointB.ConnectionID}
			portID := path.EndpointB.ChannelConfig.PortID
			order := path.EndpointB.ChannelConfig.Order
			version := path.EndpointB.ChannelConfig.Version

			channelID, err := keeper.ChanOpenTry(
				ctx, order, connectionHops, portID, previousChannelID,
				counterparty, version, counterpartyVersion, proof, proofHeight,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(expChannelID, channelID)

				keeper.WriteOpenTryChannel(ctx, portID, channelID, order, connectionHops, counterparty, version)

				channel, found := keeper.GetChannel(ctx, portID, channelID)
				s.Require().True(found)
				s.Require().Equal(types.NewChannel(types.TRYOPEN, order, counterparty, connectionHops, version), channel)

				seq, found := keeper.GetNextSequenceRecv(ctx, portID, channelID)
				s.Require().True(found)
				s.Require().Equal(uint64(1), seq)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Empty(channelID)
			}
		})
	}
}

// TestChanOpenAck tests the OpenAck handshake call for channels. It uses message passing
// to enter into the appropriate state and then calls ChanOpenAck directly. The handshake
// call is occurring on chainA.
func (s *KeeperTestSuite) TestChanOpenAck() {
	var (
		path                  *ibctesting.Path
		counterpartyVersion   string
		counterpartyChannelID string
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"success: channel in TRYOPEN after crossing hello", func() {
			channel := path.EndpointA.GetChannel()
			channel.State = types.TRYOPEN
			path.EndpointA.SetChannel(channel)
		}, nil},
		{"channel doesn't exist", func() {
			path.EndpointA.ChannelID = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel already OPEN", func() {
			channel := path.EndpointA.GetChannel()
			channel.State = types.OPEN
			path.EndpointA.SetChannel(channel)
		}, types.ErrInvalidChannelState},
		{"channel CLOSED", func() {
			channel := path.EndpointA.GetChannel()
			channel.State = types.CLOSED
			path.EndpointA.SetChannel(channel)
		}, types.ErrInvalidChannelState},
		{"connection doesn't exist", func() {
			channel := path.EndpointA.GetChannel()
			channel.ConnectionHops = []string{ibctesting.InvalidID}
			path.EndpointA.SetChannel(channel)
		}, connectiontypes.ErrConnectionNotFound},
		{"connection is not OPEN", func() {
			connection := path.EndpointA.GetConnection()
			connection.State = connectiontypes.INIT
			path.EndpointA.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"counterparty version mismatch", func() {
			counterpartyVersion = "other-version"
		}, clienttypes.ErrFailedChannelStateVerification},
		{"counterparty channel identifier mismatch", func() {
			counterpartyChannelID = types.FormatChannelIdentifier(9)
		}, clienttypes.ErrFailedChannelStateVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetupConnections()

			err := path.EndpointA.ChanOpenInit()
			s.Require().NoError(err)

			err = path.EndpointB.ChanOpenTry()
			s.Require().NoError(err)

			counterpartyVersion = path.EndpointB.ChannelConfig.Version
			counterpartyChannelID = path.EndpointB.ChannelID

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err = path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			channelKey := host.ChannelKey(path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID)
			proof, proofHeight := s.chainB.QueryProof(channelKey)

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper
			portID, channelID := path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID

			err = keeper.ChanOpenAck(ctx, portID, channelID, counterpartyVersion, counterpartyChannelID, proof, proofHeight)

			if tc.expErr == nil {
				s.Require().NoError(err)

				keeper.WriteOpenAckChannel(ctx, portID, channelID, counterpartyVersion, counterpartyChannelID)

				channel := path.EndpointA.GetChannel()
				s.Require().Equal(types.OPEN, channel.State)
				s.Require().Equal(counterpartyChannelID, channel.Counterparty.ChannelId)
				s.Require().Equal(counterpartyVersion, channel.Version)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestChanOpenConfirm tests the OpenConfirm handshake call for channels. It uses message
// passing to enter into the appropriate state and then calls ChanOpenConfirm directly.
// The handshake call is occurring on chainB.
func (s *KeeperTestSuite) TestChanOpenConfirm() {
	var path *ibctesting.Path

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"channel doesn't exist", func() {
			path.EndpointB.ChannelID = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel not in TRYOPEN", func() {
			channel := path.EndpointB.GetChannel()
			channel.State = types.OPEN
			path.EndpointB.SetChannel(channel)
		}, types.ErrInvalidChannelState},
		{"connection is not OPEN", func() {
			connection := path.EndpointB.GetConnection()
			connection.State = connectiontypes.TRYOPEN
			path.EndpointB.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"counterparty channel not OPEN", func() {
			channel := path.EndpointA.GetChannel()
			channel.State = types.INIT
			path.EndpointA.SetChannel(channel)
			s.coordinator.CommitBlock(s.chainA)
		}, clienttypes.ErrFailedChannelStateVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetupConnections()

			err := path.EndpointA.ChanOpenInit()
			s.Require().NoError(err)

			err = path.EndpointB.ChanOpenTry()
			s.Require().NoError(err)

			err = path.EndpointA.ChanOpenAck()
			s.Require().NoError(err)

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err = path.EndpointB.UpdateClient()
			s.Require().NoError(err)

			channelKey := host.ChannelKey(path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID)
			proof, proofHeight := s.chainA.QueryProof(channelKey)

			ctx := s.chainB.GetContext()
			keeper := s.chainB.App.IBCKeeper.ChannelKeeper
			portID, channelID := path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID

			err = keeper.ChanOpenConfirm(ctx, portID, channelID, proof, proofHeight)

			if tc.expErr == nil {
				s.Require().NoError(err)

				keeper.WriteOpenConfirmChannel(ctx, portID, channelID)
				s.Require().Equal(types.OPEN, path.EndpointB.GetChannel().State)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestChanCloseInit tests the initial closing of a handshake on chainA.
func (s *KeeperTestSuite) TestChanCloseInit() {
	var path *ibctesting.Path

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {
			path.Setup()
		}, nil},
		{"success: channel still in INIT", func() {
			path.SetupConnections()

			err := path.EndpointA.ChanOpenInit()
			s.Require().NoError(err)
		}, nil},
		{"channel doesn't exist", func() {
			path.Setup()
			path.EndpointA.ChannelID = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel already CLOSED", func() {
			path.Setup()
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"connection is not OPEN", func() {
			path.Setup()

			connection := path.EndpointA.GetConnection()
			connection.State = connectiontypes.INIT
			path.EndpointA.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			err := s.chainA.App.IBCKeeper.ChannelKeeper.ChanCloseInit(
				s.chainA.GetContext(), path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(types.CLOSED, path.EndpointA.GetChannel().State)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestChanCloseConfirm tests the confirming closing channel ends by chainB. The channel
// on chainA is closed before the proof is queried.
func (s *KeeperTestSuite) TestChanCloseConfirm() {
	var path *ibctesting.Path

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)
		}, nil},
		{"channel doesn't exist", func() {
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)

			path.EndpointB.ChannelID = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel already CLOSED", func() {
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)

			err = path.EndpointB.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"connection is not OPEN", func() {
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)

			connection := path.EndpointB.GetConnection()
			connection.State = connectiontypes.TRYOPEN
			path.EndpointB.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"counterparty channel not closed", func() {}, clienttypes.ErrFailedChannelStateVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err := path.EndpointB.UpdateClient()
			s.Require().NoError(err)

			channelKey := host.ChannelKey(path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID)
			proof, proofHeight := s.chainA.QueryProof(channelKey)

			err = s.chainB.App.IBCKeeper.ChannelKeeper.ChanCloseConfirm(
				s.chainB.GetContext(), path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
				proof, proofHeight,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(types.CLOSED, path.EndpointB.GetChannel().State)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
