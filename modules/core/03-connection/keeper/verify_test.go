package keeper_test

import (
	"time"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

var defaultTimeoutHeight = clienttypes.NewHeight(1, 100000)

// TestVerifyClientState verifies a client state of chainA stored on
// chainB. The connections on chainA and chainB are fully opened.
func (suite *KeeperTestSuite) TestVerifyClientState() {
	var (
		path       *ibctesting.Path
		heightDiff uint64
	)
	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"client state not found", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedClientStateVerification, ibcerrors.ErrInvalidHeight},
		{"client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			heightDiff = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.SetupConnections(path)

			counterpartyClient, clientProof := path.EndpointB.QueryClientStateProof()
			proofHeight := path.EndpointA.GetClientState().GetLatestHeight()

			tc.malleate()

			connection := path.EndpointA.GetConnection()

			err := suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyClientState(
				suite.chainA.GetContext(), connection,
				malleateHeight(proofHeight, heightDiff), clientProof, counterpartyClient,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyConnectionState verifies the connection state of the connection
// on chainB. The connections on chainA and chainB are fully opened.
func (suite *KeeperTestSuite) TestVerifyConnectionState() {
	var (
		path               *ibctesting.Path
		expectedConnection types.ConnectionEnd
		heightDiff         uint64
	)
	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedConnectionStateVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - connection state is different than proof", func() {
			expectedConnection.State = types.TRYOPEN
		}, clienttypes.ErrFailedConnectionStateVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
		{"client status is not active - client is expired", func() {
			suite.chainA.ExpireClient(ibctesting.TrustingPeriod)
		}, clienttypes.ErrClientNotActive, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			heightDiff = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.SetupConnections(path)

			connectionKey := host.ConnectionKey(path.EndpointB.ConnectionID)
			proof, proofHeight := suite.chainB.QueryProof(connectionKey)
			expectedConnection = path.EndpointB.GetConnection()

			tc.malleate()

			connection := path.EndpointA.GetConnection()

			err := suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyConnectionState(
				suite.chainA.GetContext(), connection,
				malleateHeight(proofHeight, heightDiff), proof, path.EndpointB.ConnectionID, expectedConnection,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyChannelState verifies the channel state of the channel on
// chainB. The channels on chainA and chainB are fully opened.
func (suite *KeeperTestSuite) TestVerifyChannelState() {
	var (
		path            *ibctesting.Path
		expectedChannel channeltypes.Channel
		heightDiff      uint64
	)
	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedChannelStateVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - changed channel state", func() {
			expectedChannel.State = channeltypes.TRYOPEN
		}, clienttypes.ErrFailedChannelStateVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			heightDiff = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.Setup(path)

			channelKey := host.ChannelKey(path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID)
			proof, proofHeight := suite.chainB.QueryProof(channelKey)
			expectedChannel = path.EndpointB.GetChannel()

			tc.malleate()

			connection := path.EndpointA.GetConnection()

			err := suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyChannelState(
				suite.chainA.GetContext(), connection, malleateHeight(proofHeight, heightDiff), proof,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID, expectedChannel,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyPacketCommitment has chainB verify the packet commitment
// on channelA. The channels on chainA and chainB are fully opened and a
// packet is sent from chainA to chainB, but has not been received.
func (suite *KeeperTestSuite) TestVerifyPacketCommitment() {
	var (
		path            *ibctesting.Path
		packet          channeltypes.Packet
		heightDiff      uint64
		delayTimePeriod uint64
		timePerBlock    uint64
	)
	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"verification success: delay period passed", func() {
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
		}, nil, nil},
		{"delay time period has not passed", func() {
			delayTimePeriod = uint64(1 * time.Hour.Nanoseconds())
		}, clienttypes.ErrFailedPacketCommitmentVerification, ibctm.ErrDelayPeriodNotPassed},
		{"delay block period has not passed", func() {
			// make timePerBlock 1 nanosecond so that block delay is not passed.
			// must also set a non-zero time delay to ensure block delay is enforced.
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
			timePerBlock = 1
		}, clienttypes.ErrFailedPacketCommitmentVerification, ibctm.ErrDelayPeriodNotPassed},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointB.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointB.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedPacketCommitmentVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - changed packet commitment state", func() {
			packet.Data = []byte(ibctesting.InvalidID)
		}, clienttypes.ErrFailedPacketCommitmentVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointB)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.Setup(path)

			var err error
			packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, 0, ibctesting.MockPacketData)
			suite.Require().NoError(err)

			// reset variables
			heightDiff = 0
			delayTimePeriod = 0
			timePerBlock = 0
			tc.malleate()

			connection := path.EndpointB.GetConnection()
			connection.DelayPeriod = delayTimePeriod
			commitmentKey := host.PacketCommitmentKey(packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence())
			proof, proofHeight := suite.chainA.QueryProof(commitmentKey)

			// set time per block param
			if timePerBlock != 0 {
				suite.Require().NoError(suite.chainB.App.IBCKeeper.ConnectionKeeper.SetParams(suite.chainB.GetContext(), types.NewParams(timePerBlock)))
			}

			commitment := channeltypes.CommitPacket(packet)
			err = suite.chainB.App.IBCKeeper.ConnectionKeeper.VerifyPacketCommitment(
				suite.chainB.GetContext(), connection, malleateHeight(proofHeight, heightDiff), proof,
				packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence(), commitment,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyPacketAcknowledgement has chainA verify the acknowledgement on
// channelB. The channels on chainA and chainB are fully opened and a packet
// is sent from chainA to chainB and received.
func (suite *KeeperTestSuite) TestVerifyPacketAcknowledgement() {
	var (
		path            *ibctesting.Path
		ack             []byte
		heightDiff      uint64
		delayTimePeriod uint64
		timePerBlock    uint64
	)

	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"verification success: delay period passed", func() {
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
		}, nil, nil},
		{"delay time period has not passed", func() {
			delayTimePeriod = uint64(1 * time.Hour.Nanoseconds())
		}, clienttypes.ErrFailedPacketAckVerification, ibctm.ErrDelayPeriodNotPassed},
		{"delay block period has not passed", func() {
			// make timePerBlock 1 nanosecond so that block delay is not passed.
			// must also set a non-zero time delay to ensure block delay is enforced.
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
			timePerBlock = 1
		}, clienttypes.ErrFailedPacketAckVerification, ibctm.ErrDelayPeriodNotPassed},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedPacketAckVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - changed acknowledgement", func() {
			ack = ibctesting.MockFailAcknowledgement
		}, clienttypes.ErrFailedPacketAckVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			ack = ibctesting.MockAcknowledgement

			// reset variables
			heightDiff = 0
			delayTimePeriod = 0
			timePerBlock = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.Setup(path)

			// send and receive packet
			packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, 0, ibctesting.MockPacketData)
			suite.Require().NoError(err)

			err = path.EndpointB.RecvPacket(packet)
			suite.Require().NoError(err)

			packetAckKey := host.PacketAcknowledgementKey(packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
			proof, proofHeight := suite.chainB.QueryProof(packetAckKey)

			tc.malleate()

			connection := path.EndpointA.GetConnection()
			connection.DelayPeriod = delayTimePeriod

			// set time per block param
			if timePerBlock != 0 {
				suite.Require().NoError(suite.chainA.App.IBCKeeper.ConnectionKeeper.SetParams(suite.chainA.GetContext(), types.NewParams(timePerBlock)))
			}

			err = suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyPacketAcknowledgement(
				suite.chainA.GetContext(), connection, malleateHeight(proofHeight, heightDiff), proof,
				packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(), ack,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyPacketReceiptAbsence has chainA verify the receipt
// absence on channelB. The channels on chainA and chainB are fully opened and
// a packet is sent from chainA to chainB and not received.
func (suite *KeeperTestSuite) TestVerifyPacketReceiptAbsence() {
	var (
		path            *ibctesting.Path
		packet          channeltypes.Packet
		heightDiff      uint64
		delayTimePeriod uint64
		timePerBlock    uint64
	)

	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"verification success: delay period passed", func() {
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
		}, nil, nil},
		{"delay time period has not passed", func() {
			delayTimePeriod = uint64(1 * time.Hour.Nanoseconds())
		}, clienttypes.ErrFailedPacketReceiptVerification, ibctm.ErrDelayPeriodNotPassed},
		{"delay block period has not passed", func() {
			// make timePerBlock 1 nanosecond so that block delay is not passed.
			// must also set a non-zero time delay to ensure block delay is enforced.
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
			timePerBlock = 1
		}, clienttypes.ErrFailedPacketReceiptVerification, ibctm.ErrDelayPeriodNotPassed},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedPacketReceiptVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - acknowledgement was received", func() {
			err := path.EndpointB.RecvPacket(packet)
			suite.Require().NoError(err)
		}, clienttypes.ErrFailedPacketReceiptVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			// reset variables
			heightDiff = 0
			delayTimePeriod = 0
			timePerBlock = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			suite.coordinator.Setup(path)

			// send, only receive in malleate if applicable
			var err error
			packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, 0, ibctesting.MockPacketData)
			suite.Require().NoError(err)

			// chainA must hold a consensus state of chainB that includes the send
			err = path.EndpointA.UpdateClient()
			suite.Require().NoError(err)

			tc.malleate()

			connection := path.EndpointA.GetConnection()
			connection.DelayPeriod = delayTimePeriod

			packetReceiptKey := host.PacketReceiptKey(packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
			proof, proofHeight := suite.chainB.QueryProof(packetReceiptKey)

			// set time per block param
			if timePerBlock != 0 {
				suite.Require().NoError(suite.chainA.App.IBCKeeper.ConnectionKeeper.SetParams(suite.chainA.GetContext(), types.NewParams(timePerBlock)))
			}

			err = suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyPacketReceiptAbsence(
				suite.chainA.GetContext(), connection, malleateHeight(proofHeight, heightDiff), proof,
				packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(),
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

// TestVerifyNextSequenceRecv has chainA verify the next sequence receive on
// channelB. The ordered channels on chainA and chainB are fully opened and a
// packet is sent from chainA to chainB and received.
func (suite *KeeperTestSuite) TestVerifyNextSequenceRecv() {
	var (
		path            *ibctesting.Path
		offsetSeq       uint64
		heightDiff      uint64
		delayTimePeriod uint64
		timePerBlock    uint64
	)

	cases := []struct {
		name     string
		malleate func()
		expErr   error
		expCause error
	}{
		{"verification success", func() {}, nil, nil},
		{"verification success: delay period passed", func() {
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
		}, nil, nil},
		{"delay time period has not passed", func() {
			delayTimePeriod = uint64(1 * time.Hour.Nanoseconds())
		}, clienttypes.ErrFailedNextSeqRecvVerification, ibctm.ErrDelayPeriodNotPassed},
		{"delay block period has not passed", func() {
			// make timePerBlock 1 nanosecond so that block delay is not passed.
			// must also set a non-zero time delay to ensure block delay is enforced.
			delayTimePeriod = uint64(1 * time.Second.Nanoseconds())
			timePerBlock = 1
		}, clienttypes.ErrFailedNextSeqRecvVerification, ibctm.ErrDelayPeriodNotPassed},
		{"client state not found - changed client ID", func() {
			connection := path.EndpointA.GetConnection()
			connection.ClientId = ibctesting.InvalidID
			path.EndpointA.SetConnection(connection)
		}, clienttypes.ErrClientNotFound, nil},
		{"consensus state not found - increased proof height", func() {
			heightDiff = 5
		}, clienttypes.ErrFailedNextSeqRecvVerification, ibcerrors.ErrInvalidHeight},
		{"verification failed - wrong expected next seq recv", func() {
			offsetSeq = 1
		}, clienttypes.ErrFailedNextSeqRecvVerification, nil},
		{"client status is not active - client is frozen", func() {
			freezeClient(path.EndpointA)
		}, clienttypes.ErrClientFrozen, nil},
	}

	for _, tc := range cases {
		tc := tc

		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			// reset variables
			offsetSeq = 0
			heightDiff = 0
			delayTimePeriod = 0
			timePerBlock = 0

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			path.SetChannelOrdered()
			suite.coordinator.Setup(path)

			// send and receive packet
			packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, 0, ibctesting.MockPacketData)
			suite.Require().NoError(err)

			err = path.EndpointB.RecvPacket(packet)
			suite.Require().NoError(err)

			nextSeqRecvKey := host.NextSequenceRecvKey(packet.GetDestPort(), packet.GetDestChannel())
			proof, proofHeight := suite.chainB.QueryProof(nextSeqRecvKey)

			tc.malleate()

			// set time per block param
			if timePerBlock != 0 {
				suite.Require().NoError(suite.chainA.App.IBCKeeper.ConnectionKeeper.SetParams(suite.chainA.GetContext(), types.NewParams(timePerBlock)))
			}

			connection := path.EndpointA.GetConnection()
			connection.DelayPeriod = delayTimePeriod
			err = suite.chainA.App.IBCKeeper.ConnectionKeeper.VerifyNextSequenceRecv(
				suite.chainA.GetContext(), connection, malleateHeight(proofHeight, heightDiff), proof,
				packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence()+1+offsetSeq,
			)

			suite.requireVerification(err, tc.expErr, tc.expCause)
		})
	}
}

func (suite *KeeperTestSuite) TestGetBlockDelay() {
	path := ibctesting.NewPath(suite.chainA, suite.chainB)
	suite.coordinator.SetupConnections(path)

	// a delay of 61s spans three blocks of at most 30s each
	connection := path.EndpointA.GetConnection()
	connection.DelayPeriod = uint64((61 * time.Second).Nanoseconds())
	suite.Require().Equal(uint64(3), suite.chainA.App.IBCKeeper.ConnectionKeeper.GetBlockDelay(suite.chainA.GetContext(), connection))

	// a zero expected time per block is rejected and the delay is kept
	err := suite.chainA.App.IBCKeeper.ConnectionKeeper.SetParams(suite.chainA.GetContext(), types.Params{})
	suite.Require().ErrorIs(err, ibcerrors.ErrInvalidRequest)
	suite.Require().Equal(uint64(3), suite.chainA.App.IBCKeeper.ConnectionKeeper.GetBlockDelay(suite.chainA.GetContext(), connection))
}

// requireVerification asserts that err matches expErr. The light client
// cause of a failed proof check is only carried in the message, so it is
// matched as text.
func (suite *KeeperTestSuite) requireVerification(err, expErr, expCause error) {
	if expErr == nil {
		suite.Require().NoError(err)
		return
	}

	suite.Require().ErrorIs(err, expErr)
	if expCause != nil {
		suite.Require().Contains(err.Error(), expCause.Error())
	}
}

func malleateHeight(height exported.Height, diff uint64) exported.Height {
	return clienttypes.NewHeight(height.GetRevisionNumber(), height.GetRevisionHeight()+diff)
}
