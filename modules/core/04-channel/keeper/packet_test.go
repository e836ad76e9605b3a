package keeper_test

import (
	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
	"github.com/hyperspace-relayer/ibc-core/testing/mock"
)

var (
	disabledTimeoutTimestamp = uint64(0)
	disabledTimeoutHeight    = clienttypes.ZeroHeight()
	defaultTimeoutHeight     = clienttypes.NewHeight(1, 100000)
)

// emptyAcknowledgement is an application acknowledgement without bytes.
type emptyAcknowledgement struct{}

func (emptyAcknowledgement) Success() bool { return true }

func (emptyAcknowledgement) Acknowledgement() []byte { return nil }

// TestSendPacket tests SendPacket from chainA to chainB
func (s *KeeperTestSuite) TestSendPacket() {
	var (
		path   *ibctesting.Path
		packet types.Packet
	)

	newPacket := func(sequence uint64, timeoutHeight clienttypes.Height, timeoutTimestamp uint64) types.Packet {
		return types.NewPacket(
			ibctesting.MockPacketData, sequence,
			path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
			path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
			timeoutHeight, timeoutTimestamp,
		)
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: UNORDERED channel", func() {
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, nil},
		{"success: ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, nil},
		{"success: timeout timestamp only", func() {
			path.Setup()
			packet = newPacket(1, disabledTimeoutHeight, uint64(s.chainB.GetContext().BlockTime().Add(ibctesting.TrustingPeriod).UnixNano()))
		}, nil},
		{"packet basic validation failed, empty packet data", func() {
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
			packet.Data = []byte{}
		}, types.ErrInvalidPacket},
		{"packet basic validation failed, both timeouts disabled", func() {
			path.Setup()
			packet = newPacket(1, disabledTimeoutHeight, disabledTimeoutTimestamp)
		}, types.ErrInvalidPacket},
		{"channel not found", func() {
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
			packet.SourceChannel = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			path.Setup()
			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, types.ErrInvalidChannelState},
		{"channel is still in INIT", func() {
			path.SetupConnections()
			err := path.EndpointA.ChanOpenInit()
			s.Require().NoError(err)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
			packet.DestinationChannel = ibctesting.FirstChannelID
		}, types.ErrInvalidChannelState},
		{"packet destination port does not match counterparty port", func() {
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
			packet.DestinationPort = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"packet destination channel does not match counterparty channel", func() {
			path.Setup()
			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
			packet.DestinationChannel = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"connection not found", func() {
			path.Setup()
			channel := path.EndpointA.GetChannel()
			channel.ConnectionHops = []string{ibctesting.InvalidID}
			path.EndpointA.SetChannel(channel)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, connectiontypes.ErrConnectionNotFound},
		{"connection is not OPEN", func() {
			path.Setup()
			connection := path.EndpointA.GetConnection()
			connection.State = connectiontypes.TRYOPEN
			path.EndpointA.SetConnection(connection)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, types.ErrConnectionNotOpen},
		{"client is frozen", func() {
			path.Setup()
			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			path.EndpointA.SetClientState(clientState)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, clienttypes.ErrClientNotActive},
		{"client is expired", func() {
			path.Setup()
			s.chainA.ExpireClient(ibctesting.TrustingPeriod)

			packet = newPacket(1, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, clienttypes.ErrClientNotActive},
		{"timeout height already passed on the receiving chain", func() {
			path.Setup()
			latestHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
			packet = newPacket(1, latestHeight, disabledTimeoutTimestamp)
		}, types.ErrPacketTimeout},
		{"timeout timestamp already passed on the receiving chain", func() {
			path.Setup()
			latestHeight := path.EndpointA.GetClientState().GetLatestHeight()
			timestamp := path.EndpointA.GetConsensusState(latestHeight).GetTimestamp()
			packet = newPacket(1, disabledTimeoutHeight, timestamp)
		}, types.ErrPacketTimeout},
		{"sequence is not the next send sequence", func() {
			path.Setup()
			packet = newPacket(5, defaultTimeoutHeight, disabledTimeoutTimestamp)
		}, types.ErrInvalidPacket},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper

			err := keeper.SendPacket(ctx, packet)

			if tc.expErr == nil {
				s.Require().NoError(err)

				commitment := keeper.GetPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence())
				s.Require().Equal(types.CommitPacket(packet), commitment)

				nextSeqSend, found := keeper.GetNextSequenceSend(ctx, packet.GetSourcePort(), packet.GetSourceChannel())
				s.Require().True(found)
				s.Require().Equal(packet.GetSequence()+1, nextSeqSend)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().False(keeper.HasPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence()))
			}
		})
	}
}

// TestRecvPacket tests RecvPacket on chainB. Since packet commitment verification will always
// occur last (resource intensive), only tests expected to succeed and packet commitment
// verification tests need to simulate sending a packet from chainA to chainB.
func (s *KeeperTestSuite) TestRecvPacket() {
	var (
		path   *ibctesting.Path
		packet types.Packet
	)

	sendPacket := func() {
		var err error
		packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
		s.Require().NoError(err)
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: UNORDERED channel", func() {
			path.Setup()
			sendPacket()
		}, nil},
		{"success: ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			sendPacket()
		}, nil},
		{"success: out of order packet on UNORDERED channel", func() {
			path.Setup()
			// send 2 packets
			sendPacket()
			sendPacket()
			s.Require().Equal(uint64(2), packet.GetSequence())
		}, nil},
		{"packet already received on UNORDERED channel is a no-op", func() {
			path.Setup()
			sendPacket()

			err := path.EndpointB.RecvPacket(packet)
			s.Require().NoError(err)
		}, types.ErrNoOpMsg},
		{"packet already received on ORDERED channel is a no-op", func() {
			path.SetChannelOrdered()
			path.Setup()
			sendPacket()

			err := path.EndpointB.RecvPacket(packet)
			s.Require().NoError(err)
		}, types.ErrNoOpMsg},
		{"out of order packet on ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			// send 2 packets
			sendPacket()
			sendPacket()
			s.Require().Equal(uint64(2), packet.GetSequence())
		}, types.ErrPacketSequenceOutOfOrder},
		{"channel not found", func() {
			path.Setup()
			sendPacket()
			packet.DestinationChannel = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			path.Setup()
			sendPacket()

			err := path.EndpointB.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"packet source port does not match counterparty port", func() {
			path.Setup()
			sendPacket()
			packet.SourcePort = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"packet source channel does not match counterparty channel", func() {
			path.Setup()
			sendPacket()
			packet.SourceChannel = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"connection not found", func() {
			path.Setup()
			sendPacket()

			channel := path.EndpointB.GetChannel()
			channel.ConnectionHops = []string{ibctesting.InvalidID}
			path.EndpointB.SetChannel(channel)
		}, connectiontypes.ErrConnectionNotFound},
		{"connection is not OPEN", func() {
			path.Setup()
			sendPacket()

			connection := path.EndpointB.GetConnection()
			connection.State = connectiontypes.INIT
			path.EndpointB.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"timeout height passed", func() {
			path.Setup()
			packet = types.NewPacket(
				ibctesting.MockPacketData, 1,
				path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
				clienttypes.GetSelfHeight(s.chainB.GetContext()), disabledTimeoutTimestamp,
			)
		}, types.ErrPacketTimeout},
		{"timeout timestamp passed", func() {
			path.Setup()
			packet = types.NewPacket(
				ibctesting.MockPacketData, 1,
				path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
				disabledTimeoutHeight, uint64(s.chainB.GetContext().BlockTime().UnixNano()),
			)
		}, types.ErrPacketTimeout},
		{"packet commitment was never sent", func() {
			path.Setup()
			packet = types.NewPacket(
				ibctesting.MockPacketData, 1,
				path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
				defaultTimeoutHeight, disabledTimeoutTimestamp,
			)
		}, clienttypes.ErrFailedPacketCommitmentVerification},
		{"packet data differs from commitment", func() {
			path.Setup()
			sendPacket()
			packet.Data = []byte("tampered packet data")
		}, clienttypes.ErrFailedPacketCommitmentVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err := path.EndpointB.UpdateClient()
			s.Require().NoError(err)

			packetKey := host.PacketCommitmentKey(packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence())
			proof, proofHeight := path.EndpointA.QueryProof(packetKey)

			ctx := s.chainB.GetContext()
			keeper := s.chainB.App.IBCKeeper.ChannelKeeper
			portID, channelID := packet.GetDestPort(), packet.GetDestChannel()

			nextSeqRecvBefore, _ := keeper.GetNextSequenceRecv(ctx, portID, channelID)

			err = keeper.RecvPacket(ctx, packet, proof, proofHeight)

			if tc.expErr == nil {
				s.Require().NoError(err)

				channel := path.EndpointB.GetChannel()
				if channel.Ordering == types.ORDERED {
					nextSeqRecv, found := keeper.GetNextSequenceRecv(ctx, portID, channelID)
					s.Require().True(found)
					s.Require().Equal(packet.GetSequence()+1, nextSeqRecv)
				} else {
					receipt, found := keeper.GetPacketReceipt(ctx, portID, channelID, packet.GetSequence())
					s.Require().True(found)
					s.Require().NotEmpty(receipt)
				}
			} else {
				s.Require().ErrorIs(err, tc.expErr)

				// a rejected or redundant receive does not move the receive sequence
				nextSeqRecv, _ := keeper.GetNextSequenceRecv(ctx, portID, channelID)
				s.Require().Equal(nextSeqRecvBefore, nextSeqRecv)
			}
		})
	}
}

func (s *KeeperTestSuite) TestWriteAcknowledgement() {
	var (
		path   *ibctesting.Path
		ack    exported.Acknowledgement
		packet exported.PacketI
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"success: error acknowledgement", func() {
			ack = mock.MockFailAcknowledgement
		}, nil},
		{"channel not found", func() {
			packet = types.NewPacket(
				ibctesting.MockPacketData, 1,
				path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
				path.EndpointB.ChannelConfig.PortID, ibctesting.InvalidID,
				defaultTimeoutHeight, disabledTimeoutTimestamp,
			)
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			err := path.EndpointB.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"acknowledgement already written", func() {
			s.chainB.App.IBCKeeper.ChannelKeeper.SetPacketAcknowledgement(
				s.chainB.GetContext(), packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(),
				types.CommitAcknowledgement(ack.Acknowledgement()),
			)
		}, types.ErrAcknowledgementExists},
		{"acknowledgement is nil", func() {
			ack = nil
		}, types.ErrInvalidAcknowledgement},
		{"acknowledgement is empty", func() {
			ack = emptyAcknowledgement{}
		}, types.ErrInvalidAcknowledgement},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			packet = types.NewPacket(
				ibctesting.MockPacketData, 1,
				path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID,
				defaultTimeoutHeight, disabledTimeoutTimestamp,
			)
			ack = mock.MockAcknowledgement

			tc.malleate()

			ctx := s.chainB.GetContext()
			keeper := s.chainB.App.IBCKeeper.ChannelKeeper

			err := keeper.WriteAcknowledgement(ctx, packet, ack)

			if tc.expErr == nil {
				s.Require().NoError(err)

				ackHash, found := keeper.GetPacketAcknowledgement(ctx, packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
				s.Require().True(found)
				s.Require().Equal(types.CommitAcknowledgement(ack.Acknowledgement()), ackHash)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestAcknowledgePacket tests the call AcknowledgePacket on chainA.
func (s *KeeperTestSuite) TestAcknowledgePacket() {
	var (
		path   *ibctesting.Path
		packet types.Packet
		ack    []byte
	)

	sendAndReceive := func() {
		var err error
		packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
		s.Require().NoError(err)

		// the mock application writes its acknowledgement synchronously
		err = path.EndpointB.RecvPacket(packet)
		s.Require().NoError(err)
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: UNORDERED channel", func() {
			path.Setup()
			sendAndReceive()
		}, nil},
		{"success: ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			sendAndReceive()
		}, nil},
		{"channel not found", func() {
			path.Setup()
			sendAndReceive()
			packet.SourceChannel = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			path.Setup()
			sendAndReceive()

			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"packet destination port does not match counterparty port", func() {
			path.Setup()
			sendAndReceive()
			packet.DestinationPort = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"packet destination channel does not match counterparty channel", func() {
			path.Setup()
			sendAndReceive()
			packet.DestinationChannel = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"connection is not OPEN", func() {
			path.Setup()
			sendAndReceive()

			connection := path.EndpointA.GetConnection()
			connection.State = connectiontypes.TRYOPEN
			path.EndpointA.SetConnection(connection)
		}, types.ErrConnectionNotOpen},
		{"packet commitment not found", func() {
			path.Setup()
			sendAndReceive()
			packet.Sequence = 2
		}, types.ErrPacketCommitmentNotFound},
		{"packet already acknowledged", func() {
			path.Setup()
			sendAndReceive()

			err := path.EndpointA.AcknowledgePacket(packet, ack)
			s.Require().NoError(err)
		}, types.ErrPacketCommitmentNotFound},
		{"packet does not match commitment", func() {
			path.Setup()
			sendAndReceive()
			packet.Data = []byte("tampered packet data")
		}, types.ErrInvalidPacket},
		{"next ack sequence mismatch on ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			sendAndReceive()

			s.chainA.App.IBCKeeper.ChannelKeeper.SetNextSequenceAck(s.chainA.GetContext(), path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID, 10)
		}, types.ErrPacketSequenceOutOfOrder},
		{"acknowledgement differs from the one written", func() {
			path.Setup()
			sendAndReceive()
			ack = ibctesting.MockFailAcknowledgement
		}, clienttypes.ErrFailedPacketAckVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			ack = ibctesting.MockAcknowledgement

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err := path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			packetKey := host.PacketAcknowledgementKey(packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
			proof, proofHeight := path.EndpointB.QueryProof(packetKey)

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper
			portID, channelID := packet.GetSourcePort(), packet.GetSourceChannel()

			err = keeper.AcknowledgePacket(ctx, packet, ack, proof, proofHeight)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().False(keeper.HasPacketCommitment(ctx, portID, channelID, packet.GetSequence()))

				if path.EndpointA.GetChannel().Ordering == types.ORDERED {
					nextSeqAck, found := keeper.GetNextSequenceAck(ctx, portID, channelID)
					s.Require().True(found)
					s.Require().Equal(packet.GetSequence()+1, nextSeqAck)
				}
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestOrderedPacketFlow sends three packets over an ORDERED channel and checks that chainB
// only accepts them in sequence order and that acknowledgements are processed in order.
func (s *KeeperTestSuite) TestOrderedPacketFlow() {
	path := ibctesting.NewPath(s.chainA, s.chainB)
	path.SetChannelOrdered()
	path.Setup()

	packets := make([]types.Packet, 3)
	for i := range packets {
		packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
		s.Require().NoError(err)
		s.Require().Equal(uint64(i+1), packet.GetSequence())
		packets[i] = packet
	}

	// sequence 2 cannot be received before sequence 1
	packetKey := host.PacketCommitmentKey(packets[1].GetSourcePort(), packets[1].GetSourceChannel(), packets[1].GetSequence())
	proof, proofHeight := path.EndpointA.QueryProof(packetKey)
	err := s.chainB.App.IBCKeeper.ChannelKeeper.RecvPacket(s.chainB.GetContext(), packets[1], proof, proofHeight)
	s.Require().ErrorIs(err, types.ErrPacketSequenceOutOfOrder)

	for _, packet := range packets {
		err := path.RelayPacket(packet)
		s.Require().NoError(err)
	}

	keeper := s.chainB.App.IBCKeeper.ChannelKeeper
	nextSeqRecv, found := keeper.GetNextSequenceRecv(s.chainB.GetContext(), path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID)
	s.Require().True(found)
	s.Require().Equal(uint64(4), nextSeqRecv)

	keeper = s.chainA.App.IBCKeeper.ChannelKeeper
	nextSeqAck, found := keeper.GetNextSequenceAck(s.chainA.GetContext(), path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID)
	s.Require().True(found)
	s.Require().Equal(uint64(4), nextSeqAck)
	s.Require().Empty(keeper.GetAllPacketCommitmentsAtChannel(s.chainA.GetContext(), path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID))
}
