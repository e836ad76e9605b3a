package keeper_test

import (
	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

// receiveProofKey returns the key proving the packet was not received on the
// counterparty, depending on the channel ordering.
func receiveProofKey(order types.Order, packet types.Packet) []byte {
	if order == types.ORDERED {
		return host.NextSequenceRecvKey(packet.GetDestPort(), packet.GetDestChannel())
	}
	return host.PacketReceiptKey(packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
}

// TestTimeoutPacket tests the TimeoutPacket call on chainA by ensuring the timeout has passed
// on chainB, but that no ack has been written yet. Test cases expected to reach proof
// verification must specify which proof to use using the ordered bool.
func (s *KeeperTestSuite) TestTimeoutPacket() {
	var (
		path        *ibctesting.Path
		packet      types.Packet
		nextSeqRecv uint64
	)

	// sendTimedOutPacket sends a packet timing out at the height of the block in progress on
	// chainB and then commits chainB past it.
	sendTimedOutPacket := func(ordered bool) {
		if ordered {
			path.SetChannelOrdered()
		}
		path.Setup()

		var err error
		packet, err = path.EndpointA.SendPacket(clienttypes.GetSelfHeight(s.chainB.GetContext()), disabledTimeoutTimestamp, ibctesting.MockPacketData)
		s.Require().NoError(err)

		s.coordinator.CommitNBlocks(s.chainB, 2)

		nextSeqRecv, _ = s.chainB.App.IBCKeeper.ChannelKeeper.GetNextSequenceRecv(s.chainB.GetContext(), path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID)
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: ORDERED", func() {
			sendTimedOutPacket(true)
		}, nil},
		{"success: UNORDERED", func() {
			sendTimedOutPacket(false)
		}, nil},
		{"success: timeout timestamp passed", func() {
			path.Setup()

			var err error
			timeoutTimestamp := uint64(s.chainB.GetContext().BlockTime().UnixNano())
			packet, err = path.EndpointA.SendPacket(disabledTimeoutHeight, timeoutTimestamp, ibctesting.MockPacketData)
			s.Require().NoError(err)

			s.coordinator.CommitNBlocks(s.chainB, 2)
		}, nil},
		{"channel not found", func() {
			sendTimedOutPacket(false)
			packet.SourceChannel = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			sendTimedOutPacket(false)

			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"packet destination port does not match counterparty port", func() {
			sendTimedOutPacket(false)
			packet.DestinationPort = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"packet destination channel does not match counterparty channel", func() {
			sendTimedOutPacket(false)
			packet.DestinationChannel = ibctesting.InvalidID
		}, types.ErrInvalidPacket},
		{"connection not found", func() {
			sendTimedOutPacket(false)

			channel := path.EndpointA.GetChannel()
			channel.ConnectionHops = []string{ibctesting.InvalidID}
			path.EndpointA.SetChannel(channel)
		}, connectiontypes.ErrConnectionNotFound},
		{"timeout not reached", func() {
			path.Setup()

			var err error
			packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
			s.Require().NoError(err)
		}, types.ErrTimeoutNotReached},
		{"packet commitment not found", func() {
			sendTimedOutPacket(false)
			packet.Sequence = 2
		}, types.ErrPacketCommitmentNotFound},
		{"packet does not match commitment", func() {
			sendTimedOutPacket(false)
			packet.Data = []byte("tampered packet data")
		}, types.ErrInvalidPacket},
		{"ORDERED: packet already received", func() {
			sendTimedOutPacket(true)
			nextSeqRecv = 2
		}, types.ErrPacketReceived},
		{"ORDERED: next receive sequence does not match proof", func() {
			sendTimedOutPacket(true)
			nextSeqRecv = 0
		}, clienttypes.ErrFailedNextSeqRecvVerification},
		{"UNORDERED: receipt exists on the counterparty", func() {
			sendTimedOutPacket(false)

			s.chainB.App.IBCKeeper.ChannelKeeper.SetPacketReceipt(s.chainB.GetContext(), packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence())
			// the receipt is provable once the block writing it is committed to
			s.coordinator.CommitBlock(s.chainB)
		}, clienttypes.ErrFailedPacketReceiptVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			nextSeqRecv = 1

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err := path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			proof, proofHeight := path.EndpointB.QueryProof(receiveProofKey(path.EndpointA.ChannelConfig.Order, packet))

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper

			err = keeper.TimeoutPacket(ctx, packet, proof, proofHeight, nextSeqRecv)

			if tc.expErr == nil {
				s.Require().NoError(err)

				err = keeper.TimeoutExecuted(ctx, packet)
				s.Require().NoError(err)

				s.Require().False(keeper.HasPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence()))

				channel := path.EndpointA.GetChannel()
				if channel.Ordering == types.ORDERED {
					s.Require().Equal(types.CLOSED, channel.State)
				} else {
					s.Require().Equal(types.OPEN, channel.State)
				}
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestTimeoutExecuted verifies that packet commitments are deleted and that an ORDERED
// channel is closed once a timeout was processed.
func (s *KeeperTestSuite) TestTimeoutExecuted() {
	testCases := []struct {
		msg      string
		ordered  bool
		expState types.State
	}{
		{"UNORDERED channel stays open", false, types.OPEN},
		{"ORDERED channel is closed", true, types.CLOSED},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path := ibctesting.NewPath(s.chainA, s.chainB)
			if tc.ordered {
				path.SetChannelOrdered()
			}
			path.Setup()

			packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
			s.Require().NoError(err)

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper

			err = keeper.TimeoutExecuted(ctx, packet)
			s.Require().NoError(err)

			s.Require().False(keeper.HasPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence()))
			s.Require().Equal(tc.expState, path.EndpointA.GetChannel().State)
		})
	}

	s.Run("channel not found", func() {
		s.SetupTest() // reset
		packet := types.NewPacket(
			ibctesting.MockPacketData, 1,
			ibctesting.MockPort, ibctesting.InvalidID,
			ibctesting.MockPort, ibctesting.FirstChannelID,
			defaultTimeoutHeight, disabledTimeoutTimestamp,
		)

		err := s.chainA.App.IBCKeeper.ChannelKeeper.TimeoutExecuted(s.chainA.GetContext(), packet)
		s.Require().ErrorIs(err, types.ErrChannelNotFound)
	})
}

// TestTimeoutOnClose tests the call TimeoutOnClose on chainA by closing the corresponding
// channel on chainB after the packet commitment has been created.
func (s *KeeperTestSuite) TestTimeoutOnClose() {
	var (
		path        *ibctesting.Path
		packet      types.Packet
		nextSeqRecv uint64
	)

	// sendAndClose sends a packet that does not time out and then closes the
	// receiving channel end on chainB.
	sendAndClose := func(ordered, closeCounterparty bool) {
		if ordered {
			path.SetChannelOrdered()
		}
		path.Setup()

		var err error
		packet, err = path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
		s.Require().NoError(err)

		if closeCounterparty {
			err = path.EndpointB.SetChannelClosed()
			s.Require().NoError(err)
		}

		nextSeqRecv, _ = s.chainB.App.IBCKeeper.ChannelKeeper.GetNextSequenceRecv(s.chainB.GetContext(), path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID)
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: ORDERED", func() {
			sendAndClose(true, true)
		}, nil},
		{"success: UNORDERED", func() {
			sendAndClose(false, true)
		}, nil},
		{"channel not found", func() {
			sendAndClose(false, true)
			packet.SourceChannel = ibctesting.InvalidID
		}, types.ErrChannelNotFound},
		{"channel is CLOSED", func() {
			sendAndClose(false, true)

			err := path.EndpointA.SetChannelClosed()
			s.Require().NoError(err)
		}, types.ErrInvalidChannelState},
		{"packet commitment not found", func() {
			sendAndClose(false, true)
			packet.Sequence = 2
		}, types.ErrPacketCommitmentNotFound},
		{"counterparty channel is not closed", func() {
			sendAndClose(false, false)
		}, clienttypes.ErrFailedChannelStateVerification},
		{"ORDERED: packet already received", func() {
			sendAndClose(true, true)
			nextSeqRecv = 2
		}, types.ErrPacketReceived},
		{"ORDERED: next receive sequence does not match proof", func() {
			sendAndClose(true, true)
			nextSeqRecv = 0
		}, clienttypes.ErrFailedNextSeqRecvVerification},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			// ensure client is up to date to receive valid proofs
			err := path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			proof, proofHeight := path.EndpointB.QueryProof(receiveProofKey(path.EndpointA.ChannelConfig.Order, packet))
			proofClosed, _ := path.EndpointB.QueryProof(host.ChannelKey(packet.GetDestPort(), packet.GetDestChannel()))

			ctx := s.chainA.GetContext()
			keeper := s.chainA.App.IBCKeeper.ChannelKeeper

			err = keeper.TimeoutOnClose(ctx, packet, proof, proofClosed, proofHeight, nextSeqRecv)

			if tc.expErr == nil {
				s.Require().NoError(err)

				err = keeper.TimeoutExecuted(ctx, packet)
				s.Require().NoError(err)
				s.Require().False(keeper.HasPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence()))
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
