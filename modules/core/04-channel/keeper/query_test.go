package keeper_test

import (
	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

func (s *KeeperTestSuite) TestUnreceivedPackets() {
	var (
		path      *ibctesting.Path
		sequences []uint64
		expSeqs   []uint64
	)

	// sendPackets sends n packets from chainA and relays the ones at the given
	// sequences to chainB.
	sendPackets := func(n int, relay ...uint64) {
		relayed := make(map[uint64]bool)
		for _, seq := range relay {
			relayed[seq] = true
		}

		for i := 0; i < n; i++ {
			packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
			s.Require().NoError(err)

			if relayed[packet.GetSequence()] {
				err = path.RelayPacket(packet)
				s.Require().NoError(err)
			}
		}
	}

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: no sequences queried", func() {
			path.Setup()
			sequences = []uint64{}
			expSeqs = []uint64{}
		}, nil},
		{"success: UNORDERED channel with gaps", func() {
			path.Setup()
			sendPackets(3, 2)

			sequences = []uint64{1, 2, 3}
			expSeqs = []uint64{1, 3}
		}, nil},
		{"success: ORDERED channel", func() {
			path.SetChannelOrdered()
			path.Setup()
			sendPackets(3, 1, 2)

			sequences = []uint64{1, 2, 3}
			expSeqs = []uint64{3}
		}, nil},
		{"channel not found", func() {
			path.Setup()
			path.EndpointB.ChannelID = ibctesting.InvalidID
			sequences = []uint64{1}
		}, types.ErrChannelNotFound},
		{"sequence 0 is invalid", func() {
			path.Setup()
			sequences = []uint64{1, 0}
		}, types.ErrInvalidPacket},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			unreceived, err := s.chainB.App.IBCKeeper.ChannelKeeper.UnreceivedPackets(
				s.chainB.GetContext(), path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID, sequences,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(expSeqs, unreceived)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Nil(unreceived)
			}
		})
	}
}

func (s *KeeperTestSuite) TestUnreceivedAcks() {
	var (
		path      *ibctesting.Path
		sequences []uint64
		expSeqs   []uint64
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{"success: acknowledged packet is filtered", func() {
			path.Setup()

			var packets []uint64
			for i := 0; i < 3; i++ {
				packet, err := path.EndpointA.SendPacket(defaultTimeoutHeight, disabledTimeoutTimestamp, ibctesting.MockPacketData)
				s.Require().NoError(err)

				if packet.GetSequence() == 2 {
					// relays the packet and its acknowledgement
					err = path.RelayPacket(packet)
					s.Require().NoError(err)
				}
				packets = append(packets, packet.GetSequence())
			}

			sequences = packets
			expSeqs = []uint64{1, 3}
		}, nil},
		{"success: nothing sent", func() {
			path.Setup()
			sequences = []uint64{1, 2}
			expSeqs = []uint64{}
		}, nil},
		{"channel not found", func() {
			path.Setup()
			path.EndpointA.ChannelID = ibctesting.InvalidID
			sequences = []uint64{1}
		}, types.ErrChannelNotFound},
		{"sequence 0 is invalid", func() {
			path.Setup()
			sequences = []uint64{0}
		}, types.ErrInvalidPacket},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.msg, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)

			tc.malleate()

			unreceived, err := s.chainA.App.IBCKeeper.ChannelKeeper.UnreceivedAcks(
				s.chainA.GetContext(), path.EndpointA.ChannelConfig.PortID, path.EndpointA.ChannelID, sequences,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(expSeqs, unreceived)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Nil(unreceived)
			}
		})
	}
}
