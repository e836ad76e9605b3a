package tendermint_test

import (
	"time"

	ics23 "github.com/confio/ics23/go"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

var invalidProof = []byte("invalid proof")

func (s *TendermintTestSuite) TestValidate() {
	testCases := []struct {
		name        string
		clientState *ibctm.ClientState
		expErr      error
	}{
		{
			name:        "valid client",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      nil,
		},
		{
			name:        "valid client with revision format chain id",
			clientState: ibctm.NewClientState(chainIDRevision1, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(1, 4), commitmenttypes.GetSDKSpecs()),
			expErr:      nil,
		},
		{
			name:        "invalid chainID",
			clientState: ibctm.NewClientState("  ", ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidChainID,
		},
		{
			name:        "chainID too long",
			clientState: ibctm.NewClientState("this-chain-id-is-far-too-long-for-tendermint-to-accept-it", ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidChainID,
		},
		{
			name:        "invalid trust level",
			clientState: ibctm.NewClientState(chainID, ibctm.Fraction{Numerator: 0, Denominator: 1}, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidTrustLevel,
		},
		{
			name:        "invalid zero denominator trust level",
			clientState: ibctm.NewClientState(chainID, ibctm.Fraction{Numerator: 1, Denominator: 0}, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidTrustLevel,
		},
		{
			name:        "invalid trusting period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, 0, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidTrustingPeriod,
		},
		{
			name:        "invalid unbonding period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, 0, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidUnbondingPeriod,
		},
		{
			name:        "invalid max clock drift",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, 0, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidMaxClockDrift,
		},
		{
			name:        "invalid revision number",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(1, 1), commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidHeaderHeight,
		},
		{
			name:        "invalid revision height",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.ZeroHeight(), commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidHeaderHeight,
		},
		{
			name:        "trusting period not less than unbonding period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, ubdPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      ibctm.ErrInvalidTrustingPeriod,
		},
		{
			name:        "proof specs is nil",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, nil),
			expErr:      ibctm.ErrInvalidProofSpecs,
		},
		{
			name:        "proof specs contains nil",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, []*ics23.ProofSpec{ics23.TendermintSpec, nil}),
			expErr:      ibctm.ErrInvalidProofSpecs,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			err := tc.clientState.Validate()
			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *TendermintTestSuite) TestZeroCustomFields() {
	clientState := ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs())

	zeroed, ok := clientState.ZeroCustomFields().(*ibctm.ClientState)
	s.Require().True(ok)

	s.Require().Equal(clientState.ChainId, zeroed.ChainId)
	s.Require().Equal(clientState.UnbondingPeriod, zeroed.UnbondingPeriod)
	s.Require().Equal(clientState.LatestHeight, zeroed.LatestHeight)
	s.Require().Equal(clientState.ProofSpecs, zeroed.ProofSpecs)

	s.Require().Zero(zeroed.TrustingPeriod)
	s.Require().Zero(zeroed.MaxClockDrift)
	s.Require().Equal(ibctm.Fraction{}, zeroed.TrustLevel)
}

func (s *TendermintTestSuite) TestStatus() {
	var (
		path        *ibctesting.Path
		clientState *ibctm.ClientState
	)

	testCases := []struct {
		name      string
		malleate  func()
		expStatus exported.Status
	}{
		{"client is active", func() {}, exported.Active},
		{"client is frozen", func() {
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
		}, exported.Frozen},
		{"frozen takes precedence over expired", func() {
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			s.chainA.ExpireClient(clientState.TrustingPeriod)
		}, exported.Frozen},
		{"client status without consensus state", func() {
			clientState.LatestHeight = clientState.LatestHeight.Increment().(clienttypes.Height)
		}, exported.Expired},
		{"client status is expired", func() {
			s.chainA.ExpireClient(clientState.TrustingPeriod)
		}, exported.Expired},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetupClients()

			clientState = path.EndpointA.GetClientState().(*ibctm.ClientState)

			tc.malleate()

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			s.Require().Equal(tc.expStatus, clientState.Status(ctx, clientStore, s.chainA.App.Codec()))
		})
	}
}

func (s *TendermintTestSuite) TestIsExpired() {
	clientState := ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs())

	s.Require().False(clientState.IsExpired(s.now, s.now.Add(trustingPeriod-time.Nanosecond)))
	// the trusting period is exclusive
	s.Require().True(clientState.IsExpired(s.now, s.now.Add(trustingPeriod)))
	s.Require().True(clientState.IsExpired(s.now, s.now.Add(trustingPeriod+time.Second)))
}

func (s *TendermintTestSuite) TestGetTimestampAtHeight() {
	path := ibctesting.NewPath(s.chainA, s.chainB)
	path.SetupClients()

	ctx := s.chainA.GetContext()
	clientState := path.EndpointA.GetClientState()
	clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

	consensusState := path.EndpointA.GetConsensusState(clientState.GetLatestHeight())

	timestamp, err := clientState.GetTimestampAtHeight(ctx, clientStore, s.chainA.App.Codec(), clientState.GetLatestHeight())
	s.Require().NoError(err)
	s.Require().Equal(consensusState.GetTimestamp(), timestamp)

	_, err = clientState.GetTimestampAtHeight(ctx, clientStore, s.chainA.App.Codec(), clientState.GetLatestHeight().Increment())
	s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)
}

// TestVerifyChannelState verifies chainB's channel end against the chainB
// client held by chainA.
func (s *TendermintTestSuite) TestVerifyChannelState() {
	var (
		path        *ibctesting.Path
		clientState *ibctm.ClientState
		proof       []byte
		proofHeight exported.Height
		channel     channeltypes.Channel
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"successful verification", func() {}, nil},
		{"client is frozen", func() {
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
		}, clienttypes.ErrClientFrozen},
		{"proof height greater than client latest height", func() {
			proofHeight = clientState.LatestHeight.Increment()
		}, ibcerrors.ErrInvalidHeight},
		{"consensus state not found at proof height", func() {
			clientState.LatestHeight = clientState.LatestHeight.Increment().(clienttypes.Height)
			proofHeight = clientState.LatestHeight
		}, clienttypes.ErrConsensusStateNotFound},
		{"empty proof", func() {
			proof = nil
		}, commitmenttypes.ErrInvalidProof},
		{"malformed proof", func() {
			proof = invalidProof
		}, commitmenttypes.ErrInvalidProof},
		{"channel state does not match the proof", func() {
			channel.State = channeltypes.CLOSED
		}, commitmenttypes.ErrInvalidProof},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			err := path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			clientState = path.EndpointA.GetClientState().(*ibctm.ClientState)
			channel = path.EndpointB.GetChannel()
			proof, proofHeight = path.EndpointB.QueryProof(host.ChannelKey(path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID))

			tc.malleate()

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			err = clientState.VerifyChannelState(
				clientStore, s.chainA.App.Codec(), proofHeight, s.chainB.GetPrefix(), proof,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID, channel,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestVerifyPacketCommitment verifies a packet commitment sent from chainB
// against the chainB client held by chainA, including the connection delay.
func (s *TendermintTestSuite) TestVerifyPacketCommitment() {
	var (
		path             *ibctesting.Path
		clientState      *ibctm.ClientState
		proof            []byte
		proofHeight      exported.Height
		commitment       []byte
		delayTimePeriod  uint64
		delayBlockPeriod uint64
		prefix           exported.Prefix
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"successful verification", func() {}, nil},
		{"delay time period has passed", func() {
			delayTimePeriod = 1
		}, nil},
		{"delay block period has passed", func() {
			delayBlockPeriod = 1
		}, nil},
		{"delay time period has not passed", func() {
			delayTimePeriod = uint64(time.Hour.Nanoseconds())
		}, ibctm.ErrDelayPeriodNotPassed},
		{"delay block period has not passed", func() {
			delayBlockPeriod = 1000
		}, ibctm.ErrDelayPeriodNotPassed},
		{"invalid prefix", func() {
			prefix = commitmenttypes.NewMerklePrefix([]byte("invalid"))
		}, commitmenttypes.ErrInvalidProof},
		{"commitment does not match", func() {
			commitment = []byte("invalid commitment")
		}, commitmenttypes.ErrInvalidProof},
		{"client is frozen", func() {
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
		}, clienttypes.ErrClientFrozen},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			packet, err := path.EndpointB.SendPacket(s.chainA.GetTimeoutHeight(), 0, ibctesting.MockPacketData)
			s.Require().NoError(err)

			clientState = path.EndpointA.GetClientState().(*ibctm.ClientState)
			proof, proofHeight = path.EndpointB.QueryProof(host.PacketCommitmentKey(packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence()))
			commitment = channeltypes.CommitPacket(packet)
			delayTimePeriod, delayBlockPeriod = 0, 0
			prefix = s.chainB.GetPrefix()

			// move past the block the consensus state was processed in
			s.coordinator.CommitBlock(s.chainA)

			tc.malleate()

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			err = clientState.VerifyPacketCommitment(
				ctx, clientStore, s.chainA.App.Codec(), proofHeight, delayTimePeriod, delayBlockPeriod, prefix, proof,
				packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence(), commitment,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *TendermintTestSuite) TestVerifyPacketAcknowledgement() {
	var (
		path   *ibctesting.Path
		ack    []byte
		packet channeltypes.Packet
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"successful verification", func() {}, nil},
		{"acknowledgement does not match", func() {
			ack = ibctesting.MockFailAcknowledgement
		}, commitmenttypes.ErrInvalidProof},
		{"acknowledgement was never written", func() {
			packet.Sequence = 2
		}, commitmenttypes.ErrInvalidProof},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			var err error
			packet, err = path.EndpointA.SendPacket(s.chainB.GetTimeoutHeight(), 0, ibctesting.MockPacketData)
			s.Require().NoError(err)

			err = path.EndpointB.RecvPacket(packet)
			s.Require().NoError(err)

			ack = ibctesting.MockAcknowledgement

			tc.malleate()

			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			proof, proofHeight := path.EndpointB.QueryProof(host.PacketAcknowledgementKey(packet.GetDestPort(), packet.GetDestChannel(), 1))

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			err = clientState.VerifyPacketAcknowledgement(
				ctx, clientStore, s.chainA.App.Codec(), proofHeight, 0, 0, s.chainB.GetPrefix(), proof,
				packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(), ack,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestVerifyPacketReceiptAbsence proves on chainA that chainB did not receive
// a packet sent by chainA.
func (s *TendermintTestSuite) TestVerifyPacketReceiptAbsence() {
	var (
		path   *ibctesting.Path
		packet channeltypes.Packet
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"successful verification", func() {}, nil},
		{"packet was received", func() {
			err := path.EndpointB.RecvPacket(packet)
			s.Require().NoError(err)
		}, commitmenttypes.ErrInvalidProof},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.Setup()

			var err error
			packet, err = path.EndpointA.SendPacket(s.chainB.GetTimeoutHeight(), 0, ibctesting.MockPacketData)
			s.Require().NoError(err)

			tc.malleate()

			err = path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			proof, proofHeight := path.EndpointB.QueryProof(host.PacketReceiptKey(packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence()))

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			err = clientState.VerifyPacketReceiptAbsence(
				ctx, clientStore, s.chainA.App.Codec(), proofHeight, 0, 0, s.chainB.GetPrefix(), proof,
				packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(),
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *TendermintTestSuite) TestVerifyNextSequenceRecv() {
	var (
		path        *ibctesting.Path
		nextSeqRecv uint64
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"successful verification", func() {}, nil},
		{"next sequence recv does not match", func() {
			nextSeqRecv = 2
		}, commitmenttypes.ErrInvalidProof},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetChannelOrdered()
			path.Setup()

			err := path.EndpointA.UpdateClient()
			s.Require().NoError(err)

			nextSeqRecv = 1

			tc.malleate()

			clientState := path.EndpointA.GetClientState().(*ibctm.ClientState)
			proof, proofHeight := path.EndpointB.QueryProof(host.NextSequenceRecvKey(path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID))

			ctx := s.chainA.GetContext()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			err = clientState.VerifyNextSequenceRecv(
				ctx, clientStore, s.chainA.App.Codec(), proofHeight, 0, 0, s.chainB.GetPrefix(), proof,
				path.EndpointB.ChannelConfig.PortID, path.EndpointB.ChannelID, nextSeqRecv,
			)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
