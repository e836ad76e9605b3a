package tendermint_test

import (
	ics23 "github.com/confio/ics23/go"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

func (s *TendermintTestSuite) TestGetSelfConsensusState() {
	var height exported.Height

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"revision number does not match the chain id", func() {
			height = clienttypes.NewHeight(2, height.GetRevisionHeight())
		}, clienttypes.ErrInvalidHeight},
		{"no historical info at height", func() {
			height = clienttypes.NewHeight(height.GetRevisionNumber(), 1000)
		}, clienttypes.ErrSelfConsensusStateNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset

			height = s.chainA.LatestHeight()

			tc.malleate()

			consensusHost := ibctm.NewConsensusHost(s.chainA.App.HostKeeper)
			consensusState, err := consensusHost.GetSelfConsensusState(s.chainA.GetContext(), height)

			if tc.expErr == nil {
				s.Require().NoError(err)

				tmConsensusState, ok := consensusState.(*ibctm.ConsensusState)
				s.Require().True(ok)
				s.Require().True(s.chainA.LastHeader.GetTime().Equal(tmConsensusState.Timestamp))
				s.Require().Equal([]byte(s.chainA.LastHeader.Header.NextValidatorsHash), []byte(tmConsensusState.NextValidatorsHash))
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Nil(consensusState)
			}
		})
	}
}

// TestValidateSelfClient validates a client of chainA, as held by a counterparty.
func (s *TendermintTestSuite) TestValidateSelfClient() {
	var clientState exported.ClientState

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"success with a trusting period equal to the unbonding period", func() {
			tmClient := clientState.(*ibctm.ClientState)
			tmClient.TrustingPeriod = tmClient.UnbondingPeriod
		}, nil},
		{"not a tendermint client", func() {
			clientState = nil
		}, clienttypes.ErrInvalidClient},
		{"frozen client", func() {
			clientState.(*ibctm.ClientState).FrozenHeight = clienttypes.NewHeight(1, 1)
		}, clienttypes.ErrClientFrozen},
		{"incorrect chain id", func() {
			clientState.(*ibctm.ClientState).ChainId = "gaiatestnet"
		}, clienttypes.ErrInvalidClient},
		{"invalid client revision", func() {
			tmClient := clientState.(*ibctm.ClientState)
			tmClient.LatestHeight = clienttypes.NewHeight(2, tmClient.LatestHeight.RevisionHeight)
		}, clienttypes.ErrInvalidClient},
		{"client height not less than the chain height", func() {
			tmClient := clientState.(*ibctm.ClientState)
			tmClient.LatestHeight = clienttypes.GetSelfHeight(s.chainA.GetContext())
		}, clienttypes.ErrInvalidClient},
		{"invalid proof specs", func() {
			clientState.(*ibctm.ClientState).ProofSpecs = []*ics23.ProofSpec{ics23.TendermintSpec}
		}, clienttypes.ErrInvalidClient},
		{"nil proof spec", func() {
			clientState.(*ibctm.ClientState).ProofSpecs = []*ics23.ProofSpec{nil, ics23.TendermintSpec}
		}, clienttypes.ErrInvalidClient},
		{"invalid trust level", func() {
			clientState.(*ibctm.ClientState).TrustLevel = ibctm.Fraction{Numerator: 0, Denominator: 1}
		}, clienttypes.ErrInvalidClient},
		{"invalid unbonding period", func() {
			clientState.(*ibctm.ClientState).UnbondingPeriod = ibctesting.UnbondingPeriod + 10
		}, clienttypes.ErrInvalidClient},
		{"trusting period greater than the unbonding period", func() {
			clientState.(*ibctm.ClientState).TrustingPeriod = ibctesting.UnbondingPeriod + 10
		}, clienttypes.ErrInvalidClient},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset

			clientState = ibctm.NewClientState(
				s.chainA.ChainID, ibctm.DefaultTrustLevel, ibctesting.TrustingPeriod, ibctesting.UnbondingPeriod,
				ibctesting.MaxClockDrift, s.chainA.LatestHeight(), commitmenttypes.GetSDKSpecs(),
			)

			tc.malleate()

			consensusHost := ibctm.NewConsensusHost(s.chainA.App.HostKeeper)
			err := consensusHost.ValidateSelfClient(s.chainA.GetContext(), clientState)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
