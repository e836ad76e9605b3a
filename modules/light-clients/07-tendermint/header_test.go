package tendermint_test

import (
	"errors"
	"time"

	tmprotocrypto "github.com/tendermint/tendermint/proto/tendermint/crypto"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
)

func (s *TendermintTestSuite) TestGetHeight() {
	header := s.chainA.LatestHeader()
	s.Require().NotEqual(uint64(0), header.GetHeight().GetRevisionHeight())
	s.Require().Equal(s.chainA.Revision(), header.GetHeight().GetRevisionNumber())

	s.Require().Equal(height, s.header.GetHeight())
}

func (s *TendermintTestSuite) TestGetTime() {
	header := s.chainA.LatestHeader()
	s.Require().NotEqual(time.Time{}, header.GetTime())

	s.Require().True(s.now.Equal(s.header.GetTime()))
}

func (s *TendermintTestSuite) TestHeaderConsensusState() {
	consensusState := s.header.ConsensusState()

	s.Require().True(s.now.Equal(consensusState.Timestamp))
	s.Require().Equal(s.header.Header.GetAppHash(), consensusState.Root.GetHash())
	s.Require().Equal(s.header.Header.NextValidatorsHash, []byte(consensusState.NextValidatorsHash))
}

func (s *TendermintTestSuite) TestHeaderValidateBasic() {
	var header *ibctm.Header
	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"valid header", func() {}, nil},
		{"header is nil", func() {
			header.Header = nil
		}, errors.New("tendermint header cannot be nil")},
		{"signed header is nil", func() {
			header.SignedHeader = nil
		}, errors.New("tendermint signed header cannot be nil")},
		{"SignedHeaderFromProto failed", func() {
			header.Commit.Height = -1
		}, errors.New("header is not a tendermint header")},
		{"signed header failed tendermint ValidateBasic", func() {
			header.Commit = nil
		}, errors.New("header failed basic validation")},
		{"trusted height is equal to header height", func() {
			header.TrustedHeight = header.GetHeight().(clienttypes.Height)
		}, errors.New("invalid header height")},
		{"validator set nil", func() {
			header.ValidatorSet = nil
		}, errors.New("validator set is nil")},
		{"ValidatorSetFromProto failed", func() {
			header.ValidatorSet.Validators[0].PubKey = tmprotocrypto.PublicKey{}
		}, errors.New("validator set is not tendermint validator set")},
		{"header validator hash does not equal hash of validator set", func() {
			// use the single validator set of the suite
			valSet, err := s.valSet.ToProto()
			s.Require().NoError(err)
			header.ValidatorSet = valSet
		}, errors.New("validator set does not match hash")},
	}

	s.Require().Equal(exported.Tendermint, s.header.ClientType())

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest()

			header = s.chainA.LatestHeader() // must be explicitly changed in malleate

			tc.malleate()

			err := header.ValidateBasic()

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().Error(err)
				s.Require().Contains(err.Error(), tc.expErr.Error())
			}
		})
	}
}
