package tendermint_test

import (
	"time"

	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
)

func (s *TendermintTestSuite) TestConsensusStateValidateBasic() {
	testCases := []struct {
		msg            string
		consensusState *ibctm.ConsensusState
		expPass        bool
	}{
		{
			"success",
			&ibctm.ConsensusState{
				Timestamp:          s.now,
				Root:               commitmenttypes.NewMerkleRoot([]byte("app_hash")),
				NextValidatorsHash: s.valSet.Hash(),
			},
			true,
		},
		{
			"root is nil",
			&ibctm.ConsensusState{
				Timestamp:          s.now,
				Root:               commitmenttypes.MerkleRoot{},
				NextValidatorsHash: s.valSet.Hash(),
			},
			false,
		},
		{
			"root is empty",
			&ibctm.ConsensusState{
				Timestamp:          s.now,
				Root:               commitmenttypes.NewMerkleRoot([]byte{}),
				NextValidatorsHash: s.valSet.Hash(),
			},
			false,
		},
		{
			"next validators hash is invalid",
			&ibctm.ConsensusState{
				Timestamp:          s.now,
				Root:               commitmenttypes.NewMerkleRoot([]byte("app_hash")),
				NextValidatorsHash: []byte("hi"),
			},
			false,
		},
		{
			"timestamp is zero",
			&ibctm.ConsensusState{
				Timestamp:          time.Time{},
				Root:               commitmenttypes.NewMerkleRoot([]byte("app_hash")),
				NextValidatorsHash: s.valSet.Hash(),
			},
			false,
		},
	}

	for i, tc := range testCases {
		tc := tc

		s.Run(tc.msg, func() {
			// check just to increase coverage
			s.Require().Equal(exported.Tendermint, tc.consensusState.ClientType())
			s.Require().Equal(tc.consensusState.GetRoot(), tc.consensusState.Root)

			if tc.expPass {
				s.Require().NoError(tc.consensusState.ValidateBasic(), "valid test case %d failed: %s", i, tc.msg)
			} else {
				s.Require().Error(tc.consensusState.ValidateBasic(), "invalid test case %d passed: %s", i, tc.msg)
			}
		})
	}
}

func (s *TendermintTestSuite) TestConsensusStateTimestamp() {
	consensusState := ibctm.NewConsensusState(s.now, commitmenttypes.NewMerkleRoot([]byte("app_hash")), s.valSet.Hash())
	s.Require().Equal(uint64(s.now.UnixNano()), consensusState.GetTimestamp())
}
