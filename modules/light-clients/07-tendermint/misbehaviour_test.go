package tendermint_test

import (
	"time"

	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	ibctesting "github.com/hyperspace-relayer/ibc-core/testing"
)

func (s *TendermintTestSuite) TestMisbehaviour() {
	heightMinus1 := clienttypes.NewHeight(0, height.RevisionHeight-1)

	misbehaviour := &ibctm.Misbehaviour{
		Header1:  s.header,
		Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
		ClientId: clientID,
	}

	s.Require().Equal(exported.Tendermint, misbehaviour.ClientType())
	s.Require().Equal(clientID, misbehaviour.GetClientID())
	s.Require().Equal(height, misbehaviour.GetHeight())
	s.Require().True(s.now.Add(time.Minute).Equal(misbehaviour.GetTime()))
}

func (s *TendermintTestSuite) TestMisbehaviourValidateBasic() {
	heightMinus1 := clienttypes.NewHeight(0, height.RevisionHeight-1)

	altPrivVal := tmtypes.NewMockPV()
	altPubKey, err := altPrivVal.GetPubKey()
	s.Require().NoError(err)
	altVal := tmtypes.NewValidator(altPubKey, 10)

	// a validator set the suite signers are not part of
	altValSet := tmtypes.NewValidatorSet([]*tmtypes.Validator{altVal})
	altSigners := []tmtypes.PrivValidator{altPrivVal}

	testCases := []struct {
		name                 string
		misbehaviour         *ibctm.Misbehaviour
		malleateMisbehaviour func(misbehaviour *ibctm.Misbehaviour) error
		expPass              bool
	}{
		{
			"valid fork misbehaviour",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			true,
		},
		{
			"valid time misbehaviour, header 1 at greater height",
			&ibctm.Misbehaviour{
				Header1:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight+1), heightMinus1, s.now, s.valSet, s.valSet, s.signers),
				Header2:  s.header,
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			true,
		},
		{
			"valid misbehaviour with different trusted heights",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), clienttypes.NewHeight(0, height.RevisionHeight-3), s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			true,
		},
		{
			"header 1 is nil",
			&ibctm.Misbehaviour{
				Header1:  nil,
				Header2:  s.header,
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"header 2 is nil",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  nil,
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"header 1 has zero trusted height",
			&ibctm.Misbehaviour{
				Header1:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), clienttypes.ZeroHeight(), s.now, s.valSet, s.valSet, s.signers),
				Header2:  s.header,
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"header 2 has nil trusted validators",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, nil, s.signers),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"headers have different chain ids",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader("ethermint", int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"invalid client id",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
				ClientId: "GAIA",
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"header 1 fails basic validation",
			&ibctm.Misbehaviour{
				Header1:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now, s.valSet, s.valSet, s.signers),
				Header2:  s.header,
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error {
				valSet, err := altValSet.ToProto()
				if err != nil {
					return err
				}
				misbehaviour.Header1.ValidatorSet = valSet
				return nil
			},
			false,
		},
		{
			"header 1 at a lower height than header 2",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight+2), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error { return nil },
			false,
		},
		{
			"header 2 commit not signed by its validator set",
			&ibctm.Misbehaviour{
				Header1:  s.header,
				Header2:  s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), altValSet, s.valSet, altSigners),
				ClientId: clientID,
			},
			func(misbehaviour *ibctm.Misbehaviour) error {
				// signatures over a different block
				commit := s.chainA.CreateTMClientHeader(chainID, int64(height.RevisionHeight), heightMinus1, s.now.Add(time.Minute), s.valSet, s.valSet, s.signers)
				misbehaviour.Header2.Commit.Signatures = commit.Commit.Signatures
				return nil
			},
			false,
		},
	}

	for i, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			err := tc.malleateMisbehaviour(tc.misbehaviour)
			s.Require().NoError(err)

			if tc.expPass {
				s.Require().NoError(tc.misbehaviour.ValidateBasic(), "valid test case %d failed: %s", i, tc.name)
			} else {
				s.Require().Error(tc.misbehaviour.ValidateBasic(), "invalid test case %d passed: %s", i, tc.name)
			}
		})
	}
}

// TestCheckMisbehaviourAndUpdateState checks misbehaviour directly against the
// client store of the chainB client held by chainA.
func (s *TendermintTestSuite) TestCheckMisbehaviourAndUpdateState() {
	var (
		path         *ibctesting.Path
		misbehaviour exported.Misbehaviour
	)

	newHeader := func(height int64, timestamp time.Time) *ibctm.Header {
		trustHeight := path.EndpointA.GetClientState().GetLatestHeight().(clienttypes.Height)
		return s.chainB.CreateTMClientHeader(
			s.chainB.ChainID, height, trustHeight, timestamp,
			s.chainB.Vals, s.chainB.Vals, s.chainB.Signers,
		)
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"valid fork misbehaviour", func() {
			h := s.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute)),
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute+time.Second)),
			)
		}, nil},
		{"valid time misbehaviour", func() {
			h := s.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(h+1, s.chainB.LastHeader.GetTime().Add(time.Minute)),
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute+time.Second)),
			)
		}, nil},
		{"same block hash", func() {
			header := newHeader(s.chainB.LastHeader.Header.Height+1, s.chainB.LastHeader.GetTime().Add(time.Minute))
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID, header, header)
		}, clienttypes.ErrInvalidMisbehaviour},
		{"monotonic time between heights", func() {
			h := s.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(h+1, s.chainB.LastHeader.GetTime().Add(time.Minute+time.Second)),
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute)),
			)
		}, clienttypes.ErrInvalidMisbehaviour},
		{"trusted consensus state expired", func() {
			h := s.chainB.LastHeader.Header.Height + 1
			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute)),
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute+time.Second)),
			)
			s.chainA.ExpireClient(ibctesting.TrustingPeriod)
		}, ibctm.ErrTrustingPeriodExpired},
		{"trusted validators do not match the consensus state", func() {
			h := s.chainB.LastHeader.Header.Height + 1
			header2 := newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute+time.Second))

			valSet, err := s.valSet.ToProto()
			s.Require().NoError(err)
			header2.TrustedValidators = valSet

			misbehaviour = ibctm.NewMisbehaviour(path.EndpointA.ClientID,
				newHeader(h, s.chainB.LastHeader.GetTime().Add(time.Minute)),
				header2,
			)
		}, ibctm.ErrInvalidValidatorSet},
		{"not a tendermint misbehaviour", func() {
			misbehaviour = nil
		}, clienttypes.ErrInvalidClientType},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			path = ibctesting.NewPath(s.chainA, s.chainB)
			path.SetupClients()

			tc.malleate()

			ctx := s.chainA.GetContext()
			clientState := path.EndpointA.GetClientState()
			clientStore := s.chainA.App.IBCKeeper.ClientKeeper.ClientStore(ctx, path.EndpointA.ClientID)

			newClientState, err := clientState.CheckMisbehaviourAndUpdateState(ctx, s.chainA.App.Codec(), clientStore, misbehaviour)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(misbehaviour.(*ibctm.Misbehaviour).GetHeight(), newClientState.(*ibctm.ClientState).FrozenHeight)
				s.Require().Equal(exported.Frozen, newClientState.Status(ctx, clientStore, s.chainA.App.Codec()))

				// the stored client is left untouched
				s.Require().True(path.EndpointA.GetClientState().(*ibctm.ClientState).FrozenHeight.IsZero())
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Nil(newClientState)
			}
		})
	}
}
