package tendermint

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/light"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

var _ clienttypes.ConsensusHost = (*ConsensusHost)(nil)

// ConsensusHost implements the 02-client clienttypes.ConsensusHost interface
// for a host chain running tendermint consensus.
type ConsensusHost struct {
	hostKeeper clienttypes.HostKeeper
}

// NewConsensusHost creates and returns a new ConsensusHost for tendermint consensus.
func NewConsensusHost(hostKeeper clienttypes.HostKeeper) *ConsensusHost {
	return &ConsensusHost{
		hostKeeper: hostKeeper,
	}
}

// GetSelfConsensusState implements the 02-client clienttypes.ConsensusHost interface.
func (c *ConsensusHost) GetSelfConsensusState(ctx sdk.Context, height exported.Height) (exported.ConsensusState, error) {
	selfHeight, ok := height.(clienttypes.Height)
	if !ok {
		return nil, sdkerrors.Wrapf(ibcerrors.ErrInvalidType, "expected %T, got %T", clienttypes.Height{}, height)
	}

	// check that height revision matches chainID revision
	revision := clienttypes.ParseChainID(ctx.ChainID())
	if revision != height.GetRevisionNumber() {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "chainID revision number does not match height revision number: expected %d, got %d", revision, height.GetRevisionNumber())
	}

	histInfo, found := c.hostKeeper.GetHistoricalInfo(ctx, int64(selfHeight.RevisionHeight))
	if !found {
		return nil, sdkerrors.Wrapf(clienttypes.ErrSelfConsensusStateNotFound, "no historical info for height %d", selfHeight.RevisionHeight)
	}

	consensusState := &ConsensusState{
		Timestamp:          histInfo.Time,
		Root:               commitmenttypes.NewMerkleRoot(histInfo.AppHash),
		NextValidatorsHash: histInfo.NextValidatorsHash,
	}

	return consensusState, nil
}

// ValidateSelfClient implements the 02-client clienttypes.ConsensusHost interface.
func (c *ConsensusHost) ValidateSelfClient(ctx sdk.Context, clientState exported.ClientState) error {
	tmClient, ok := clientState.(*ClientState)
	if !ok {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client must be a Tendermint client, expected: %T, got: %T", &ClientState{}, clientState)
	}

	if !tmClient.FrozenHeight.IsZero() {
		return clienttypes.ErrClientFrozen
	}

	if ctx.ChainID() != tmClient.ChainId {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "invalid chain-id. expected: %s, got: %s",
			ctx.ChainID(), tmClient.ChainId)
	}

	revision := clienttypes.ParseChainID(ctx.ChainID())

	// client must be in the same revision as executing chain
	if tmClient.LatestHeight.RevisionNumber != revision {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client is not in the same revision as the chain. expected revision: %d, got: %d",
			tmClient.LatestHeight.RevisionNumber, revision)
	}

	selfHeight := clienttypes.NewHeight(revision, uint64(ctx.BlockHeight()))
	if tmClient.LatestHeight.GTE(selfHeight) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client has LatestHeight %d greater than or equal to chain height %d",
			tmClient.LatestHeight, selfHeight)
	}

	if err := validateProofSpecs(tmClient); err != nil {
		return err
	}

	if err := light.ValidateTrustLevel(tmClient.TrustLevel.ToTendermint()); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "trust-level invalid: %v", err)
	}

	expectedUbdPeriod := c.hostKeeper.UnbondingTime(ctx)
	if expectedUbdPeriod != tmClient.UnbondingPeriod {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "invalid unbonding period. expected: %s, got: %s",
			expectedUbdPeriod, tmClient.UnbondingPeriod)
	}

	if tmClient.UnbondingPeriod < tmClient.TrustingPeriod {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "unbonding period must be greater than trusting period. unbonding period (%d) < trusting period (%d)",
			tmClient.UnbondingPeriod, tmClient.TrustingPeriod)
	}

	return nil
}

// validateProofSpecs compares the encoded specs, an amino round-trip may turn
// empty slices into nil.
func validateProofSpecs(tmClient *ClientState) error {
	expectedProofSpecs := commitmenttypes.GetSDKSpecs()
	if len(expectedProofSpecs) != len(tmClient.ProofSpecs) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client has invalid proof specs. expected %d specs, got %d",
			len(expectedProofSpecs), len(tmClient.ProofSpecs))
	}
	for i, spec := range tmClient.ProofSpecs {
		if spec == nil {
			return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client has nil proof spec at index %d", i)
		}
		expected, err := expectedProofSpecs[i].Marshal()
		if err != nil {
			return sdkerrors.Wrap(ibcerrors.ErrMarshal, err.Error())
		}
		got, err := spec.Marshal()
		if err != nil {
			return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client has invalid proof spec at index %d: %v", i, err)
		}
		if string(expected) != string(got) {
			return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "client has invalid proof spec at index %d. expected: %v got: %v",
				i, expectedProofSpecs[i], spec)
		}
	}
	return nil
}
