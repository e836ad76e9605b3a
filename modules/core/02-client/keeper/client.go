package keeper

import (
	"github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibcmetrics "github.com/hyperspace-relayer/ibc-core/modules/core/metrics"
)

// CreateClient creates a new client state and populates it with a given consensus
// state as defined in https://github.com/cosmos/ibc/tree/master/spec/core/ics-002-client-semantics#create
func (k Keeper) CreateClient(
	ctx sdk.Context, clientState exported.ClientState, consensusState exported.ConsensusState,
) (string, error) {
	if err := clientState.Validate(); err != nil {
		return "", sdkerrors.Wrap(types.ErrInvalidClient, err.Error())
	}
	if err := consensusState.ValidateBasic(); err != nil {
		return "", sdkerrors.Wrap(types.ErrInvalidConsensus, err.Error())
	}
	if clientState.ClientType() != consensusState.ClientType() {
		return "", sdkerrors.Wrapf(
			types.ErrInvalidClientType,
			"client state type %s does not match consensus state type %s", clientState.ClientType(), consensusState.ClientType(),
		)
	}

	clientID := k.GenerateClientIdentifier(ctx, clientState.ClientType())

	k.SetClientState(ctx, clientID, clientState)
	k.SetClientConsensusState(ctx, clientID, clientState.GetLatestHeight(), consensusState)
	k.setConsensusMetadata(ctx, clientID, clientState.GetLatestHeight())

	if status := k.GetClientStatus(ctx, clientState, clientID); status != exported.Active {
		return "", sdkerrors.Wrapf(types.ErrClientNotActive, "cannot create client (%s) with status %s", clientID, status)
	}

	k.Logger(ctx).Info("client created at height", "client-id", clientID, "height", clientState.GetLatestHeight().String())

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "create"},
		1,
		[]metrics.Label{telemetry.NewLabel(ibcmetrics.LabelClientType, clientState.ClientType())},
	)

	EmitCreateClientEvent(ctx, clientID, clientState)

	return clientID, nil
}

// UpdateClient updates the consensus state and the state root from a provided header.
// A header which proves misbehaviour freezes the client instead.
func (k Keeper) UpdateClient(ctx sdk.Context, clientID string, header exported.Header) error {
	clientState, found := k.GetClientState(ctx, clientID)
	if !found {
		return sdkerrors.Wrapf(types.ErrClientNotFound, "cannot update client with ID %s", clientID)
	}

	clientStore := k.ClientStore(ctx, clientID)

	if status := clientState.Status(ctx, clientStore, k.cdc); status != exported.Active {
		if status == exported.Frozen {
			return sdkerrors.Wrapf(types.ErrClientFrozen, "cannot update client (%s)", clientID)
		}
		return sdkerrors.Wrapf(types.ErrClientNotActive, "cannot update client (%s) with status %s", clientID, status)
	}

	newClientState, newConsensusState, err := clientState.CheckHeaderAndUpdateState(ctx, k.cdc, clientStore, header)
	if err != nil {
		return sdkerrors.Wrapf(err, "cannot update client with ID %s", clientID)
	}

	// a header conflicting with stored state freezes the client
	if status := newClientState.Status(ctx, clientStore, k.cdc); status == exported.Frozen {
		k.SetClientState(ctx, clientID, newClientState)

		k.Logger(ctx).Info("client frozen due to misbehaviour", "client-id", clientID)

		defer telemetry.IncrCounterWithLabels(
			[]string{"ibc", "client", "misbehaviour"},
			1,
			[]metrics.Label{
				telemetry.NewLabel(ibcmetrics.LabelClientType, clientState.ClientType()),
				telemetry.NewLabel(ibcmetrics.LabelClientID, clientID),
				telemetry.NewLabel(ibcmetrics.LabelMsgType, "update"),
			},
		)

		EmitSubmitMisbehaviourEvent(ctx, clientID, newClientState)
		return nil
	}

	consensusHeight := header.GetHeight()
	k.SetClientState(ctx, clientID, newClientState)

	// a resubmitted header leaves the stored consensus state and its metadata untouched
	if _, ok := k.GetClientConsensusState(ctx, clientID, consensusHeight); !ok {
		k.SetClientConsensusState(ctx, clientID, consensusHeight, newConsensusState)
		k.setConsensusMetadata(ctx, clientID, consensusHeight)
	}

	k.Logger(ctx).Info("client state updated", "client-id", clientID, "height", consensusHeight.String())

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "update"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelClientType, clientState.ClientType()),
			telemetry.NewLabel(ibcmetrics.LabelClientID, clientID),
			telemetry.NewLabel(ibcmetrics.LabelUpdateType, "msg"),
		},
	)

	EmitUpdateClientEvent(ctx, clientID, clientState.ClientType(), consensusHeight)

	return nil
}

// CheckMisbehaviourAndFreeze checks the misbehaviour against the client it
// names and freezes the client if the evidence is valid.
func (k Keeper) CheckMisbehaviourAndFreeze(ctx sdk.Context, misbehaviour exported.Misbehaviour) error {
	clientState, found := k.GetClientState(ctx, misbehaviour.GetClientID())
	if !found {
		return sdkerrors.Wrapf(types.ErrClientNotFound, "cannot check misbehaviour for client with ID %s", misbehaviour.GetClientID())
	}

	clientStore := k.ClientStore(ctx, misbehaviour.GetClientID())

	if status := clientState.Status(ctx, clientStore, k.cdc); status != exported.Active {
		if status == exported.Frozen {
			return sdkerrors.Wrapf(types.ErrClientFrozen, "cannot process misbehaviour for client (%s)", misbehaviour.GetClientID())
		}
		return sdkerrors.Wrapf(types.ErrClientNotActive, "cannot process misbehaviour for client (%s) with status %s", misbehaviour.GetClientID(), status)
	}

	if err := misbehaviour.ValidateBasic(); err != nil {
		return err
	}

	clientState, err := clientState.CheckMisbehaviourAndUpdateState(ctx, k.cdc, clientStore, misbehaviour)
	if err != nil {
		return err
	}

	k.SetClientState(ctx, misbehaviour.GetClientID(), clientState)
	k.Logger(ctx).Info("client frozen due to misbehaviour", "client-id", misbehaviour.GetClientID())

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "misbehaviour"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelClientType, misbehaviour.ClientType()),
			telemetry.NewLabel(ibcmetrics.LabelClientID, misbehaviour.GetClientID()),
		},
	)

	EmitSubmitMisbehaviourEvent(ctx, misbehaviour.GetClientID(), clientState)

	return nil
}
