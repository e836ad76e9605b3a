package keeper

import (
	"bytes"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// ConnOpenInit initialises a connection attempt on chain A. The generated connection identifier
// is returned.
//
// A non-empty connectionID requests that identifier instead of a generated one; it must not
// be bound yet.
//
// NOTE: Msg validation verifies the supplied identifiers and ensures that the counterparty
// connection identifier is empty.
func (k Keeper) ConnOpenInit(
	ctx sdk.Context,
	connectionID string,
	clientID string,
	counterparty types.Counterparty, // counterpartyPrefix, counterpartyClientIdentifier
	version *types.Version,
	delayPeriod uint64,
) (string, error) {
	versions := types.GetCompatibleVersions()
	if version != nil {
		if !types.IsSupportedVersion(types.GetCompatibleVersions(), version) {
			return "", sdkerrors.Wrapf(types.ErrVersionNotSupported, "version %v is not supported", version)
		}

		versions = []*types.Version{version}
	}

	if _, _, err := k.getActiveClient(ctx, clientID); err != nil {
		return "", err
	}

	if connectionID != "" {
		if existing, found := k.GetConnection(ctx, connectionID); found {
			return "", sdkerrors.Wrapf(types.ErrConnectionExists, "connection (%s) is already in state %s", connectionID, existing.State)
		}
	} else {
		connectionID = k.GenerateConnectionIdentifier(ctx)
	}

	if err := k.addConnectionToClient(ctx, clientID, connectionID); err != nil {
		return "", err
	}

	// connection defines chain A's ConnectionEnd
	connection := types.NewConnectionEnd(types.INIT, clientID, counterparty, versions, delayPeriod)
	k.SetConnection(ctx, connectionID, connection)

	k.Logger(ctx).Info("connection state updated", "connection-id", connectionID, "previous-state", types.UNINITIALIZED.String(), "new-state", types.INIT.String())

	defer telemetry.IncrCounter(1, "ibc", "connection", "open-init")

	EmitConnectionOpenInitEvent(ctx, connectionID, clientID, counterparty)

	return connectionID, nil
}

// ConnOpenTry relays notice of a connection attempt on chain A to chain B (this
// code is executed on chain B).
//
// NOTE:
//   - Here chain A acts as the counterparty
//   - Identifiers are checked on msg validation
func (k Keeper) ConnOpenTry(
	ctx sdk.Context,
	previousConnectionID string, // previousConnectionID refers to connectionID held by this chain
	counterparty types.Counterparty, // counterpartyConnectionIdentifier, counterpartyPrefix and counterpartyClientIdentifier
	delayPeriod uint64,
	clientID string, // clientID of chainA
	clientState exported.ClientState, // clientState that chainA has for chainB
	counterpartyVersions []*types.Version, // supported versions of chain A
	proofInit []byte, // proof that chainA stored connectionEnd in state (on ConnOpenInit)
	proofClient []byte, // proof that chainA stored a light client of chainB
	proofConsensus []byte, // proof that chainA stored chainB's consensus state at consensus height
	proofHeight exported.Height, // height at which relayer constructs proof of A storing connectionEnd in state
	consensusHeight exported.Height, // latest height of chain B which chain A has stored in its chain B client
) (string, error) {
	if err := k.validateConsensusHeight(ctx, consensusHeight); err != nil {
		return "", err
	}

	// validate client parameters of a chainB client stored on chainA
	if err := k.clientKeeper.ValidateSelfClient(ctx, clientState); err != nil {
		return "", err
	}

	if _, _, err := k.getActiveClient(ctx, clientID); err != nil {
		return "", err
	}

	var (
		connectionID       string
		previousConnection types.ConnectionEnd
		found              bool
	)

	// empty connection identifier indicates continuing a previous connection handshake
	if previousConnectionID != "" {
		// ensure that the previous connection exists
		previousConnection, found = k.GetConnection(ctx, previousConnectionID)
		if !found {
			return "", sdkerrors.Wrapf(types.ErrConnectionNotFound, "previous connection does not exist for supplied previous connectionID %s", previousConnectionID)
		}

		// ensure that the existing connection's
		// counterparty is chainA and connection is on INIT stage.
		// Check that existing connection versions for initialized connection is equal to compatible
		// versions for this chain.
		// ensure that existing connection's delay period is the same as desired delay period.
		if !(previousConnection.Counterparty.ConnectionId == "" &&
			bytes.Equal(previousConnection.Counterparty.Prefix.Bytes(), counterparty.Prefix.Bytes()) &&
			previousConnection.ClientId == clientID &&
			previousConnection.Counterparty.ClientId == counterparty.ClientId &&
			previousConnection.DelayPeriod == delayPeriod) {
			return "", sdkerrors.Wrapf(types.ErrConnectionMismatch, "connection fields mismatch previous connection (%s) fields", previousConnectionID)
		}

		if previousConnection.State != types.INIT {
			return "", sdkerrors.Wrapf(
				types.ErrInvalidConnectionState,
				"previous connection (%s) state is not INIT (got %s)", previousConnectionID, previousConnection.State,
			)
		}

		// continue with previous connection
		connectionID = previousConnectionID

	} else {
		// generate a new connection
		connectionID = k.GenerateConnectionIdentifier(ctx)
	}

	selfHeight := clienttypes.GetSelfHeight(ctx)
	expectedConsensusState, err := k.clientKeeper.GetSelfConsensusState(ctx, consensusHeight)
	if err != nil {
		return "", sdkerrors.Wrapf(err, "self consensus state not found for height %s", consensusHeight)
	}

	// expectedConnection defines Chain A's ConnectionEnd
	// NOTE: chain A's counterparty is chain B (i.e where this code is executed)
	// NOTE: chainA and chainB must have the same delay period
	prefix := k.GetCommitmentPrefix()
	expectedCounterparty := types.NewCounterparty(clientID, "", commitmenttypes.NewMerklePrefix(prefix.Bytes()))
	expectedConnection := types.NewConnectionEnd(types.INIT, counterparty.ClientId, expectedCounterparty, counterpartyVersions, delayPeriod)

	supportedVersions := types.GetCompatibleVersions()
	if len(previousConnection.Versions) != 0 {
		supportedVersions = previousConnection.Versions
	}

	// chain B picks a version from Chain A's available versions that is compatible
	// with Chain B's supported IBC versions. PickVersion will select the intersection
	// of the supported versions and the counterparty versions.
	version, err := types.PickVersion(supportedVersions, counterpartyVersions)
	if err != nil {
		return "", err
	}

	// connection defines chain B's ConnectionEnd
	connection := types.NewConnectionEnd(types.TRYOPEN, clientID, counterparty, []*types.Version{version}, delayPeriod)

	// Check that ChainA committed expectedConnectionEnd to its state
	if err := k.VerifyConnectionState(
		ctx, connection, proofHeight, proofInit, counterparty.ConnectionId,
		expectedConnection,
	); err != nil {
		return "", err
	}

	// Check that ChainA stored the clientState provided in the msg
	if err := k.VerifyClientState(ctx, connection, proofHeight, proofClient, clientState); err != nil {
		return "", err
	}

	// Check that ChainA stored the correct ConsensusState of chainB at the given consensusHeight
	if err := k.VerifyClientConsensusState(
		ctx, connection, proofHeight, consensusHeight, proofConsensus, expectedConsensusState,
	); err != nil {
		return "", err
	}

	// store connection in chainB state
	if previousConnectionID == "" {
		if err := k.addConnectionToClient(ctx, clientID, connectionID); err != nil {
			return "", sdkerrors.Wrapf(err, "failed to add connection with ID %s to client with ID %s", connectionID, clientID)
		}
	}

	k.SetConnection(ctx, connectionID, connection)
	k.Logger(ctx).Info("connection state updated", "connection-id", connectionID, "previous-state", previousConnection.State.String(), "new-state", types.TRYOPEN.String(), "self-height", selfHeight.String())

	defer telemetry.IncrCounter(1, "ibc", "connection", "open-try")

	EmitConnectionOpenTryEvent(ctx, connectionID, clientID, counterparty)

	return connectionID, nil
}

// ConnOpenAck relays acceptance of a connection open attempt from chain B back
// to chain A (this code is executed on chain A).
//
// NOTE: Identifiers are checked on msg validation.
func (k Keeper) ConnOpenAck(
	ctx sdk.Context,
	connectionID string,
	clientState exported.ClientState, // client state for chainA on chainB
	version *types.Version, // version that ChainB chose in ConnOpenTry
	counterpartyConnectionID string,
	proofTry []byte, // proof that connectionEnd was added to ChainB state in ConnOpenTry
	proofClient []byte, // proof of client state on chainB for chainA
	proofConsensus []byte, // proof that chainB has stored ConsensusState of chainA on its client
	proofHeight exported.Height, // height that relayer constructed proofTry
	consensusHeight exported.Height, // latest height of chainA that chainB has stored on its chainA client
) error {
	if err := k.validateConsensusHeight(ctx, consensusHeight); err != nil {
		return err
	}

	// Retrieve connection
	connection, found := k.GetConnection(ctx, connectionID)
	if !found {
		return sdkerrors.Wrapf(types.ErrConnectionNotFound, "connection (%s)", connectionID)
	}

	// Verify the connection state and version
	switch {
	// connection on ChainA must be in INIT or TRYOPEN
	case connection.State != types.INIT && connection.State != types.TRYOPEN:
		return sdkerrors.Wrapf(
			types.ErrInvalidConnectionState,
			"connection (%s) state is not INIT or TRYOPEN (got %s)", connectionID, connection.State,
		)

	// if the connection is TRYOPEN, the counterparty connection id it already
	// recorded must be the one chain B now reports
	case connection.State == types.TRYOPEN && connection.Counterparty.ConnectionId != "" &&
		connection.Counterparty.ConnectionId != counterpartyConnectionID:
		return sdkerrors.Wrapf(
			types.ErrConnectionIDMismatch,
			"connection (%s) counterparty connection id %s != %s", connectionID, connection.Counterparty.ConnectionId, counterpartyConnectionID,
		)

	// ensure selected version is one of the versions this chain proposed
	case !types.IsSupportedVersion(connection.Versions, version):
		return sdkerrors.Wrapf(
			types.ErrNoCommonVersion,
			"connection (%s) proposed versions %v do not contain the selected version %v", connectionID, connection.Versions, version,
		)

	// ensure the selected version is compatible with this chain
	case !types.IsSupportedVersion(types.GetCompatibleVersions(), version):
		return sdkerrors.Wrapf(types.ErrVersionNotSupported, "version %v", version)
	}

	// validate client parameters of a chainA client stored on chainB
	if err := k.clientKeeper.ValidateSelfClient(ctx, clientState); err != nil {
		return err
	}

	// Retrieve chainA's consensus state at consensusheight
	expectedConsensusState, err := k.clientKeeper.GetSelfConsensusState(ctx, consensusHeight)
	if err != nil {
		return sdkerrors.Wrapf(err, "self consensus state not found for height %s", consensusHeight)
	}

	prefix := k.GetCommitmentPrefix()
	expectedCounterparty := types.NewCounterparty(connection.ClientId, connectionID, commitmenttypes.NewMerklePrefix(prefix.Bytes()))
	expectedConnection := types.NewConnectionEnd(types.TRYOPEN, connection.Counterparty.ClientId, expectedCounterparty, []*types.Version{version}, connection.DelayPeriod)

	// Ensure that ChainB stored expected connectionEnd in its state during ConnOpenTry
	if err := k.VerifyConnectionState(
		ctx, connection, proofHeight, proofTry, counterpartyConnectionID,
		expectedConnection,
	); err != nil {
		return err
	}

	// Check that ChainB stored the clientState provided in the msg
	if err := k.VerifyClientState(ctx, connection, proofHeight, proofClient, clientState); err != nil {
		return err
	}

	// Ensure that ChainB has stored the correct ConsensusState for chainA at the consensusHeight
	if err := k.VerifyClientConsensusState(
		ctx, connection, proofHeight, consensusHeight, proofConsensus, expectedConsensusState,
	); err != nil {
		return err
	}

	k.Logger(ctx).Info("connection state updated", "connection-id", connectionID, "previous-state", connection.State.String(), "new-state", types.OPEN.String())

	defer telemetry.IncrCounter(1, "ibc", "connection", "open-ack")

	// Update connection state to Open
	connection.State = types.OPEN
	connection.Versions = []*types.Version{version}
	connection.Counterparty.ConnectionId = counterpartyConnectionID
	k.SetConnection(ctx, connectionID, connection)

	EmitConnectionOpenAckEvent(ctx, connectionID, connection)

	return nil
}

// ConnOpenConfirm confirms opening of a connection on chain A to chain B, after
// which the connection is open on both chains (this code is executed on chain B).
//
// NOTE: Identifiers are checked on msg validation.
func (k Keeper) ConnOpenConfirm(
	ctx sdk.Context,
	connectionID string,
	proofAck []byte, // proof that connection opened on ChainA during ConnOpenAck
	proofHeight exported.Height, // height that relayer constructed proofAck
) error {
	// Retrieve connection
	connection, found := k.GetConnection(ctx, connectionID)
	if !found {
		return sdkerrors.Wrapf(types.ErrConnectionNotFound, "connection (%s)", connectionID)
	}

	// Check that connection state on ChainB is on state: TRYOPEN
	if connection.State != types.TRYOPEN {
		return sdkerrors.Wrapf(
			types.ErrInvalidConnectionState,
			"connection (%s) state is not TRYOPEN (got %s)", connectionID, connection.State,
		)
	}

	prefix := k.GetCommitmentPrefix()
	expectedCounterparty := types.NewCounterparty(connection.ClientId, connectionID, commitmenttypes.NewMerklePrefix(prefix.Bytes()))
	expectedConnection := types.NewConnectionEnd(types.OPEN, connection.Counterparty.ClientId, expectedCounterparty, connection.Versions, connection.DelayPeriod)

	// Check that connection on ChainA is open
	if err := k.VerifyConnectionState(
		ctx, connection, proofHeight, proofAck, connection.Counterparty.ConnectionId,
		expectedConnection,
	); err != nil {
		return err
	}

	// Update ChainB's connection to Open
	connection.State = types.OPEN
	k.SetConnection(ctx, connectionID, connection)
	k.Logger(ctx).Info("connection state updated", "connection-id", connectionID, "previous-state", types.TRYOPEN.String(), "new-state", types.OPEN.String())

	defer telemetry.IncrCounter(1, "ibc", "connection", "open-confirm")

	EmitConnectionOpenConfirmEvent(ctx, connectionID, connection)

	return nil
}

// validateConsensusHeight checks that the consensus height the counterparty
// claims to hold of this chain is below the current height and has not been
// pruned from the historical info.
func (k Keeper) validateConsensusHeight(ctx sdk.Context, consensusHeight exported.Height) error {
	selfHeight := clienttypes.GetSelfHeight(ctx)
	if consensusHeight.GTE(selfHeight) {
		return sdkerrors.Wrapf(
			types.ErrInvalidConsensusHeight,
			"consensus height is greater than or equal to the current block height (%s >= %s)", consensusHeight, selfHeight,
		)
	}

	oldestHeight := k.clientKeeper.GetOldestSelfHeight(ctx)
	if consensusHeight.LT(oldestHeight) {
		return sdkerrors.Wrapf(
			types.ErrStaleConsensusHeight,
			"consensus height is older than the oldest retained height (%s < %s)", consensusHeight, oldestHeight,
		)
	}

	return nil
}
