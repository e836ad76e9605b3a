package keeper

import (
	"math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// VerifyClientState verifies a proof of a client state of the running machine
// stored on the target machine
func (k Keeper) VerifyClientState(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	clientState exported.ClientState,
) error {
	clientID := connection.GetClientID()
	targetClient, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	if err := targetClient.VerifyClientState(
		clientStore, k.cdc, height,
		connection.GetCounterparty().GetPrefix(), connection.GetCounterparty().GetClientID(), proof, clientState,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedClientStateVerification, "failed client state verification for target client (%s): %s", clientID, err)
	}

	return nil
}

// VerifyClientConsensusState verifies a proof of the consensus state of the
// specified client stored on the target machine.
func (k Keeper) VerifyClientConsensusState(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	consensusHeight exported.Height,
	proof []byte,
	consensusState exported.ConsensusState,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	if err := clientState.VerifyClientConsensusState(
		clientStore, k.cdc, height,
		connection.GetCounterparty().GetClientID(), consensusHeight, connection.GetCounterparty().GetPrefix(), proof, consensusState,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedClientConsensusStateVerification, "failed consensus state verification for client (%s) at consensus height %s: %s", clientID, consensusHeight, err)
	}

	return nil
}

// VerifyConnectionState verifies a proof of the connection state of the
// specified connection end stored on the target machine.
func (k Keeper) VerifyConnectionState(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	connectionID string,
	connectionEnd exported.ConnectionI, // opposite connection
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	if err := clientState.VerifyConnectionState(
		clientStore, k.cdc, height,
		connection.GetCounterparty().GetPrefix(), proof, connectionID, connectionEnd,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedConnectionStateVerification, "failed connection state verification for client (%s) of connection (%s): %s", clientID, connectionID, err)
	}

	return nil
}

// VerifyChannelState verifies a proof of the channel state of the specified
// channel end, under the specified port, stored on the target machine.
func (k Keeper) VerifyChannelState(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	portID,
	channelID string,
	channel exported.ChannelI,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	if err := clientState.VerifyChannelState(
		clientStore, k.cdc, height,
		connection.GetCounterparty().GetPrefix(), proof,
		portID, channelID, channel,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedChannelStateVerification, "failed channel state verification for client (%s) of channel (%s/%s): %s", clientID, portID, channelID, err)
	}

	return nil
}

// VerifyPacketCommitment verifies a proof of an outgoing packet commitment at
// the specified port, specified channel, and specified sequence.
func (k Keeper) VerifyPacketCommitment(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
	commitmentBytes []byte,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	// get time and block delays
	timeDelay := connection.GetDelayPeriod()
	blockDelay := k.getBlockDelay(ctx, connection)

	if err := clientState.VerifyPacketCommitment(
		ctx, clientStore, k.cdc, height,
		timeDelay, blockDelay,
		connection.GetCounterparty().GetPrefix(), proof, portID, channelID,
		sequence, commitmentBytes,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedPacketCommitmentVerification, "failed packet commitment verification for client (%s) at sequence %d: %s", clientID, sequence, err)
	}

	return nil
}

// VerifyPacketAcknowledgement verifies a proof of an incoming packet
// acknowledgement at the specified port, specified channel, and specified sequence.
func (k Keeper) VerifyPacketAcknowledgement(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
	acknowledgement []byte,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	// get time and block delays
	timeDelay := connection.GetDelayPeriod()
	blockDelay := k.getBlockDelay(ctx, connection)

	if err := clientState.VerifyPacketAcknowledgement(
		ctx, clientStore, k.cdc, height,
		timeDelay, blockDelay,
		connection.GetCounterparty().GetPrefix(), proof, portID, channelID,
		sequence, acknowledgement,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedPacketAckVerification, "failed packet acknowledgement verification for client (%s) at sequence %d: %s", clientID, sequence, err)
	}

	return nil
}

// VerifyPacketReceiptAbsence verifies a proof of the absence of an
// incoming packet receipt at the specified port, specified channel, and
// specified sequence.
func (k Keeper) VerifyPacketReceiptAbsence(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	// get time and block delays
	timeDelay := connection.GetDelayPeriod()
	blockDelay := k.getBlockDelay(ctx, connection)

	if err := clientState.VerifyPacketReceiptAbsence(
		ctx, clientStore, k.cdc, height,
		timeDelay, blockDelay,
		connection.GetCounterparty().GetPrefix(), proof, portID, channelID,
		sequence,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedPacketReceiptVerification, "failed packet receipt absence verification for client (%s) at sequence %d: %s", clientID, sequence, err)
	}

	return nil
}

// VerifyNextSequenceRecv verifies a proof of the next sequence number to be
// received of the specified channel at the specified port.
func (k Keeper) VerifyNextSequenceRecv(
	ctx sdk.Context,
	connection exported.ConnectionI,
	height exported.Height,
	proof []byte,
	portID,
	channelID string,
	nextSequenceRecv uint64,
) error {
	clientID := connection.GetClientID()
	clientState, clientStore, err := k.getActiveClient(ctx, clientID)
	if err != nil {
		return err
	}

	// get time and block delays
	timeDelay := connection.GetDelayPeriod()
	blockDelay := k.getBlockDelay(ctx, connection)

	if err := clientState.VerifyNextSequenceRecv(
		ctx, clientStore, k.cdc, height,
		timeDelay, blockDelay,
		connection.GetCounterparty().GetPrefix(), proof, portID, channelID,
		nextSequenceRecv,
	); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedNextSeqRecvVerification, "failed next sequence receive verification for client (%s): %s", clientID, err)
	}

	return nil
}

// getBlockDelay calculates the block delay period from the time delay of the connection
// and the maximum expected time per block.
func (k Keeper) getBlockDelay(ctx sdk.Context, connection exported.ConnectionI) uint64 {
	// SetParams never stores a zero expected time per block
	expectedTimePerBlock := k.GetParams(ctx).MaxExpectedTimePerBlock
	// calculate minimum block delay by dividing time delay period
	// by the expected time per block. Round up the block delay.
	timeDelay := connection.GetDelayPeriod()
	return uint64(math.Ceil(float64(timeDelay) / float64(expectedTimePerBlock)))
}

// getActiveClient returns the client state and client store of an Active
// client. A frozen client fails with ErrClientFrozen, any other non-active
// status with ErrClientNotActive.
func (k Keeper) getActiveClient(ctx sdk.Context, clientID string) (exported.ClientState, sdk.KVStore, error) {
	clientState, found := k.clientKeeper.GetClientState(ctx, clientID)
	if !found {
		return nil, nil, sdkerrors.Wrap(clienttypes.ErrClientNotFound, clientID)
	}

	clientStore := k.clientKeeper.ClientStore(ctx, clientID)

	switch status := k.clientKeeper.GetClientStatus(ctx, clientState, clientID); status {
	case exported.Active:
		return clientState, clientStore, nil
	case exported.Frozen:
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrClientFrozen, "client (%s) frozen at height %s", clientID, clientState.GetLatestHeight())
	default:
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrClientNotActive, "client (%s) status is %s", clientID, status)
	}
}
