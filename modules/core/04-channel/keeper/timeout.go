package keeper

import (
	"bytes"
	"strconv"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// TimeoutPacket is called by a module which originally attempted to send a
// packet to a counterparty module, where the timeout height has passed on the
// counterparty chain without the packet being committed, to prove that the
// packet can no longer be executed and to allow the calling module to safely
// perform appropriate state transitions. The state changes happen in
// TimeoutExecuted.
func (k Keeper) TimeoutPacket(
	ctx sdk.Context,
	packet exported.PacketI,
	proof []byte,
	proofHeight exported.Height,
	nextSequenceRecv uint64,
) error {
	channel, connectionEnd, err := k.timeoutChannel(ctx, packet)
	if err != nil {
		return err
	}

	// check that timeout height or timeout timestamp has passed on the other end
	proofTimestamp, err := k.connectionKeeper.GetTimestampAtHeight(ctx, connectionEnd, proofHeight)
	if err != nil {
		return err
	}

	timeoutHeight := packet.GetTimeoutHeight()
	if (timeoutHeight.IsZero() || proofHeight.LT(timeoutHeight)) &&
		(packet.GetTimeoutTimestamp() == 0 || proofTimestamp < packet.GetTimeoutTimestamp()) {
		return sdkerrors.Wrapf(
			types.ErrTimeoutNotReached,
			"proof height (%s) and timestamp (%d) are below the packet timeout (%s, %d)",
			proofHeight, proofTimestamp, timeoutHeight, packet.GetTimeoutTimestamp(),
		)
	}

	if err := k.verifyCommitment(ctx, packet); err != nil {
		return err
	}

	return k.verifyNotReceived(ctx, channel, connectionEnd, packet, proof, proofHeight, nextSequenceRecv)
}

// TimeoutExecuted deletes the commitment send from this chain.
// It is called after TimeoutPacket or TimeoutOnClose verified the timeout.
// If the timed-out packet came from an ORDERED channel then this channel will be closed.
func (k Keeper) TimeoutExecuted(
	ctx sdk.Context,
	packet exported.PacketI,
) error {
	channel, found := k.GetChannel(ctx, packet.GetSourcePort(), packet.GetSourceChannel())
	if !found {
		return sdkerrors.Wrapf(types.ErrChannelNotFound, "port ID (%s) channel ID (%s)", packet.GetSourcePort(), packet.GetSourceChannel())
	}

	k.deletePacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence())

	if channel.Ordering == types.ORDERED {
		channel.State = types.CLOSED
		k.SetChannel(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), channel)
		EmitChannelClosedEvent(ctx, packet, channel)
	}

	k.Logger(ctx).Info(
		"packet timed-out",
		"sequence", strconv.FormatUint(packet.GetSequence(), 10),
		"src_port", packet.GetSourcePort(),
		"src_channel", packet.GetSourceChannel(),
		"dst_port", packet.GetDestPort(),
		"dst_channel", packet.GetDestChannel(),
	)

	defer telemetry.IncrCounter(1, "ibc", "packet", "timeout")

	EmitTimeoutPacketEvent(ctx, packet, channel)

	return nil
}

// TimeoutOnClose is called by a module in order to prove that the channel to
// which an unreceived packet was addressed has been closed, so the packet will
// never be received (even if the timeoutHeight has not yet been reached).
func (k Keeper) TimeoutOnClose(
	ctx sdk.Context,
	packet exported.PacketI,
	proof,
	proofClosed []byte,
	proofHeight exported.Height,
	nextSequenceRecv uint64,
) error {
	channel, connectionEnd, err := k.timeoutChannel(ctx, packet)
	if err != nil {
		return err
	}

	if err := k.verifyCommitment(ctx, packet); err != nil {
		return err
	}

	counterpartyHops := []string{connectionEnd.Counterparty.ConnectionId}

	counterparty := types.NewCounterparty(packet.GetSourcePort(), packet.GetSourceChannel())
	expectedChannel := types.NewChannel(
		types.CLOSED, channel.Ordering, counterparty, counterpartyHops, channel.Version,
	)

	// check that the opposing channel end has closed
	if err := k.connectionKeeper.VerifyChannelState(
		ctx, connectionEnd, proofHeight, proofClosed,
		channel.Counterparty.PortId, channel.Counterparty.ChannelId,
		expectedChannel,
	); err != nil {
		return err
	}

	return k.verifyNotReceived(ctx, channel, connectionEnd, packet, proof, proofHeight, nextSequenceRecv)
}

// timeoutChannel loads the OPEN source channel of a packet and its connection.
func (k Keeper) timeoutChannel(ctx sdk.Context, packet exported.PacketI) (types.Channel, connectiontypes.ConnectionEnd, error) {
	channel, found := k.GetChannel(ctx, packet.GetSourcePort(), packet.GetSourceChannel())
	if !found {
		return types.Channel{}, connectiontypes.ConnectionEnd{}, sdkerrors.Wrapf(
			types.ErrChannelNotFound,
			"port ID (%s) channel ID (%s)", packet.GetSourcePort(), packet.GetSourceChannel(),
		)
	}

	if channel.State != types.OPEN {
		return types.Channel{}, connectiontypes.ConnectionEnd{}, sdkerrors.Wrapf(
			types.ErrInvalidChannelState,
			"channel state is not OPEN (got %s)", channel.State.String(),
		)
	}

	if packet.GetDestPort() != channel.Counterparty.PortId {
		return types.Channel{}, connectiontypes.ConnectionEnd{}, sdkerrors.Wrapf(
			types.ErrInvalidPacket,
			"packet destination port doesn't match the counterparty's port (%s ≠ %s)", packet.GetDestPort(), channel.Counterparty.PortId,
		)
	}

	if packet.GetDestChannel() != channel.Counterparty.ChannelId {
		return types.Channel{}, connectiontypes.ConnectionEnd{}, sdkerrors.Wrapf(
			types.ErrInvalidPacket,
			"packet destination channel doesn't match the counterparty's channel (%s ≠ %s)", packet.GetDestChannel(), channel.Counterparty.ChannelId,
		)
	}

	connectionEnd, err := k.connectionForTimeout(ctx, channel.ConnectionHops[0])
	if err != nil {
		return types.Channel{}, connectiontypes.ConnectionEnd{}, err
	}

	return channel, connectionEnd, nil
}

// verifyCommitment checks that the packet was sent from this chain and has not
// been acknowledged or timed out yet.
func (k Keeper) verifyCommitment(ctx sdk.Context, packet exported.PacketI) error {
	commitment := k.GetPacketCommitment(ctx, packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence())
	if len(commitment) == 0 {
		return sdkerrors.Wrapf(
			types.ErrPacketCommitmentNotFound,
			"port ID (%s) channel ID (%s) sequence (%d)", packet.GetSourcePort(), packet.GetSourceChannel(), packet.GetSequence(),
		)
	}

	packetCommitment := types.CommitPacket(packet)
	if !bytes.Equal(commitment, packetCommitment) {
		return sdkerrors.Wrapf(types.ErrInvalidPacket, "packet commitment bytes are not equal: got (%v), expected (%v)", commitment, packetCommitment)
	}

	return nil
}

// verifyNotReceived proves the counterparty never received the packet: through
// the next receive sequence on ORDERED channels and the receipt absence on
// UNORDERED ones.
func (k Keeper) verifyNotReceived(
	ctx sdk.Context,
	channel types.Channel,
	connectionEnd connectiontypes.ConnectionEnd,
	packet exported.PacketI,
	proof []byte,
	proofHeight exported.Height,
	nextSequenceRecv uint64,
) error {
	switch channel.Ordering {
	case types.ORDERED:
		// check that packet has not been received
		if nextSequenceRecv > packet.GetSequence() {
			return sdkerrors.Wrapf(
				types.ErrPacketReceived,
				"packet already received, next sequence receive > packet sequence (%d > %d)", nextSequenceRecv, packet.GetSequence(),
			)
		}

		// check that the recv sequence is as claimed
		return k.connectionKeeper.VerifyNextSequenceRecv(
			ctx, connectionEnd, proofHeight, proof,
			packet.GetDestPort(), packet.GetDestChannel(), nextSequenceRecv,
		)

	case types.UNORDERED:
		return k.connectionKeeper.VerifyPacketReceiptAbsence(
			ctx, connectionEnd, proofHeight, proof,
			packet.GetDestPort(), packet.GetDestChannel(), packet.GetSequence(),
		)

	default:
		return sdkerrors.Wrap(types.ErrInvalidChannelOrdering, channel.Ordering.String())
	}
}
