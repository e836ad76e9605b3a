package keeper

import (
	metrics "github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	porttypes "github.com/hyperspace-relayer/ibc-core/modules/core/05-port/types"
	ibcmetrics "github.com/hyperspace-relayer/ibc-core/modules/core/metrics"
	coretypes "github.com/hyperspace-relayer/ibc-core/modules/core/types"
)

// CreateClient defines a rpc handler method for MsgCreateClient.
func (k Keeper) CreateClient(ctx sdk.Context, msg *clienttypes.MsgCreateClient) (string, error) {
	return k.ClientKeeper.CreateClient(ctx, msg.ClientState, msg.ConsensusState)
}

// UpdateClient defines a rpc handler method for MsgUpdateClient.
func (k Keeper) UpdateClient(ctx sdk.Context, msg *clienttypes.MsgUpdateClient) error {
	return k.ClientKeeper.UpdateClient(ctx, msg.ClientId, msg.Header)
}

// SubmitMisbehaviour defines a rpc handler method for MsgSubmitMisbehaviour.
func (k Keeper) SubmitMisbehaviour(ctx sdk.Context, msg *clienttypes.MsgSubmitMisbehaviour) error {
	if err := k.ClientKeeper.CheckMisbehaviourAndFreeze(ctx, msg.Misbehaviour); err != nil {
		return sdkerrors.Wrap(err, "failed to process misbehaviour for IBC client")
	}
	return nil
}

// ConnectionOpenInit defines a rpc handler method for MsgConnectionOpenInit.
func (k Keeper) ConnectionOpenInit(ctx sdk.Context, msg *connectiontypes.MsgConnectionOpenInit) (string, error) {
	connectionID, err := k.ConnectionKeeper.ConnOpenInit(ctx, msg.ConnectionId, msg.ClientId, msg.Counterparty, msg.Version, msg.DelayPeriod)
	if err != nil {
		return "", sdkerrors.Wrap(err, "connection handshake open init failed")
	}
	return connectionID, nil
}

// ConnectionOpenTry defines a rpc handler method for MsgConnectionOpenTry.
func (k Keeper) ConnectionOpenTry(ctx sdk.Context, msg *connectiontypes.MsgConnectionOpenTry) (string, error) {
	connectionID, err := k.ConnectionKeeper.ConnOpenTry(
		ctx, msg.PreviousConnectionId, msg.Counterparty, msg.DelayPeriod, msg.ClientId, msg.ClientState,
		msg.CounterpartyVersions, msg.ProofInit, msg.ProofClient, msg.ProofConsensus,
		msg.ProofHeight, msg.ConsensusHeight,
	)
	if err != nil {
		return "", sdkerrors.Wrap(err, "connection handshake open try failed")
	}
	return connectionID, nil
}

// ConnectionOpenAck defines a rpc handler method for MsgConnectionOpenAck.
func (k Keeper) ConnectionOpenAck(ctx sdk.Context, msg *connectiontypes.MsgConnectionOpenAck) error {
	if err := k.ConnectionKeeper.ConnOpenAck(
		ctx, msg.ConnectionId, msg.ClientState, msg.Version, msg.CounterpartyConnectionId,
		msg.ProofTry, msg.ProofClient, msg.ProofConsensus,
		msg.ProofHeight, msg.ConsensusHeight,
	); err != nil {
		return sdkerrors.Wrap(err, "connection handshake open ack failed")
	}
	return nil
}

// ConnectionOpenConfirm defines a rpc handler method for MsgConnectionOpenConfirm.
func (k Keeper) ConnectionOpenConfirm(ctx sdk.Context, msg *connectiontypes.MsgConnectionOpenConfirm) error {
	if err := k.ConnectionKeeper.ConnOpenConfirm(
		ctx, msg.ConnectionId, msg.ProofAck, msg.ProofHeight,
	); err != nil {
		return sdkerrors.Wrap(err, "connection handshake open confirm failed")
	}
	return nil
}

// ChannelOpenInit defines a rpc handler method for MsgChannelOpenInit.
// A channel identifier is returned once the application accepted the handshake.
func (k Keeper) ChannelOpenInit(ctx sdk.Context, msg *channeltypes.MsgChannelOpenInit) (string, error) {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return "", err
	}

	channelID, err := k.ChannelKeeper.ChanOpenInit(
		ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortId, msg.ChannelId,
		msg.Channel.Counterparty, msg.Channel.Version,
	)
	if err != nil {
		return "", sdkerrors.Wrap(err, "channel handshake open init failed")
	}

	version, err := cbs.OnChanOpenInit(ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortId, channelID, msg.Channel.Counterparty, msg.Channel.Version)
	if err != nil {
		return "", sdkerrors.Wrap(err, "channel open init callback failed")
	}

	k.ChannelKeeper.WriteOpenInitChannel(ctx, msg.PortId, channelID, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.Channel.Counterparty, version)

	return channelID, nil
}

// ChannelOpenTry defines a rpc handler method for MsgChannelOpenTry.
func (k Keeper) ChannelOpenTry(ctx sdk.Context, msg *channeltypes.MsgChannelOpenTry) (string, error) {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return "", err
	}

	channelID, err := k.ChannelKeeper.ChanOpenTry(
		ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortId, msg.PreviousChannelId,
		msg.Channel.Counterparty, msg.Channel.Version, msg.CounterpartyVersion, msg.ProofInit, msg.ProofHeight,
	)
	if err != nil {
		return "", sdkerrors.Wrap(err, "channel handshake open try failed")
	}

	version, err := cbs.OnChanOpenTry(ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortId, channelID, msg.Channel.Counterparty, msg.CounterpartyVersion)
	if err != nil {
		return "", sdkerrors.Wrap(err, "channel open try callback failed")
	}

	k.ChannelKeeper.WriteOpenTryChannel(ctx, msg.PortId, channelID, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.Channel.Counterparty, version)

	return channelID, nil
}

// ChannelOpenAck defines a rpc handler method for MsgChannelOpenAck.
func (k Keeper) ChannelOpenAck(ctx sdk.Context, msg *channeltypes.MsgChannelOpenAck) error {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return err
	}

	if err = k.ChannelKeeper.ChanOpenAck(
		ctx, msg.PortId, msg.ChannelId, msg.CounterpartyVersion, msg.CounterpartyChannelId, msg.ProofTry, msg.ProofHeight,
	); err != nil {
		return sdkerrors.Wrap(err, "channel handshake open ack failed")
	}

	if err = cbs.OnChanOpenAck(ctx, msg.PortId, msg.ChannelId, msg.CounterpartyChannelId, msg.CounterpartyVersion); err != nil {
		return sdkerrors.Wrap(err, "channel open ack callback failed")
	}

	k.ChannelKeeper.WriteOpenAckChannel(ctx, msg.PortId, msg.ChannelId, msg.CounterpartyVersion, msg.CounterpartyChannelId)

	return nil
}

// ChannelOpenConfirm defines a rpc handler method for MsgChannelOpenConfirm.
func (k Keeper) ChannelOpenConfirm(ctx sdk.Context, msg *channeltypes.MsgChannelOpenConfirm) error {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return err
	}

	if err = k.ChannelKeeper.ChanOpenConfirm(ctx, msg.PortId, msg.ChannelId, msg.ProofAck, msg.ProofHeight); err != nil {
		return sdkerrors.Wrap(err, "channel handshake open confirm failed")
	}

	if err = cbs.OnChanOpenConfirm(ctx, msg.PortId, msg.ChannelId); err != nil {
		return sdkerrors.Wrap(err, "channel open confirm callback failed")
	}

	k.ChannelKeeper.WriteOpenConfirmChannel(ctx, msg.PortId, msg.ChannelId)

	return nil
}

// ChannelCloseInit defines a rpc handler method for MsgChannelCloseInit.
func (k Keeper) ChannelCloseInit(ctx sdk.Context, msg *channeltypes.MsgChannelCloseInit) error {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return err
	}

	if err = cbs.OnChanCloseInit(ctx, msg.PortId, msg.ChannelId); err != nil {
		return sdkerrors.Wrap(err, "channel close init callback failed")
	}

	if err = k.ChannelKeeper.ChanCloseInit(ctx, msg.PortId, msg.ChannelId); err != nil {
		return sdkerrors.Wrap(err, "channel handshake close init failed")
	}

	return nil
}

// ChannelCloseConfirm defines a rpc handler method for MsgChannelCloseConfirm.
func (k Keeper) ChannelCloseConfirm(ctx sdk.Context, msg *channeltypes.MsgChannelCloseConfirm) error {
	cbs, err := k.route(msg.PortId)
	if err != nil {
		return err
	}

	if err = cbs.OnChanCloseConfirm(ctx, msg.PortId, msg.ChannelId); err != nil {
		return sdkerrors.Wrap(err, "channel close confirm callback failed")
	}

	if err = k.ChannelKeeper.ChanCloseConfirm(ctx, msg.PortId, msg.ChannelId, msg.ProofInit, msg.ProofHeight); err != nil {
		return sdkerrors.Wrap(err, "channel handshake close confirm failed")
	}

	return nil
}

// RecvPacket defines a rpc handler method for MsgRecvPacket.
func (k Keeper) RecvPacket(ctx sdk.Context, msg *channeltypes.MsgRecvPacket) (channeltypes.ResponseResultType, error) {
	relayer, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "Invalid address for msg Signer")
	}

	cbs, err := k.route(msg.Packet.DestinationPort)
	if err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	// Perform TAO verification
	//
	// If the packet was already received, perform a no-op
	// Use a cached context to prevent accidental state changes
	cacheCtx, writeFn := cacheContext(ctx)
	err = k.ChannelKeeper.RecvPacket(cacheCtx, msg.Packet, msg.ProofCommitment, msg.ProofHeight)

	switch err {
	case nil:
		writeFn()
	case channeltypes.ErrNoOpMsg:
		// no-ops do not need event emission as they will be ignored
		k.Logger(ctx).Debug("no-op on redundant relay", "port-id", msg.Packet.DestinationPort, "channel-id", msg.Packet.DestinationChannel, "sequence", msg.Packet.Sequence)
		return channeltypes.NOOP, nil
	default:
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "receive packet verification failed")
	}

	// Perform application logic callback
	//
	// Cache context so that we may discard state changes from callback if the acknowledgement is unsuccessful.
	cacheCtx, writeFn = cacheContext(ctx)
	ack := cbs.OnRecvPacket(cacheCtx, msg.Packet, relayer)
	if ack == nil || ack.Success() {
		// write application state changes for asynchronous and successful acknowledgements
		writeFn()
	} else {
		// Modify events in cached context to reflect unsuccessful acknowledgement
		ctx.EventManager().EmitEvents(coretypes.ConvertToErrorEvents(cacheCtx.EventManager().Events()))
	}

	// Set packet acknowledgement only if the acknowledgement is not nil.
	// NOTE: IBC applications modules may call the WriteAcknowledgement asynchronously if the
	// acknowledgement is nil.
	if ack != nil {
		if err := k.ChannelKeeper.WriteAcknowledgement(ctx, msg.Packet, ack); err != nil {
			return channeltypes.UNSPECIFIED, err
		}
	}

	defer func() {
		labels := []metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelSourcePort, msg.Packet.SourcePort),
			telemetry.NewLabel(ibcmetrics.LabelSourceChannel, msg.Packet.SourceChannel),
			telemetry.NewLabel(ibcmetrics.LabelDestinationPort, msg.Packet.DestinationPort),
			telemetry.NewLabel(ibcmetrics.LabelDestinationChannel, msg.Packet.DestinationChannel),
		}
		telemetry.IncrCounterWithLabels([]string{"tx", "msg", "ibc", channeltypes.EventTypeRecvPacket}, 1, labels)
	}()

	k.Logger(ctx).Info("receive packet callback succeeded", "port-id", msg.Packet.SourcePort, "channel-id", msg.Packet.SourceChannel, "result", channeltypes.SUCCESS.String())

	return channeltypes.SUCCESS, nil
}

// Timeout defines a rpc handler method for MsgTimeout.
func (k Keeper) Timeout(ctx sdk.Context, msg *channeltypes.MsgTimeout) (channeltypes.ResponseResultType, error) {
	relayer, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "Invalid address for msg Signer")
	}

	cbs, err := k.route(msg.Packet.SourcePort)
	if err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	if err := k.ChannelKeeper.TimeoutPacket(ctx, msg.Packet, msg.ProofUnreceived, msg.ProofHeight, msg.NextSequenceRecv); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "timeout packet verification failed")
	}

	// Perform application logic callback
	if err := cbs.OnTimeoutPacket(ctx, msg.Packet, relayer); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "timeout packet callback failed")
	}

	// Delete packet commitment
	if err := k.ChannelKeeper.TimeoutExecuted(ctx, msg.Packet); err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	reportTimeout(msg.Packet, "height")

	k.Logger(ctx).Info("timeout packet callback succeeded", "port-id", msg.Packet.SourcePort, "channel-id", msg.Packet.SourceChannel, "result", channeltypes.SUCCESS.String())

	return channeltypes.SUCCESS, nil
}

// TimeoutOnClose defines a rpc handler method for MsgTimeoutOnClose.
func (k Keeper) TimeoutOnClose(ctx sdk.Context, msg *channeltypes.MsgTimeoutOnClose) (channeltypes.ResponseResultType, error) {
	relayer, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "Invalid address for msg Signer")
	}

	cbs, err := k.route(msg.Packet.SourcePort)
	if err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	if err := k.ChannelKeeper.TimeoutOnClose(ctx, msg.Packet, msg.ProofUnreceived, msg.ProofClose, msg.ProofHeight, msg.NextSequenceRecv); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "timeout on close packet verification failed")
	}

	// Perform application logic callback
	//
	// NOTE: MsgTimeout and MsgTimeoutOnClose use the same "OnTimeoutPacket"
	// application logic callback.
	if err := cbs.OnTimeoutPacket(ctx, msg.Packet, relayer); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "timeout packet callback failed")
	}

	// Delete packet commitment
	if err := k.ChannelKeeper.TimeoutExecuted(ctx, msg.Packet); err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	reportTimeout(msg.Packet, "channel-closed")

	k.Logger(ctx).Info("timeout on close callback succeeded", "port-id", msg.Packet.SourcePort, "channel-id", msg.Packet.SourceChannel, "result", channeltypes.SUCCESS.String())

	return channeltypes.SUCCESS, nil
}

// Acknowledgement defines a rpc handler method for MsgAcknowledgement.
func (k Keeper) Acknowledgement(ctx sdk.Context, msg *channeltypes.MsgAcknowledgement) (channeltypes.ResponseResultType, error) {
	relayer, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "Invalid address for msg Signer")
	}

	cbs, err := k.route(msg.Packet.SourcePort)
	if err != nil {
		return channeltypes.UNSPECIFIED, err
	}

	if err := k.ChannelKeeper.AcknowledgePacket(ctx, msg.Packet, msg.Acknowledgement, msg.ProofAcked, msg.ProofHeight); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "acknowledge packet verification failed")
	}

	// Perform application logic callback
	if err := cbs.OnAcknowledgementPacket(ctx, msg.Packet, msg.Acknowledgement, relayer); err != nil {
		return channeltypes.UNSPECIFIED, sdkerrors.Wrap(err, "acknowledge packet callback failed")
	}

	k.Logger(ctx).Info("acknowledgement succeeded", "port-id", msg.Packet.SourcePort, "channel-id", msg.Packet.SourceChannel, "result", channeltypes.SUCCESS.String())

	return channeltypes.SUCCESS, nil
}

// route returns the application callbacks bound to the given port.
func (k Keeper) route(portID string) (porttypes.IBCModule, error) {
	if k.Router == nil {
		return nil, sdkerrors.Wrap(porttypes.ErrInvalidRoute, "router not set")
	}

	cbs, ok := k.Router.GetRoute(portID)
	if !ok {
		return nil, sdkerrors.Wrapf(porttypes.ErrInvalidRoute, "route not found to module: %s", portID)
	}
	return cbs, nil
}

// cacheContext branches the multistore and the event manager of ctx. The
// returned write function commits both.
func cacheContext(ctx sdk.Context) (sdk.Context, func()) {
	cacheCtx, writeCache := ctx.CacheContext()
	cacheCtx = cacheCtx.WithEventManager(sdk.NewEventManager())

	return cacheCtx, func() {
		writeCache()
		ctx.EventManager().EmitEvents(cacheCtx.EventManager().Events())
	}
}

func reportTimeout(packet channeltypes.Packet, timeoutType string) {
	labels := []metrics.Label{
		telemetry.NewLabel(ibcmetrics.LabelSourcePort, packet.SourcePort),
		telemetry.NewLabel(ibcmetrics.LabelSourceChannel, packet.SourceChannel),
		telemetry.NewLabel(ibcmetrics.LabelDestinationPort, packet.DestinationPort),
		telemetry.NewLabel(ibcmetrics.LabelDestinationChannel, packet.DestinationChannel),
		telemetry.NewLabel(ibcmetrics.LabelTimeoutType, timeoutType),
	}
	telemetry.IncrCounterWithLabels([]string{"ibc", channeltypes.EventTypeTimeoutPacket}, 1, labels)
}
