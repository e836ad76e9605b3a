package keeper

import (
	metrics "github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibcmetrics "github.com/hyperspace-relayer/ibc-core/modules/core/metrics"
	"github.com/hyperspace-relayer/ibc-core/modules/core/types"
)

// Deliver validates msg and routes it to the submodule handling it. State
// changes are applied atomically: a failing message leaves the store untouched.
func (k Keeper) Deliver(ctx sdk.Context, msg exported.Msg) (*types.Result, error) {
	if msg == nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrUnknownRequest, "nil message")
	}

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	cacheCtx, writeFn := cacheContext(ctx)

	res, err := k.dispatch(cacheCtx, msg)
	if err != nil {
		k.Logger(ctx).Debug("message failed", "type", msg.Type(), "error", err)
		return nil, err
	}

	writeFn()
	res.Events = cacheCtx.EventManager().Events()

	telemetry.IncrCounterWithLabels(
		[]string{"ibc", "msg", "delivered"}, 1,
		[]metrics.Label{telemetry.NewLabel(ibcmetrics.LabelMsgType, msg.Type())},
	)

	return res, nil
}

func (k Keeper) dispatch(ctx sdk.Context, msg exported.Msg) (*types.Result, error) {
	var (
		id     string
		result channeltypes.ResponseResultType
		err    error
	)

	switch msg := msg.(type) {
	case *clienttypes.MsgCreateClient:
		id, err = k.CreateClient(ctx, msg)

	case *clienttypes.MsgUpdateClient:
		err = k.UpdateClient(ctx, msg)

	case *clienttypes.MsgSubmitMisbehaviour:
		err = k.SubmitMisbehaviour(ctx, msg)

	case *connectiontypes.MsgConnectionOpenInit:
		id, err = k.ConnectionOpenInit(ctx, msg)

	case *connectiontypes.MsgConnectionOpenTry:
		id, err = k.ConnectionOpenTry(ctx, msg)

	case *connectiontypes.MsgConnectionOpenAck:
		err = k.ConnectionOpenAck(ctx, msg)

	case *connectiontypes.MsgConnectionOpenConfirm:
		err = k.ConnectionOpenConfirm(ctx, msg)

	case *channeltypes.MsgChannelOpenInit:
		id, err = k.ChannelOpenInit(ctx, msg)

	case *channeltypes.MsgChannelOpenTry:
		id, err = k.ChannelOpenTry(ctx, msg)

	case *channeltypes.MsgChannelOpenAck:
		err = k.ChannelOpenAck(ctx, msg)

	case *channeltypes.MsgChannelOpenConfirm:
		err = k.ChannelOpenConfirm(ctx, msg)

	case *channeltypes.MsgChannelCloseInit:
		err = k.ChannelCloseInit(ctx, msg)

	case *channeltypes.MsgChannelCloseConfirm:
		err = k.ChannelCloseConfirm(ctx, msg)

	case *channeltypes.MsgRecvPacket:
		result, err = k.RecvPacket(ctx, msg)

	case *channeltypes.MsgAcknowledgement:
		result, err = k.Acknowledgement(ctx, msg)

	case *channeltypes.MsgTimeout:
		result, err = k.Timeout(ctx, msg)

	case *channeltypes.MsgTimeoutOnClose:
		result, err = k.TimeoutOnClose(ctx, msg)

	default:
		return nil, sdkerrors.Wrapf(ibcerrors.ErrUnknownRequest, "unrecognized IBC message type: %T", msg)
	}

	if err != nil {
		return nil, err
	}

	return &types.Result{
		NoOp:       result == channeltypes.NOOP,
		Identifier: id,
	}, nil
}
