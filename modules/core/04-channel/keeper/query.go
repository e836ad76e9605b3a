package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
)

// UnreceivedPackets returns the subset of the given packet sequences that this
// chain has not received yet on the given channel. It is queried on the
// receiving chain with the sequences still committed on the sending chain.
func (k Keeper) UnreceivedPackets(ctx sdk.Context, portID, channelID string, sequences []uint64) ([]uint64, error) {
	channel, found := k.GetChannel(ctx, portID, channelID)
	if !found {
		return nil, sdkerrors.Wrapf(types.ErrChannelNotFound, "port ID (%s) channel ID (%s)", portID, channelID)
	}

	unreceived := []uint64{}

	switch channel.Ordering {
	case types.UNORDERED:
		for _, seq := range sequences {
			if seq == 0 {
				return nil, sdkerrors.Wrap(types.ErrInvalidPacket, "packet sequence cannot be 0")
			}
			if _, found := k.GetPacketReceipt(ctx, portID, channelID, seq); !found {
				unreceived = append(unreceived, seq)
			}
		}

	case types.ORDERED:
		nextSequenceRecv, found := k.GetNextSequenceRecv(ctx, portID, channelID)
		if !found {
			return nil, sdkerrors.Wrapf(
				types.ErrSequenceReceiveNotFound,
				"destination port: %s, destination channel: %s", portID, channelID,
			)
		}

		for _, seq := range sequences {
			if seq == 0 {
				return nil, sdkerrors.Wrap(types.ErrInvalidPacket, "packet sequence cannot be 0")
			}
			if seq >= nextSequenceRecv {
				unreceived = append(unreceived, seq)
			}
		}

	default:
		return nil, sdkerrors.Wrap(types.ErrInvalidChannelOrdering, channel.Ordering.String())
	}

	return unreceived, nil
}

// UnreceivedAcks returns the subset of the given sequences whose acknowledgement
// this chain has not processed yet. It is queried on the sending chain with the
// sequences the receiving chain wrote acknowledgements for.
func (k Keeper) UnreceivedAcks(ctx sdk.Context, portID, channelID string, sequences []uint64) ([]uint64, error) {
	if !k.HasChannel(ctx, portID, channelID) {
		return nil, sdkerrors.Wrapf(types.ErrChannelNotFound, "port ID (%s) channel ID (%s)", portID, channelID)
	}

	unreceived := []uint64{}
	for _, seq := range sequences {
		if seq == 0 {
			return nil, sdkerrors.Wrap(types.ErrInvalidPacket, "packet sequence cannot be 0")
		}

		// a packet commitment that still exists means the ack was not relayed yet
		if k.HasPacketCommitment(ctx, portID, channelID, seq) {
			unreceived = append(unreceived, seq)
		}
	}

	return unreceived, nil
}
