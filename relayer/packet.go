package relayer

import (
	"context"
	"sort"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

const (
	kindRecv    = "recv"
	kindAck     = "ack"
	kindTimeout = "timeout"
)

// packetActions relays, for every whitelisted channel of the connection, the
// packets committed on the source chain, the acknowledgements written there
// and the timeouts of packets the destination chain sent to it.
func (r *Relayer) packetActions(ctx context.Context, v *view) ([]action, error) {
	pairs, _, err := r.channelPairs(ctx, v)
	if err != nil {
		return nil, err
	}

	whitelist := v.src.ChannelWhitelist()
	var actions []action
	for _, pair := range pairs {
		if pair.dst == nil || !whitelisted(whitelist, pair.src) {
			continue
		}

		for _, build := range []func(context.Context, *view, channelPair) ([]action, error){
			r.recvActions,
			r.ackActions,
			r.timeoutActions,
		} {
			built, err := build(ctx, v, pair)
			if err != nil {
				return nil, err
			}
			actions = append(actions, built...)
		}
	}
	return actions, nil
}

// whitelisted reports whether packets of ch are relayed. An empty whitelist
// relays every channel of the connection.
func whitelisted(whitelist []provider.ChannelPort, ch channeltypes.IdentifiedChannel) bool {
	if len(whitelist) == 0 {
		return true
	}
	for _, entry := range whitelist {
		if entry.ChannelID == ch.ChannelId && entry.PortID == ch.PortId {
			return true
		}
	}
	return false
}

// recvActions delivers to the destination chain the packets committed on the
// source chain it has not received yet. Packets that already timed out on the
// destination are left to the timeout path. On ORDERED channels nothing after
// such a packet can be received.
func (r *Relayer) recvActions(ctx context.Context, v *view, pair channelPair) ([]action, error) {
	src, dst := pair.src, pair.dst
	if src.State != channeltypes.OPEN || dst.State != channeltypes.OPEN {
		return nil, nil
	}

	committed, err := v.src.QueryPacketCommitments(ctx, v.at, src.PortId, src.ChannelId)
	if err != nil || len(committed) == 0 {
		return nil, err
	}
	unreceived, err := v.dst.QueryUnreceivedPackets(ctx, v.dstHeight, dst.PortId, dst.ChannelId, committed)
	if err != nil || len(unreceived) == 0 {
		return nil, err
	}
	packets, err := v.src.QuerySendPackets(ctx, src.PortId, src.ChannelId, unreceived)
	if err != nil {
		return nil, err
	}
	sortPackets(packets)

	var actions []action
	for _, packet := range packets {
		if timedOut(packet, v.dstHeight.Increment().(clienttypes.Height), v.dstTime) {
			if src.Ordering == channeltypes.ORDERED {
				break
			}
			continue
		}

		_, proof, err := v.src.QueryPacketCommitment(ctx, v.at, src.PortId, src.ChannelId, packet.Sequence)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action{
			key: packetKey(v.dst.ChainID(), kindRecv, dst.PortId, dst.ChannelId, packet.Sequence),
			msg: channeltypes.NewMsgRecvPacket(packet, proof, v.at, v.dst.Signer()),
		})
	}
	return actions, nil
}

// ackActions delivers to the destination chain, the sender, the
// acknowledgements the source chain wrote for its packets.
func (r *Relayer) ackActions(ctx context.Context, v *view, pair channelPair) ([]action, error) {
	src, dst := pair.src, pair.dst
	if dst.State != channeltypes.OPEN {
		return nil, nil
	}

	acked, err := v.src.QueryPacketAcknowledgements(ctx, v.at, src.PortId, src.ChannelId)
	if err != nil || len(acked) == 0 {
		return nil, err
	}
	unreceived, err := v.dst.QueryUnreceivedAcknowledgements(ctx, v.dstHeight, dst.PortId, dst.ChannelId, acked)
	if err != nil || len(unreceived) == 0 {
		return nil, err
	}
	acks, err := v.src.QueryRecvPackets(ctx, src.PortId, src.ChannelId, unreceived)
	if err != nil {
		return nil, err
	}
	sort.Slice(acks, func(i, j int) bool { return acks[i].Packet.Sequence < acks[j].Packet.Sequence })

	actions := make([]action, 0, len(acks))
	for _, ack := range acks {
		_, proof, err := v.src.QueryPacketAcknowledgement(ctx, v.at, src.PortId, src.ChannelId, ack.Packet.Sequence)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action{
			key: packetKey(v.dst.ChainID(), kindAck, dst.PortId, dst.ChannelId, ack.Packet.Sequence),
			msg: channeltypes.NewMsgAcknowledgement(ack.Packet, ack.Ack, proof, v.at, v.dst.Signer()),
		})
	}
	return actions, nil
}

// timeoutActions returns to the destination chain the packets it sent that
// the source chain never received and never will: either their timeout has
// passed on the source chain at v.at or the source channel is CLOSED.
func (r *Relayer) timeoutActions(ctx context.Context, v *view, pair channelPair) ([]action, error) {
	src, dst := pair.src, pair.dst
	if dst.State != channeltypes.OPEN {
		return nil, nil
	}

	committed, err := v.dst.QueryPacketCommitments(ctx, v.dstHeight, dst.PortId, dst.ChannelId)
	if err != nil || len(committed) == 0 {
		return nil, err
	}
	unreceived, err := v.src.QueryUnreceivedPackets(ctx, v.at, src.PortId, src.ChannelId, committed)
	if err != nil || len(unreceived) == 0 {
		return nil, err
	}
	packets, err := v.dst.QuerySendPackets(ctx, dst.PortId, dst.ChannelId, unreceived)
	if err != nil {
		return nil, err
	}
	sortPackets(packets)

	closed := src.State == channeltypes.CLOSED
	var proofClose []byte
	if closed {
		if _, proofClose, err = v.src.QueryChannelEnd(ctx, v.at, src.PortId, src.ChannelId); err != nil {
			return nil, err
		}
	}

	nextSeqRecv, proofNextSeq, err := v.src.QueryNextSequenceRecv(ctx, v.at, src.PortId, src.ChannelId)
	if err != nil {
		return nil, err
	}

	var actions []action
	for _, packet := range packets {
		if !closed && !timedOut(packet, v.at, v.atTime) {
			continue
		}

		proof := proofNextSeq
		if src.Ordering == channeltypes.UNORDERED {
			received, proofReceipt, err := v.src.QueryPacketReceipt(ctx, v.at, src.PortId, src.ChannelId, packet.Sequence)
			if err != nil {
				return nil, err
			}
			if received {
				continue
			}
			proof = proofReceipt
		}

		timeout := action{key: packetKey(v.dst.ChainID(), kindTimeout, dst.PortId, dst.ChannelId, packet.Sequence)}
		if closed {
			timeout.msg = channeltypes.NewMsgTimeoutOnClose(packet, nextSeqRecv, proof, proofClose, v.at, v.dst.Signer())
		} else {
			timeout.msg = channeltypes.NewMsgTimeout(packet, nextSeqRecv, proof, v.at, v.dst.Signer())
		}
		actions = append(actions, timeout)

		// the first timeout closes an ORDERED channel
		if src.Ordering == channeltypes.ORDERED {
			break
		}
	}
	return actions, nil
}

// timedOut reports whether packet can no longer be received by a chain at
// height and timestamp.
func timedOut(packet channeltypes.Packet, height clienttypes.Height, timestamp uint64) bool {
	if !packet.TimeoutHeight.IsZero() && height.GTE(packet.TimeoutHeight) {
		return true
	}
	return packet.TimeoutTimestamp != 0 && timestamp >= packet.TimeoutTimestamp
}

func sortPackets(packets []channeltypes.Packet) {
	sort.Slice(packets, func(i, j int) bool { return packets[i].Sequence < packets[j].Sequence })
}
