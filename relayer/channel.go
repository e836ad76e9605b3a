package relayer

import (
	"context"

	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

// channelPair is a channel on the source chain and, when it exists, the
// channel facing it on the destination chain.
type channelPair struct {
	src channeltypes.IdentifiedChannel
	dst *channeltypes.IdentifiedChannel
}

// channelPairs lists the channels of the relayed connection on the source
// chain at v.at, each matched with its destination end at v.dstHeight. It
// returns nil until both connection ends are known and the destination end is
// OPEN. The result is cached on v.
func (r *Relayer) channelPairs(ctx context.Context, v *view) ([]channelPair, string, error) {
	if v.pairsLoaded {
		return v.pairs, v.dstConn, nil
	}
	pairs, dstConn, err := r.loadChannelPairs(ctx, v)
	if err != nil {
		return nil, "", err
	}
	v.pairs, v.dstConn, v.pairsLoaded = pairs, dstConn, true
	return pairs, dstConn, nil
}

func (r *Relayer) loadChannelPairs(ctx context.Context, v *view) ([]channelPair, string, error) {
	srcConn, dstConn := v.src.ConnectionID(), v.dst.ConnectionID()
	if srcConn == "" || dstConn == "" {
		return nil, "", nil
	}

	dstEnd, _, err := v.dst.QueryConnectionEnd(ctx, v.dstHeight, dstConn)
	if err != nil {
		return nil, "", err
	}
	if dstEnd.State != connectiontypes.OPEN {
		return nil, "", nil
	}

	srcChannels, err := v.src.QueryConnectionChannels(ctx, v.at, srcConn)
	if err != nil {
		return nil, "", err
	}
	dstChannels, err := v.dst.QueryConnectionChannels(ctx, v.dstHeight, dstConn)
	if err != nil {
		return nil, "", err
	}

	// destination channels by the source channel they face
	facing := make(map[provider.ChannelPort]*channeltypes.IdentifiedChannel, len(dstChannels))
	for i := range dstChannels {
		ch := &dstChannels[i]
		facing[provider.ChannelPort{ChannelID: ch.Counterparty.ChannelId, PortID: ch.Counterparty.PortId}] = ch
	}

	pairs := make([]channelPair, 0, len(srcChannels))
	for _, ch := range srcChannels {
		pair := channelPair{src: ch}
		if dst, ok := facing[provider.ChannelPort{ChannelID: ch.ChannelId, PortID: ch.PortId}]; ok {
			pair.dst = dst
		}
		pairs = append(pairs, pair)
	}
	return pairs, dstConn, nil
}

// channelActions advances the handshake of every channel on the relayed
// connection: INIT with no destination end yields ChanOpenTry, TRYOPEN facing
// INIT yields ChanOpenAck and OPEN facing TRYOPEN yields ChanOpenConfirm.
// Channel closings are handled by closeActions.
func (r *Relayer) channelActions(ctx context.Context, v *view) ([]action, error) {
	pairs, dstConn, err := r.channelPairs(ctx, v)
	if err != nil {
		return nil, err
	}

	signer := v.dst.Signer()
	var actions []action
	for _, pair := range pairs {
		ch := pair.src
		key := channelKey(v.dst.ChainID(), ch.PortId, ch.ChannelId)

		var next *action
		switch {
		case ch.State == channeltypes.INIT && pair.dst == nil:
			_, proof, err := v.src.QueryChannelEnd(ctx, v.at, ch.PortId, ch.ChannelId)
			if err != nil {
				return nil, err
			}
			next = &action{key: key, msg: channeltypes.NewMsgChannelOpenTry(
				ch.Counterparty.PortId, "", ch.Version, ch.Ordering, []string{dstConn},
				ch.PortId, ch.ChannelId, ch.Version, proof, v.at, signer,
			)}

		case ch.State == channeltypes.TRYOPEN && pair.dst != nil && pair.dst.State == channeltypes.INIT:
			_, proof, err := v.src.QueryChannelEnd(ctx, v.at, ch.PortId, ch.ChannelId)
			if err != nil {
				return nil, err
			}
			next = &action{key: key, msg: channeltypes.NewMsgChannelOpenAck(
				pair.dst.PortId, pair.dst.ChannelId, ch.ChannelId, ch.Version, proof, v.at, signer,
			)}

		case ch.State == channeltypes.OPEN && pair.dst != nil && pair.dst.State == channeltypes.TRYOPEN:
			_, proof, err := v.src.QueryChannelEnd(ctx, v.at, ch.PortId, ch.ChannelId)
			if err != nil {
				return nil, err
			}
			next = &action{key: key, msg: channeltypes.NewMsgChannelOpenConfirm(
				pair.dst.PortId, pair.dst.ChannelId, proof, v.at, signer,
			)}
		}

		if next != nil {
			actions = append(actions, *next)
		}
	}
	return actions, nil
}

// closeActions confirms on the destination chain the closing of source
// channels. They go last in a batch: packets timing out on close need the
// destination channel still OPEN.
func (r *Relayer) closeActions(ctx context.Context, v *view) ([]action, error) {
	pairs, _, err := r.channelPairs(ctx, v)
	if err != nil {
		return nil, err
	}

	var actions []action
	for _, pair := range pairs {
		ch := pair.src
		if ch.State != channeltypes.CLOSED || pair.dst == nil || pair.dst.State == channeltypes.CLOSED {
			continue
		}

		_, proof, err := v.src.QueryChannelEnd(ctx, v.at, ch.PortId, ch.ChannelId)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action{
			key: channelKey(v.dst.ChainID(), ch.PortId, ch.ChannelId),
			msg: channeltypes.NewMsgChannelCloseConfirm(pair.dst.PortId, pair.dst.ChannelId, proof, v.at, v.dst.Signer()),
		})
	}
	return actions, nil
}
