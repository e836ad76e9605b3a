package types

import (
	"encoding/hex"
	"fmt"
	"strconv"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// IBC channel events
const (
	AttributeKeyConnectionID       = "connection_id"
	AttributeKeyPortID             = "port_id"
	AttributeKeyChannelID          = "channel_id"
	AttributeKeyChannelOrdering    = "channel_ordering"
	AttributeKeyVersion            = "version"
	AttributeCounterpartyPortID    = "counterparty_port_id"
	AttributeCounterpartyChannelID = "counterparty_channel_id"

	EventTypeSendPacket           = "send_packet"
	EventTypeRecvPacket           = "recv_packet"
	EventTypeWriteAck             = "write_acknowledgement"
	EventTypeAcknowledgePacket    = "acknowledge_packet"
	EventTypeTimeoutPacket        = "timeout_packet"
	EventTypeTimeoutPacketOnClose = "timeout_on_close_packet"

	AttributeKeyDataHex          = "packet_data_hex"
	AttributeKeyAckHex           = "packet_ack_hex"
	AttributeKeyTimeoutHeight    = "packet_timeout_height"
	AttributeKeyTimeoutTimestamp = "packet_timeout_timestamp"
	AttributeKeySequence         = "packet_sequence"
	AttributeKeySrcPort          = "packet_src_port"
	AttributeKeySrcChannel       = "packet_src_channel"
	AttributeKeyDstPort          = "packet_dst_port"
	AttributeKeyDstChannel       = "packet_dst_channel"
	AttributeKeyPacketOrdering   = "packet_channel_ordering"
	AttributeKeyConnection       = "packet_connection"
)

// IBC channel events vars
var (
	EventTypeChannelOpenInit     = "channel_open_init"
	EventTypeChannelOpenTry      = "channel_open_try"
	EventTypeChannelOpenAck      = "channel_open_ack"
	EventTypeChannelOpenConfirm  = "channel_open_confirm"
	EventTypeChannelCloseInit    = "channel_close_init"
	EventTypeChannelCloseConfirm = "channel_close_confirm"
	EventTypeChannelClosed       = "channel_close"

	AttributeValueCategory = fmt.Sprintf("%s_%s", exported.ModuleName, SubModuleName)
)

// ParsePacketsFromEvents rebuilds the packets carried by every event of the
// given type, e.g. EventTypeSendPacket or EventTypeWriteAck.
func ParsePacketsFromEvents(eventType string, events []abci.Event) ([]Packet, error) {
	var packets []Packet
	for _, ev := range events {
		if ev.Type != eventType {
			continue
		}

		var packet Packet
		for _, attr := range ev.Attributes {
			var err error
			switch string(attr.Key) {
			case AttributeKeyDataHex:
				packet.Data, err = hex.DecodeString(string(attr.Value))
			case AttributeKeySequence:
				packet.Sequence, err = strconv.ParseUint(string(attr.Value), 10, 64)
			case AttributeKeySrcPort:
				packet.SourcePort = string(attr.Value)
			case AttributeKeySrcChannel:
				packet.SourceChannel = string(attr.Value)
			case AttributeKeyDstPort:
				packet.DestinationPort = string(attr.Value)
			case AttributeKeyDstChannel:
				packet.DestinationChannel = string(attr.Value)
			case AttributeKeyTimeoutHeight:
				packet.TimeoutHeight, err = clienttypes.ParseHeight(string(attr.Value))
			case AttributeKeyTimeoutTimestamp:
				packet.TimeoutTimestamp, err = strconv.ParseUint(string(attr.Value), 10, 64)
			}
			if err != nil {
				return nil, sdkerrors.Wrapf(ErrInvalidPacket, "%s event attribute %s: %v", eventType, attr.Key, err)
			}
		}

		packets = append(packets, packet)
	}
	if len(packets) == 0 {
		return nil, sdkerrors.Wrapf(ErrInvalidPacket, "no %s event found", eventType)
	}
	return packets, nil
}

// ParseAckFromEvents returns the acknowledgement of the first
// write_acknowledgement event.
func ParseAckFromEvents(events []abci.Event) ([]byte, error) {
	for _, ev := range events {
		if ev.Type != EventTypeWriteAck {
			continue
		}
		for _, attr := range ev.Attributes {
			if string(attr.Key) == AttributeKeyAckHex {
				return hex.DecodeString(string(attr.Value))
			}
		}
	}
	return nil, sdkerrors.Wrap(ErrInvalidAcknowledgement, "acknowledgement event attribute not found")
}
