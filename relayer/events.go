package relayer

import (
	"fmt"

	abci "github.com/tendermint/tendermint/abci/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
)

// ParseClientIDFromEvents returns the client id emitted by MsgCreateClient.
func ParseClientIDFromEvents(events []abci.Event) (string, error) {
	return attributeFromEvents(events, clienttypes.AttributeKeyClientID, clienttypes.EventTypeCreateClient)
}

// ParseConnectionIDFromEvents returns the connection id emitted by
// MsgConnectionOpenInit or MsgConnectionOpenTry.
func ParseConnectionIDFromEvents(events []abci.Event) (string, error) {
	return attributeFromEvents(events, connectiontypes.AttributeKeyConnectionID,
		connectiontypes.EventTypeConnectionOpenInit, connectiontypes.EventTypeConnectionOpenTry)
}

// ParseChannelIDFromEvents returns the channel id emitted by
// MsgChannelOpenInit or MsgChannelOpenTry.
func ParseChannelIDFromEvents(events []abci.Event) (string, error) {
	return attributeFromEvents(events, channeltypes.AttributeKeyChannelID,
		channeltypes.EventTypeChannelOpenInit, channeltypes.EventTypeChannelOpenTry)
}

func attributeFromEvents(events []abci.Event, key string, eventTypes ...string) (string, error) {
	for _, ev := range events {
		for _, eventType := range eventTypes {
			if ev.Type != eventType {
				continue
			}
			for _, attr := range ev.Attributes {
				if string(attr.Key) == key {
					return string(attr.Value), nil
				}
			}
		}
	}
	return "", fmt.Errorf("attribute %s not found in %v events", key, eventTypes)
}
