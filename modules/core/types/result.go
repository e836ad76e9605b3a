package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Result is the outcome of delivering one IBC message.
type Result struct {
	// Events emitted while handling the message.
	Events sdk.Events
	// NoOp is set when the message was valid but had no effect, e.g. a packet
	// that was already received.
	NoOp bool
	// Identifier is the client, connection or channel identifier created by the
	// message, if any.
	Identifier string
}
