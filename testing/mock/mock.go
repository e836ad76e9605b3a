package mock

import (
	"errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
)

const (
	ModuleName = "mock"

	PortID = ModuleName

	Version = "mock-version"
)

var (
	MockAcknowledgement     = channeltypes.NewResultAcknowledgement([]byte("mock acknowledgement"))
	MockFailAcknowledgement = channeltypes.NewErrorAcknowledgement(errors.New("mock failed acknowledgement"))
	MockPacketData          = []byte("mock packet data")
	MockFailPacketData      = []byte("mock failed packet data")
	MockAsyncPacketData     = []byte("mock async packet data")
	// MockApplicationCallbackError should be returned when an application callback should fail. It is possible to
	// test that this error was returned using ErrorIs.
	MockApplicationCallbackError error = &applicationCallbackError{}
)

const (
	EventTypeRecvPacket    = "mock_recv_packet"
	EventTypeAckPacket     = "mock_ack_packet"
	EventTypeTimeoutPacket = "mock_timeout"
)

// applicationCallbackError is a custom error type that will be unique for testing purposes.
type applicationCallbackError struct{}

func (e applicationCallbackError) Error() string {
	return "mock application callback failed"
}

// NewMockRecvPacketEvent returns a mock receive packet event
func NewMockRecvPacketEvent() sdk.Event {
	return sdk.NewEvent(EventTypeRecvPacket)
}

// NewMockAckPacketEvent returns a mock acknowledgement packet event
func NewMockAckPacketEvent() sdk.Event {
	return sdk.NewEvent(EventTypeAckPacket)
}

// NewMockTimeoutPacketEvent emits a mock timeout packet event
func NewMockTimeoutPacketEvent() sdk.Event {
	return sdk.NewEvent(EventTypeTimeoutPacket)
}
