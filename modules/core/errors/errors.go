package errors

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

const codespace = exported.ModuleName

var (
	// ErrInvalidSequence is used the sequence number is incorrect.
	ErrInvalidSequence = sdkerrors.Register(codespace, 2, "invalid sequence")

	// ErrUnknownRequest is used when the request body cannot be routed.
	ErrUnknownRequest = sdkerrors.Register(codespace, 3, "unknown request")

	// ErrInvalidRequest defines an ABCI typed error where the request contains
	// invalid data.
	ErrInvalidRequest = sdkerrors.Register(codespace, 4, "invalid request")

	// ErrInvalidHeight defines an error for an invalid height
	ErrInvalidHeight = sdkerrors.Register(codespace, 5, "invalid height")

	// ErrInvalidVersion defines a general error for an invalid version
	ErrInvalidVersion = sdkerrors.Register(codespace, 6, "invalid version")

	// ErrInvalidChainID defines an error when the chain-id is invalid.
	ErrInvalidChainID = sdkerrors.Register(codespace, 7, "invalid chain-id")

	// ErrInvalidType defines an error an invalid type.
	ErrInvalidType = sdkerrors.Register(codespace, 8, "invalid type")

	// ErrLogic defines an internal logic error, e.g. an invariant or assertion
	// that is violated. It is a programmer error, not a user-facing error.
	ErrLogic = sdkerrors.Register(codespace, 9, "internal logic error")

	// ErrNotFound defines an error when requested entity doesn't exist in the state.
	ErrNotFound = sdkerrors.Register(codespace, 10, "not found")

	// ErrMarshal and ErrUnmarshal are returned when encoding state fails.
	ErrMarshal   = sdkerrors.Register(codespace, 11, "failed to marshal")
	ErrUnmarshal = sdkerrors.Register(codespace, 12, "failed to unmarshal")

	// ErrInvalidAddress defines an error when a signer is not a valid bech32 address.
	ErrInvalidAddress = sdkerrors.Register(codespace, 13, "invalid address")
)
