package relayer

import (
	"context"
	"errors"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	porttypes "github.com/hyperspace-relayer/ibc-core/modules/core/05-port/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
)

// Outcome is what the relayer does with an action whose submission failed.
type Outcome int

const (
	// OutcomeRetry re-evaluates the action on the next finality event.
	OutcomeRetry Outcome = iota
	// OutcomeDrop discards the attempt. The action is rebuilt from chain
	// state on the next relevant event.
	OutcomeDrop
	// OutcomeHalt stops all further attempts for the key until the relayer
	// is restarted.
	OutcomeHalt
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetry:
		return "retry"
	case OutcomeDrop:
		return "drop"
	case OutcomeHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// haltErrors need an operator or governance to resolve.
var haltErrors = []error{
	clienttypes.ErrClientFrozen,
	clienttypes.ErrClientNotActive,
	connectiontypes.ErrNoCommonVersion,
	connectiontypes.ErrVersionNotSupported,
	host.ErrInvalidID,
}

// ibcCodespaces are the codespaces of the protocol errors. Any other error is
// assumed to be transient.
var ibcCodespaces = map[string]bool{
	exported.ModuleName:           true,
	clienttypes.SubModuleName:     true,
	connectiontypes.SubModuleName: true,
	channeltypes.SubModuleName:    true,
	porttypes.SubModuleName:       true,
	commitmenttypes.SubModuleName: true,
	host.SubModuleName:            true,
	ibctm.ModuleName:              true,
}

// Classify maps a submission error to its outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeRetry
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeRetry
	}

	for _, haltErr := range haltErrors {
		if errors.Is(err, haltErr) {
			return OutcomeHalt
		}
	}

	codespace, _, _ := sdkerrors.ABCIInfo(err, false)
	if ibcCodespaces[codespace] {
		return OutcomeDrop
	}
	return OutcomeRetry
}
