/*
	This file contains the variables, constants, and default values
	used in the testing package and commonly defined in tests.
*/
package ibctesting

import (
	"time"

	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	"github.com/hyperspace-relayer/ibc-core/simapp"
	"github.com/hyperspace-relayer/ibc-core/testing/mock"
)

const (
	FirstClientID     = "07-tendermint-0"
	FirstChannelID    = "channel-0"
	FirstConnectionID = "connection-0"

	// Default params constants used to create a TM client
	TrustingPeriod     time.Duration = time.Hour * 24 * 7 * 2
	UnbondingPeriod    time.Duration = simapp.DefaultUnbondingTime
	MaxClockDrift      time.Duration = time.Second * 10
	DefaultDelayPeriod uint64        = 0

	DefaultChannelVersion = mock.Version
	InvalidID             = "IDisInvalid"

	// Application Ports
	MockPort = mock.ModuleName

	// DefaultValidators is the size of the validator set of every test chain.
	DefaultValidators = 4
)

var (
	DefaultTrustLevel = ibctm.DefaultTrustLevel

	// ConnectionVersion is the version proposed in ConnOpenInit.
	ConnectionVersion = connectiontypes.GetCompatibleVersions()[0]

	MockAcknowledgement     = mock.MockAcknowledgement.Acknowledgement()
	MockFailAcknowledgement = mock.MockFailAcknowledgement.Acknowledgement()
	MockPacketData          = mock.MockPacketData
	MockFailPacketData      = mock.MockFailPacketData
)
