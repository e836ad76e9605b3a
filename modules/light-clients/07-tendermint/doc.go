/*
Package tendermint implements a concrete ClientState, ConsensusState,
Header and Misbehaviour for the Tendermint consensus light client, following
ICS 07 (https://github.com/cosmos/ibc/tree/main/spec/client/ics-007-tendermint-client).

Every verification and update function is a pure function of its inputs and
the read-only client store: new states are handed back to 02-client, which
installs them.
*/
package tendermint
