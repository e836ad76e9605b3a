package types

import (
	"sort"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// IdentifiedClientState defines a client state with an additional client
// identifier field.
type IdentifiedClientState struct {
	ClientId    string               `json:"client_id" yaml:"client_id"`
	ClientState exported.ClientState `json:"client_state" yaml:"client_state"`
}

// NewIdentifiedClientState creates a new IdentifiedClientState instance
func NewIdentifiedClientState(clientID string, clientState exported.ClientState) IdentifiedClientState {
	return IdentifiedClientState{
		ClientId:    clientID,
		ClientState: clientState,
	}
}

// IdentifiedClientStates defines a slice of IdentifiedClientState objects
type IdentifiedClientStates []IdentifiedClientState

// Sort returns a sorted IdentifiedClientStates instance
func (ics IdentifiedClientStates) Sort() IdentifiedClientStates {
	sort.Slice(ics, func(i, j int) bool {
		return ics[i].ClientId < ics[j].ClientId
	})
	return ics
}
