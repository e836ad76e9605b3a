package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// RegisterLegacyAminoCodec registers the client interfaces on the provided
// codec. Light client implementations register their concrete types next to
// these so that values stored behind an interface round-trip.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterInterface((*exported.ClientState)(nil), nil)
	cdc.RegisterInterface((*exported.ConsensusState)(nil), nil)
	cdc.RegisterInterface((*exported.Header)(nil), nil)
	cdc.RegisterInterface((*exported.Misbehaviour)(nil), nil)
}

// MarshalClientState amino encodes a client state behind its interface.
func MarshalClientState(cdc *codec.LegacyAmino, clientState exported.ClientState) ([]byte, error) {
	bz, err := cdc.Marshal(clientState)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidClient, "failed to marshal client state %T: %s", clientState, err)
	}
	return bz, nil
}

// MustMarshalClientState attempts to encode a ClientState object and returns the
// raw encoded bytes. It panics on error.
func MustMarshalClientState(cdc *codec.LegacyAmino, clientState exported.ClientState) []byte {
	bz, err := MarshalClientState(cdc, clientState)
	if err != nil {
		panic(err)
	}
	return bz
}

// UnmarshalClientState returns a ClientState interface from raw encoded clientState
// bytes. An error is returned upon decoding failure.
func UnmarshalClientState(cdc *codec.LegacyAmino, bz []byte) (exported.ClientState, error) {
	var clientState exported.ClientState
	if err := cdc.Unmarshal(bz, &clientState); err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidClient, "failed to unmarshal client state: %s", err)
	}
	return clientState, nil
}

// MustUnmarshalClientState attempts to decode and return an ClientState object from
// raw encoded bytes. It panics on error.
func MustUnmarshalClientState(cdc *codec.LegacyAmino, bz []byte) exported.ClientState {
	clientState, err := UnmarshalClientState(cdc, bz)
	if err != nil {
		panic(err)
	}
	return clientState
}

// MarshalConsensusState amino encodes a consensus state behind its interface.
func MarshalConsensusState(cdc *codec.LegacyAmino, consensusState exported.ConsensusState) ([]byte, error) {
	bz, err := cdc.Marshal(consensusState)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidConsensus, "failed to marshal consensus state %T: %s", consensusState, err)
	}
	return bz, nil
}

// MustMarshalConsensusState attempts to encode a ConsensusState object and returns the
// raw encoded bytes. It panics on error.
func MustMarshalConsensusState(cdc *codec.LegacyAmino, consensusState exported.ConsensusState) []byte {
	bz, err := MarshalConsensusState(cdc, consensusState)
	if err != nil {
		panic(err)
	}
	return bz
}

// UnmarshalConsensusState returns a ConsensusState interface from raw encoded
// consensus state bytes.
func UnmarshalConsensusState(cdc *codec.LegacyAmino, bz []byte) (exported.ConsensusState, error) {
	var consensusState exported.ConsensusState
	if err := cdc.Unmarshal(bz, &consensusState); err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidConsensus, "failed to unmarshal consensus state: %s", err)
	}
	return consensusState, nil
}

// MustUnmarshalConsensusState attempts to decode and return an ConsensusState object from
// raw encoded bytes. It panics on error.
func MustUnmarshalConsensusState(cdc *codec.LegacyAmino, bz []byte) exported.ConsensusState {
	consensusState, err := UnmarshalConsensusState(cdc, bz)
	if err != nil {
		panic(err)
	}
	return consensusState
}
