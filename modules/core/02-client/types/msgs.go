package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// client message type URLs
const (
	TypeMsgCreateClient       = "/ibc.core.client.v1.MsgCreateClient"
	TypeMsgUpdateClient       = "/ibc.core.client.v1.MsgUpdateClient"
	TypeMsgSubmitMisbehaviour = "/ibc.core.client.v1.MsgSubmitMisbehaviour"
)

// MsgCreateClient defines a message to create an IBC client
type MsgCreateClient struct {
	ClientState    exported.ClientState    `json:"client_state" yaml:"client_state"`
	ConsensusState exported.ConsensusState `json:"consensus_state" yaml:"consensus_state"`
	Signer         string                  `json:"signer" yaml:"signer"`
}

// NewMsgCreateClient creates a new MsgCreateClient instance
func NewMsgCreateClient(
	clientState exported.ClientState, consensusState exported.ConsensusState, signer string,
) *MsgCreateClient {
	return &MsgCreateClient{
		ClientState:    clientState,
		ConsensusState: consensusState,
		Signer:         signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgCreateClient) Type() string {
	return TypeMsgCreateClient
}

// ValidateBasic performs stateless checks
func (msg MsgCreateClient) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(ErrInvalidClient, "client state cannot be nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return err
	}
	if msg.ConsensusState == nil {
		return sdkerrors.Wrap(ErrInvalidConsensus, "consensus state cannot be nil")
	}
	if msg.ClientState.ClientType() != msg.ConsensusState.ClientType() {
		return sdkerrors.Wrap(ErrInvalidClientType, "client type for client state and consensus state do not match")
	}
	if err := ValidateClientType(msg.ClientState.ClientType()); err != nil {
		return sdkerrors.Wrap(err, "client type does not meet naming constraints")
	}
	return msg.ConsensusState.ValidateBasic()
}

// MsgUpdateClient defines an sdk.Msg to update a IBC client state using
// the given header.
type MsgUpdateClient struct {
	ClientId string          `json:"client_id" yaml:"client_id"`
	Header   exported.Header `json:"header" yaml:"header"`
	Signer   string          `json:"signer" yaml:"signer"`
}

// NewMsgUpdateClient creates a new MsgUpdateClient instance
func NewMsgUpdateClient(id string, header exported.Header, signer string) *MsgUpdateClient {
	return &MsgUpdateClient{
		ClientId: id,
		Header:   header,
		Signer:   signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgUpdateClient) Type() string {
	return TypeMsgUpdateClient
}

// ValidateBasic performs stateless checks
func (msg MsgUpdateClient) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	if msg.Header == nil {
		return sdkerrors.Wrap(ErrInvalidHeader, "header cannot be nil")
	}
	if err := msg.Header.ValidateBasic(); err != nil {
		return err
	}
	return host.ClientIdentifierValidator(msg.ClientId)
}

// MsgSubmitMisbehaviour defines an sdk.Msg type that submits Evidence for
// light client misbehaviour.
type MsgSubmitMisbehaviour struct {
	ClientId     string                `json:"client_id" yaml:"client_id"`
	Misbehaviour exported.Misbehaviour `json:"misbehaviour" yaml:"misbehaviour"`
	Signer       string                `json:"signer" yaml:"signer"`
}

// NewMsgSubmitMisbehaviour creates a new MsgSubmitMisbehaviour instance.
func NewMsgSubmitMisbehaviour(clientID string, misbehaviour exported.Misbehaviour, signer string) *MsgSubmitMisbehaviour {
	return &MsgSubmitMisbehaviour{
		ClientId:     clientID,
		Misbehaviour: misbehaviour,
		Signer:       signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgSubmitMisbehaviour) Type() string {
	return TypeMsgSubmitMisbehaviour
}

// ValidateBasic performs basic (non-state-dependant) validation on a MsgSubmitMisbehaviour.
func (msg MsgSubmitMisbehaviour) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	if msg.Misbehaviour == nil {
		return sdkerrors.Wrap(ErrInvalidMisbehaviour, "misbehaviour cannot be nil")
	}
	if err := msg.Misbehaviour.ValidateBasic(); err != nil {
		return err
	}
	if msg.Misbehaviour.GetClientID() != msg.ClientId {
		return sdkerrors.Wrapf(
			ErrInvalidMisbehaviour,
			"misbehaviour client-id doesn't match client-id from message (%s ≠ %s)",
			msg.Misbehaviour.GetClientID(), msg.ClientId,
		)
	}

	return host.ClientIdentifierValidator(msg.ClientId)
}
