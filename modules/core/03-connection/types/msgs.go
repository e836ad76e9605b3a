package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// connection message type URLs
const (
	TypeMsgConnectionOpenInit    = "/ibc.core.connection.v1.MsgConnectionOpenInit"
	TypeMsgConnectionOpenTry     = "/ibc.core.connection.v1.MsgConnectionOpenTry"
	TypeMsgConnectionOpenAck     = "/ibc.core.connection.v1.MsgConnectionOpenAck"
	TypeMsgConnectionOpenConfirm = "/ibc.core.connection.v1.MsgConnectionOpenConfirm"
)

var (
	_ exported.Msg = (*MsgConnectionOpenInit)(nil)
	_ exported.Msg = (*MsgConnectionOpenTry)(nil)
	_ exported.Msg = (*MsgConnectionOpenAck)(nil)
	_ exported.Msg = (*MsgConnectionOpenConfirm)(nil)
)

// MsgConnectionOpenInit defines the msg sent by an account on Chain A to
// initialize a connection with Chain B.
type MsgConnectionOpenInit struct {
	// optional identifier chosen by the caller, a fresh one is generated when empty
	ConnectionId string       `json:"connection_id" yaml:"connection_id"`
	ClientId     string       `json:"client_id" yaml:"client_id"`
	Counterparty Counterparty `json:"counterparty" yaml:"counterparty"`
	Version      *Version     `json:"version" yaml:"version"`
	DelayPeriod  uint64       `json:"delay_period" yaml:"delay_period"`
	Signer       string       `json:"signer" yaml:"signer"`
}

// NewMsgConnectionOpenInit creates a new MsgConnectionOpenInit instance. It sets the
// counterparty connection identifier to be empty.
func NewMsgConnectionOpenInit(
	clientID, counterpartyClientID string,
	counterpartyPrefix commitmenttypes.MerklePrefix,
	version *Version, delayPeriod uint64, signer string,
) *MsgConnectionOpenInit {
	counterparty := NewCounterparty(counterpartyClientID, "", counterpartyPrefix)
	return &MsgConnectionOpenInit{
		ClientId:     clientID,
		Counterparty: counterparty,
		Version:      version,
		DelayPeriod:  delayPeriod,
		Signer:       signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgConnectionOpenInit) Type() string {
	return TypeMsgConnectionOpenInit
}

// ValidateBasic performs stateless checks
func (msg MsgConnectionOpenInit) ValidateBasic() error {
	if msg.ConnectionId != "" {
		if !IsValidConnectionID(msg.ConnectionId) {
			return ErrInvalidConnectionIdentifier
		}
	}
	if err := host.ClientIdentifierValidator(msg.ClientId); err != nil {
		return sdkerrors.Wrap(err, "invalid client ID")
	}
	if msg.Counterparty.ConnectionId != "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty connection identifier must be empty")
	}

	// NOTE: Version can be nil on MsgConnectionOpenInit
	if msg.Version != nil {
		if err := ValidateVersion(msg.Version); err != nil {
			return sdkerrors.Wrap(err, "basic validation of the provided version failed")
		}
	}
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	return msg.Counterparty.ValidateBasic()
}

// MsgConnectionOpenTry defines a msg sent by a Relayer to try to open a
// connection on Chain B.
type MsgConnectionOpenTry struct {
	ClientId string `json:"client_id" yaml:"client_id"`
	// in the case of crossing hello's, when both chains call OpenInit, we need
	// the connection identifier of the previous connection in state INIT
	PreviousConnectionId string               `json:"previous_connection_id" yaml:"previous_connection_id"`
	ClientState          exported.ClientState `json:"client_state" yaml:"client_state"`
	Counterparty         Counterparty         `json:"counterparty" yaml:"counterparty"`
	DelayPeriod          uint64               `json:"delay_period" yaml:"delay_period"`
	CounterpartyVersions []*Version           `json:"counterparty_versions" yaml:"counterparty_versions"`
	ProofHeight          clienttypes.Height   `json:"proof_height" yaml:"proof_height"`
	// proof of the initialization the connection on Chain A: `UNITIALIZED ->
	// INIT`
	ProofInit []byte `json:"proof_init" yaml:"proof_init"`
	// proof of client state included in message
	ProofClient []byte `json:"proof_client" yaml:"proof_client"`
	// proof of client consensus state
	ProofConsensus  []byte             `json:"proof_consensus" yaml:"proof_consensus"`
	ConsensusHeight clienttypes.Height `json:"consensus_height" yaml:"consensus_height"`
	Signer          string             `json:"signer" yaml:"signer"`
}

// NewMsgConnectionOpenTry creates a new MsgConnectionOpenTry instance
func NewMsgConnectionOpenTry(
	previousConnectionID, clientID, counterpartyConnectionID,
	counterpartyClientID string, counterpartyClient exported.ClientState,
	counterpartyPrefix commitmenttypes.MerklePrefix,
	counterpartyVersions []*Version, delayPeriod uint64,
	proofInit, proofClient, proofConsensus []byte,
	proofHeight, consensusHeight clienttypes.Height, signer string,
) *MsgConnectionOpenTry {
	counterparty := NewCounterparty(counterpartyClientID, counterpartyConnectionID, counterpartyPrefix)
	return &MsgConnectionOpenTry{
		PreviousConnectionId: previousConnectionID,
		ClientId:             clientID,
		ClientState:          counterpartyClient,
		Counterparty:         counterparty,
		CounterpartyVersions: counterpartyVersions,
		DelayPeriod:          delayPeriod,
		ProofInit:            proofInit,
		ProofClient:          proofClient,
		ProofConsensus:       proofConsensus,
		ProofHeight:          proofHeight,
		ConsensusHeight:      consensusHeight,
		Signer:               signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgConnectionOpenTry) Type() string {
	return TypeMsgConnectionOpenTry
}

// ValidateBasic performs stateless checks
func (msg MsgConnectionOpenTry) ValidateBasic() error {
	if msg.PreviousConnectionId != "" {
		if !IsValidConnectionID(msg.PreviousConnectionId) {
			return sdkerrors.Wrap(ErrInvalidConnectionIdentifier, "invalid previous connection ID")
		}
	}
	if err := host.ClientIdentifierValidator(msg.ClientId); err != nil {
		return sdkerrors.Wrap(err, "invalid client ID")
	}
	// counterparty validate basic allows empty counterparty connection identifiers
	if err := host.ConnectionIdentifierValidator(msg.Counterparty.ConnectionId); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty connection ID")
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "counterparty client is nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return sdkerrors.Wrap(err, "counterparty client is invalid")
	}
	if len(msg.CounterpartyVersions) == 0 {
		return sdkerrors.Wrap(ErrEmptyVersions, "empty counterparty versions")
	}
	for i, version := range msg.CounterpartyVersions {
		if err := ValidateVersion(version); err != nil {
			return sdkerrors.Wrapf(err, "basic validation failed on version with index %d", i)
		}
	}
	if len(msg.ProofInit) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof init")
	}
	if len(msg.ProofClient) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit empty proof client")
	}
	if len(msg.ProofConsensus) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof of consensus state")
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(ErrMissingProofHeight, "proof height must be non-zero")
	}
	if msg.ConsensusHeight.IsZero() {
		return sdkerrors.Wrap(ErrMissingConsensusHeight, "consensus height must be non-zero")
	}
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	return msg.Counterparty.ValidateBasic()
}

// MsgConnectionOpenAck defines a msg sent by a Relayer to Chain A to
// acknowledge the change of connection state to TRYOPEN on Chain B.
type MsgConnectionOpenAck struct {
	ConnectionId             string               `json:"connection_id" yaml:"connection_id"`
	CounterpartyConnectionId string               `json:"counterparty_connection_id" yaml:"counterparty_connection_id"`
	Version                  *Version             `json:"version" yaml:"version"`
	ClientState              exported.ClientState `json:"client_state" yaml:"client_state"`
	ProofHeight              clienttypes.Height   `json:"proof_height" yaml:"proof_height"`
	// proof of the initialization the connection on Chain B: `UNITIALIZED ->
	// TRYOPEN`
	ProofTry []byte `json:"proof_try" yaml:"proof_try"`
	// proof of client state included in message
	ProofClient []byte `json:"proof_client" yaml:"proof_client"`
	// proof of client consensus state
	ProofConsensus  []byte             `json:"proof_consensus" yaml:"proof_consensus"`
	ConsensusHeight clienttypes.Height `json:"consensus_height" yaml:"consensus_height"`
	Signer          string             `json:"signer" yaml:"signer"`
}

// NewMsgConnectionOpenAck creates a new MsgConnectionOpenAck instance
func NewMsgConnectionOpenAck(
	connectionID, counterpartyConnectionID string, counterpartyClient exported.ClientState,
	proofTry, proofClient, proofConsensus []byte,
	proofHeight, consensusHeight clienttypes.Height,
	version *Version,
	signer string,
) *MsgConnectionOpenAck {
	return &MsgConnectionOpenAck{
		ConnectionId:             connectionID,
		CounterpartyConnectionId: counterpartyConnectionID,
		ClientState:              counterpartyClient,
		ProofTry:                 proofTry,
		ProofClient:              proofClient,
		ProofConsensus:           proofConsensus,
		ProofHeight:              proofHeight,
		ConsensusHeight:          consensusHeight,
		Version:                  version,
		Signer:                   signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgConnectionOpenAck) Type() string {
	return TypeMsgConnectionOpenAck
}

// ValidateBasic performs stateless checks
func (msg MsgConnectionOpenAck) ValidateBasic() error {
	if !IsValidConnectionID(msg.ConnectionId) {
		return ErrInvalidConnectionIdentifier
	}
	if err := host.ConnectionIdentifierValidator(msg.CounterpartyConnectionId); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty connection ID")
	}
	if err := ValidateVersion(msg.Version); err != nil {
		return err
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "counterparty client is nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return sdkerrors.Wrap(err, "counterparty client is invalid")
	}
	if len(msg.ProofTry) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof try")
	}
	if len(msg.ProofClient) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit empty proof client")
	}
	if len(msg.ProofConsensus) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof of consensus state")
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(ErrMissingProofHeight, "proof height must be non-zero")
	}
	if msg.ConsensusHeight.IsZero() {
		return sdkerrors.Wrap(ErrMissingConsensusHeight, "consensus height must be non-zero")
	}
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	return nil
}

// MsgConnectionOpenConfirm defines a msg sent by a Relayer to Chain B to
// acknowledge the change of connection state to OPEN on Chain A.
type MsgConnectionOpenConfirm struct {
	ConnectionId string `json:"connection_id" yaml:"connection_id"`
	// proof for the change of the connection state on Chain A: `INIT -> OPEN`
	ProofAck    []byte             `json:"proof_ack" yaml:"proof_ack"`
	ProofHeight clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer      string             `json:"signer" yaml:"signer"`
}

// NewMsgConnectionOpenConfirm creates a new MsgConnectionOpenConfirm instance
func NewMsgConnectionOpenConfirm(
	connectionID string, proofAck []byte, proofHeight clienttypes.Height,
	signer string,
) *MsgConnectionOpenConfirm {
	return &MsgConnectionOpenConfirm{
		ConnectionId: connectionID,
		ProofAck:     proofAck,
		ProofHeight:  proofHeight,
		Signer:       signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgConnectionOpenConfirm) Type() string {
	return TypeMsgConnectionOpenConfirm
}

// ValidateBasic performs stateless checks
func (msg MsgConnectionOpenConfirm) ValidateBasic() error {
	if !IsValidConnectionID(msg.ConnectionId) {
		return ErrInvalidConnectionIdentifier
	}
	if len(msg.ProofAck) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof ack")
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(ErrMissingProofHeight, "proof height must be non-zero")
	}
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	return nil
}
