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

// channel message type URLs
const (
	TypeMsgChannelOpenInit     = "/ibc.core.channel.v1.MsgChannelOpenInit"
	TypeMsgChannelOpenTry      = "/ibc.core.channel.v1.MsgChannelOpenTry"
	TypeMsgChannelOpenAck      = "/ibc.core.channel.v1.MsgChannelOpenAck"
	TypeMsgChannelOpenConfirm  = "/ibc.core.channel.v1.MsgChannelOpenConfirm"
	TypeMsgChannelCloseInit    = "/ibc.core.channel.v1.MsgChannelCloseInit"
	TypeMsgChannelCloseConfirm = "/ibc.core.channel.v1.MsgChannelCloseConfirm"
	TypeMsgRecvPacket          = "/ibc.core.channel.v1.MsgRecvPacket"
	TypeMsgTimeout             = "/ibc.core.channel.v1.MsgTimeout"
	TypeMsgTimeoutOnClose      = "/ibc.core.channel.v1.MsgTimeoutOnClose"
	TypeMsgAcknowledgement     = "/ibc.core.channel.v1.MsgAcknowledgement"
)

var (
	_ exported.Msg = (*MsgChannelOpenInit)(nil)
	_ exported.Msg = (*MsgChannelOpenTry)(nil)
	_ exported.Msg = (*MsgChannelOpenAck)(nil)
	_ exported.Msg = (*MsgChannelOpenConfirm)(nil)
	_ exported.Msg = (*MsgChannelCloseInit)(nil)
	_ exported.Msg = (*MsgChannelCloseConfirm)(nil)
	_ exported.Msg = (*MsgRecvPacket)(nil)
	_ exported.Msg = (*MsgTimeout)(nil)
	_ exported.Msg = (*MsgTimeoutOnClose)(nil)
	_ exported.Msg = (*MsgAcknowledgement)(nil)
)

func validateSigner(signer string) error {
	if _, err := sdk.AccAddressFromBech32(signer); err != nil {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	return nil
}

func validateProof(proof []byte, proofHeight clienttypes.Height) error {
	if len(proof) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof")
	}
	if proofHeight.IsZero() {
		return sdkerrors.Wrap(ibcerrors.ErrInvalidHeight, "proof height must be non-zero")
	}
	return nil
}

// MsgChannelOpenInit defines an sdk.Msg to initialize a channel handshake. It
// is called by a relayer on Chain A.
type MsgChannelOpenInit struct {
	PortId string `json:"port_id" yaml:"port_id"`
	// optional identifier chosen by the caller, a fresh one is generated when empty
	ChannelId string  `json:"channel_id" yaml:"channel_id"`
	Channel   Channel `json:"channel" yaml:"channel"`
	Signer    string  `json:"signer" yaml:"signer"`
}

// NewMsgChannelOpenInit creates a new MsgChannelOpenInit. It sets the counterparty channel
// identifier to be empty.
func NewMsgChannelOpenInit(
	portID, version string, channelOrder Order, connectionHops []string,
	counterpartyPortID string, signer string,
) *MsgChannelOpenInit {
	counterparty := NewCounterparty(counterpartyPortID, "")
	channel := NewChannel(INIT, channelOrder, counterparty, connectionHops, version)
	return &MsgChannelOpenInit{
		PortId:  portID,
		Channel: channel,
		Signer:  signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelOpenInit) Type() string {
	return TypeMsgChannelOpenInit
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelOpenInit) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if msg.ChannelId != "" && !IsValidChannelID(msg.ChannelId) {
		return sdkerrors.Wrapf(ErrInvalidChannelIdentifier, "invalid channel ID %s", msg.ChannelId)
	}
	if msg.Channel.State != INIT {
		return sdkerrors.Wrapf(ErrInvalidChannelState,
			"channel state must be INIT in MsgChannelOpenInit. expected: %s, got: %s",
			INIT, msg.Channel.State,
		)
	}
	if msg.Channel.Counterparty.ChannelId != "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty channel identifier must be empty")
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Channel.ValidateBasic()
}

// MsgChannelOpenTry defines a msg sent by a Relayer to try to open a channel
// on Chain B.
type MsgChannelOpenTry struct {
	PortId string `json:"port_id" yaml:"port_id"`
	// in the case of crossing hello's, when both chains call OpenInit, we need
	// the channel identifier of the previous channel in state INIT
	PreviousChannelId   string             `json:"previous_channel_id" yaml:"previous_channel_id"`
	Channel             Channel            `json:"channel" yaml:"channel"`
	CounterpartyVersion string             `json:"counterparty_version" yaml:"counterparty_version"`
	ProofInit           []byte             `json:"proof_init" yaml:"proof_init"`
	ProofHeight         clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer              string             `json:"signer" yaml:"signer"`
}

// NewMsgChannelOpenTry creates a new MsgChannelOpenTry instance
func NewMsgChannelOpenTry(
	portID, previousChannelID, version string, channelOrder Order, connectionHops []string,
	counterpartyPortID, counterpartyChannelID, counterpartyVersion string,
	proofInit []byte, proofHeight clienttypes.Height, signer string,
) *MsgChannelOpenTry {
	counterparty := NewCounterparty(counterpartyPortID, counterpartyChannelID)
	channel := NewChannel(TRYOPEN, channelOrder, counterparty, connectionHops, version)
	return &MsgChannelOpenTry{
		PortId:              portID,
		PreviousChannelId:   previousChannelID,
		Channel:             channel,
		CounterpartyVersion: counterpartyVersion,
		ProofInit:           proofInit,
		ProofHeight:         proofHeight,
		Signer:              signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelOpenTry) Type() string {
	return TypeMsgChannelOpenTry
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelOpenTry) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if msg.PreviousChannelId != "" && !IsValidChannelID(msg.PreviousChannelId) {
		return sdkerrors.Wrap(ErrInvalidChannelIdentifier, "invalid previous channel ID")
	}
	if err := validateProof(msg.ProofInit, msg.ProofHeight); err != nil {
		return err
	}
	if msg.Channel.State != TRYOPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState,
			"channel state must be TRYOPEN in MsgChannelOpenTry. expected: %s, got: %s",
			TRYOPEN, msg.Channel.State,
		)
	}
	// counterpartyChannelID is validated in Channel.ValidateBasic
	if msg.Channel.Counterparty.ChannelId == "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty channel identifier cannot be empty")
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Channel.ValidateBasic()
}

// MsgChannelOpenAck defines a msg sent by a Relayer to Chain A to acknowledge
// the change of channel state to TRYOPEN on Chain B.
type MsgChannelOpenAck struct {
	PortId                string             `json:"port_id" yaml:"port_id"`
	ChannelId             string             `json:"channel_id" yaml:"channel_id"`
	CounterpartyChannelId string             `json:"counterparty_channel_id" yaml:"counterparty_channel_id"`
	CounterpartyVersion   string             `json:"counterparty_version" yaml:"counterparty_version"`
	ProofTry              []byte             `json:"proof_try" yaml:"proof_try"`
	ProofHeight           clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer                string             `json:"signer" yaml:"signer"`
}

// NewMsgChannelOpenAck creates a new MsgChannelOpenAck instance
func NewMsgChannelOpenAck(
	portID, channelID, counterpartyChannelID string, cpv string, proofTry []byte, proofHeight clienttypes.Height,
	signer string,
) *MsgChannelOpenAck {
	return &MsgChannelOpenAck{
		PortId:                portID,
		ChannelId:             channelID,
		CounterpartyChannelId: counterpartyChannelID,
		CounterpartyVersion:   cpv,
		ProofTry:              proofTry,
		ProofHeight:           proofHeight,
		Signer:                signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelOpenAck) Type() string {
	return TypeMsgChannelOpenAck
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelOpenAck) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if !IsValidChannelID(msg.ChannelId) {
		return ErrInvalidChannelIdentifier
	}
	if err := host.ChannelIdentifierValidator(msg.CounterpartyChannelId); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty channel ID")
	}
	if err := validateProof(msg.ProofTry, msg.ProofHeight); err != nil {
		return err
	}
	return validateSigner(msg.Signer)
}

// MsgChannelOpenConfirm defines a msg sent by a Relayer to Chain B to
// acknowledge the change of channel state to OPEN on Chain A.
type MsgChannelOpenConfirm struct {
	PortId      string             `json:"port_id" yaml:"port_id"`
	ChannelId   string             `json:"channel_id" yaml:"channel_id"`
	ProofAck    []byte             `json:"proof_ack" yaml:"proof_ack"`
	ProofHeight clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer      string             `json:"signer" yaml:"signer"`
}

// NewMsgChannelOpenConfirm creates a new MsgChannelOpenConfirm instance
func NewMsgChannelOpenConfirm(
	portID, channelID string, proofAck []byte, proofHeight clienttypes.Height,
	signer string,
) *MsgChannelOpenConfirm {
	return &MsgChannelOpenConfirm{
		PortId:      portID,
		ChannelId:   channelID,
		ProofAck:    proofAck,
		ProofHeight: proofHeight,
		Signer:      signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelOpenConfirm) Type() string {
	return TypeMsgChannelOpenConfirm
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelOpenConfirm) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if !IsValidChannelID(msg.ChannelId) {
		return ErrInvalidChannelIdentifier
	}
	if err := validateProof(msg.ProofAck, msg.ProofHeight); err != nil {
		return err
	}
	return validateSigner(msg.Signer)
}

// MsgChannelCloseInit defines a msg sent by a Relayer to Chain A
// to close a channel with Chain B.
type MsgChannelCloseInit struct {
	PortId    string `json:"port_id" yaml:"port_id"`
	ChannelId string `json:"channel_id" yaml:"channel_id"`
	Signer    string `json:"signer" yaml:"signer"`
}

// NewMsgChannelCloseInit creates a new MsgChannelCloseInit instance
func NewMsgChannelCloseInit(
	portID string, channelID string, signer string,
) *MsgChannelCloseInit {
	return &MsgChannelCloseInit{
		PortId:    portID,
		ChannelId: channelID,
		Signer:    signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelCloseInit) Type() string {
	return TypeMsgChannelCloseInit
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelCloseInit) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if !IsValidChannelID(msg.ChannelId) {
		return ErrInvalidChannelIdentifier
	}
	return validateSigner(msg.Signer)
}

// MsgChannelCloseConfirm defines a msg sent by a Relayer to Chain B
// to acknowledge the change of channel state to CLOSED on Chain A.
type MsgChannelCloseConfirm struct {
	PortId      string             `json:"port_id" yaml:"port_id"`
	ChannelId   string             `json:"channel_id" yaml:"channel_id"`
	ProofInit   []byte             `json:"proof_init" yaml:"proof_init"`
	ProofHeight clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer      string             `json:"signer" yaml:"signer"`
}

// NewMsgChannelCloseConfirm creates a new MsgChannelCloseConfirm instance
func NewMsgChannelCloseConfirm(
	portID, channelID string, proofInit []byte, proofHeight clienttypes.Height,
	signer string,
) *MsgChannelCloseConfirm {
	return &MsgChannelCloseConfirm{
		PortId:      portID,
		ChannelId:   channelID,
		ProofInit:   proofInit,
		ProofHeight: proofHeight,
		Signer:      signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgChannelCloseConfirm) Type() string {
	return TypeMsgChannelCloseConfirm
}

// ValidateBasic implements sdk.Msg
func (msg MsgChannelCloseConfirm) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortId); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if !IsValidChannelID(msg.ChannelId) {
		return ErrInvalidChannelIdentifier
	}
	if err := validateProof(msg.ProofInit, msg.ProofHeight); err != nil {
		return err
	}
	return validateSigner(msg.Signer)
}

// MsgRecvPacket receives incoming IBC packet
type MsgRecvPacket struct {
	Packet          Packet             `json:"packet" yaml:"packet"`
	ProofCommitment []byte             `json:"proof_commitment" yaml:"proof_commitment"`
	ProofHeight     clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer          string             `json:"signer" yaml:"signer"`
}

// NewMsgRecvPacket constructs new MsgRecvPacket
func NewMsgRecvPacket(
	packet Packet, proofCommitment []byte, proofHeight clienttypes.Height,
	signer string,
) *MsgRecvPacket {
	return &MsgRecvPacket{
		Packet:          packet,
		ProofCommitment: proofCommitment,
		ProofHeight:     proofHeight,
		Signer:          signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgRecvPacket) Type() string {
	return TypeMsgRecvPacket
}

// ValidateBasic implements sdk.Msg
func (msg MsgRecvPacket) ValidateBasic() error {
	if err := validateProof(msg.ProofCommitment, msg.ProofHeight); err != nil {
		return err
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgTimeout receives timed-out packet
type MsgTimeout struct {
	Packet           Packet             `json:"packet" yaml:"packet"`
	ProofUnreceived  []byte             `json:"proof_unreceived" yaml:"proof_unreceived"`
	ProofHeight      clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	NextSequenceRecv uint64             `json:"next_sequence_recv" yaml:"next_sequence_recv"`
	Signer           string             `json:"signer" yaml:"signer"`
}

// NewMsgTimeout constructs new MsgTimeout
func NewMsgTimeout(
	packet Packet, nextSequenceRecv uint64, proofUnreceived []byte,
	proofHeight clienttypes.Height, signer string,
) *MsgTimeout {
	return &MsgTimeout{
		Packet:           packet,
		NextSequenceRecv: nextSequenceRecv,
		ProofUnreceived:  proofUnreceived,
		ProofHeight:      proofHeight,
		Signer:           signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgTimeout) Type() string {
	return TypeMsgTimeout
}

// ValidateBasic implements sdk.Msg
func (msg MsgTimeout) ValidateBasic() error {
	if err := validateProof(msg.ProofUnreceived, msg.ProofHeight); err != nil {
		return err
	}
	if msg.NextSequenceRecv == 0 {
		return sdkerrors.Wrap(ibcerrors.ErrInvalidSequence, "next sequence receive cannot be 0")
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgTimeoutOnClose timed-out packet upon counterparty channel closure.
type MsgTimeoutOnClose struct {
	Packet           Packet             `json:"packet" yaml:"packet"`
	ProofUnreceived  []byte             `json:"proof_unreceived" yaml:"proof_unreceived"`
	ProofClose       []byte             `json:"proof_close" yaml:"proof_close"`
	ProofHeight      clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	NextSequenceRecv uint64             `json:"next_sequence_recv" yaml:"next_sequence_recv"`
	Signer           string             `json:"signer" yaml:"signer"`
}

// NewMsgTimeoutOnClose constructs new MsgTimeoutOnClose
func NewMsgTimeoutOnClose(
	packet Packet, nextSequenceRecv uint64,
	proofUnreceived, proofClose []byte,
	proofHeight clienttypes.Height, signer string,
) *MsgTimeoutOnClose {
	return &MsgTimeoutOnClose{
		Packet:           packet,
		NextSequenceRecv: nextSequenceRecv,
		ProofUnreceived:  proofUnreceived,
		ProofClose:       proofClose,
		ProofHeight:      proofHeight,
		Signer:           signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgTimeoutOnClose) Type() string {
	return TypeMsgTimeoutOnClose
}

// ValidateBasic implements sdk.Msg
func (msg MsgTimeoutOnClose) ValidateBasic() error {
	if msg.NextSequenceRecv == 0 {
		return sdkerrors.Wrap(ibcerrors.ErrInvalidSequence, "next sequence receive cannot be 0")
	}
	if len(msg.ProofClose) == 0 {
		return sdkerrors.Wrap(commitmenttypes.ErrInvalidProof, "cannot submit an empty proof of closed counterparty channel end")
	}
	if err := validateProof(msg.ProofUnreceived, msg.ProofHeight); err != nil {
		return err
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgAcknowledgement receives incoming IBC acknowledgement
type MsgAcknowledgement struct {
	Packet          Packet             `json:"packet" yaml:"packet"`
	Acknowledgement []byte             `json:"acknowledgement" yaml:"acknowledgement"`
	ProofAcked      []byte             `json:"proof_acked" yaml:"proof_acked"`
	ProofHeight     clienttypes.Height `json:"proof_height" yaml:"proof_height"`
	Signer          string             `json:"signer" yaml:"signer"`
}

// NewMsgAcknowledgement constructs a new MsgAcknowledgement
func NewMsgAcknowledgement(
	packet Packet,
	ack, proofAcked []byte,
	proofHeight clienttypes.Height,
	signer string,
) *MsgAcknowledgement {
	return &MsgAcknowledgement{
		Packet:          packet,
		Acknowledgement: ack,
		ProofAcked:      proofAcked,
		ProofHeight:     proofHeight,
		Signer:          signer,
	}
}

// Type returns the type URL of the message.
func (msg MsgAcknowledgement) Type() string {
	return TypeMsgAcknowledgement
}

// ValidateBasic implements sdk.Msg
func (msg MsgAcknowledgement) ValidateBasic() error {
	if err := validateProof(msg.ProofAcked, msg.ProofHeight); err != nil {
		return err
	}
	if len(msg.Acknowledgement) == 0 {
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "ack bytes cannot be empty")
	}
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// ResponseResultType defines the possible outcomes of the execution of a message
type ResponseResultType int32

const (
	// Default zero value enumeration
	UNSPECIFIED ResponseResultType = 0
	// The message did not call the IBC application callbacks (because, for example, the packet had already been relayed)
	NOOP ResponseResultType = 1
	// The message was executed successfully
	SUCCESS ResponseResultType = 2
)

// String implements the Stringer interface.
func (r ResponseResultType) String() string {
	switch r {
	case NOOP:
		return "RESPONSE_RESULT_TYPE_NOOP"
	case SUCCESS:
		return "RESPONSE_RESULT_TYPE_SUCCESS"
	default:
		return "RESPONSE_RESULT_TYPE_UNSPECIFIED"
	}
}
