// Package provider defines the capabilities the relayer needs from a chain.
// A backend answers state queries with proofs at a given height, builds the
// headers that update the counterparty's light client of it, submits messages
// and announces finalized heights.
package provider

import (
	"context"
	"time"

	abci "github.com/tendermint/tendermint/abci/types"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// FinalityEvent announces a finalized height of a chain.
type FinalityEvent struct {
	Height clienttypes.Height
	Time   time.Time
}

// TxResponse is the outcome of a successful submission.
type TxResponse struct {
	// Height of the block the messages were included in. Their effects can
	// be proven from the next height on.
	Height int64
	Events []abci.Event
}

// ChannelPort identifies a channel end.
type ChannelPort struct {
	ChannelID string `mapstructure:"channel_id" yaml:"channel_id" json:"channel_id"`
	PortID    string `mapstructure:"port_id" yaml:"port_id" json:"port_id"`
}

// PacketAck is a packet received on a chain with the acknowledgement written
// for it.
type PacketAck struct {
	Packet channeltypes.Packet
	Ack    []byte
}

// ChainProvider gives the relayer access to one chain. Query methods take the
// height of the header the answer is proven against, and the returned proofs
// verify against the consensus state a client stores for that height.
type ChainProvider interface {
	// Name is the config name of the chain, used in logs.
	Name() string
	ChainID() string
	// ClientID is the client of the counterparty chain hosted on this chain.
	ClientID() string
	// ConnectionID is the connection relayed on, empty until it is known.
	ConnectionID() string
	SetClientID(clientID string)
	SetConnectionID(connectionID string)
	ClientType() string
	ConnectionPrefix() commitmenttypes.MerklePrefix
	// Signer is the address set as signer of submitted messages.
	Signer() string
	// ChannelWhitelist lists the channels packets are relayed on.
	ChannelWhitelist() []ChannelPort
	ExpectedBlockTime() time.Duration

	// LatestHeightAndTimestamp returns the latest finalized height and its
	// timestamp in nanoseconds.
	LatestHeightAndTimestamp(ctx context.Context) (clienttypes.Height, uint64, error)

	// ics02
	QueryClientState(ctx context.Context, at clienttypes.Height, clientID string) (exported.ClientState, []byte, error)
	QueryClientConsensusState(ctx context.Context, at clienttypes.Height, clientID string, consensusHeight exported.Height) (exported.ConsensusState, []byte, error)

	// ics03
	QueryConnectionEnd(ctx context.Context, at clienttypes.Height, connectionID string) (connectiontypes.ConnectionEnd, []byte, error)
	QueryConnectionsUsingClient(ctx context.Context, at clienttypes.Height, clientID string) ([]connectiontypes.IdentifiedConnection, error)

	// ics04
	QueryChannelEnd(ctx context.Context, at clienttypes.Height, portID, channelID string) (channeltypes.Channel, []byte, error)
	QueryConnectionChannels(ctx context.Context, at clienttypes.Height, connectionID string) ([]channeltypes.IdentifiedChannel, error)
	QueryPacketCommitment(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) ([]byte, []byte, error)
	QueryPacketAcknowledgement(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) ([]byte, []byte, error)
	QueryPacketReceipt(ctx context.Context, at clienttypes.Height, portID, channelID string, seq uint64) (bool, []byte, error)
	QueryNextSequenceRecv(ctx context.Context, at clienttypes.Height, portID, channelID string) (uint64, []byte, error)
	QueryPacketCommitments(ctx context.Context, at clienttypes.Height, portID, channelID string) ([]uint64, error)
	QueryPacketAcknowledgements(ctx context.Context, at clienttypes.Height, portID, channelID string) ([]uint64, error)
	QueryUnreceivedPackets(ctx context.Context, at clienttypes.Height, portID, channelID string, seqs []uint64) ([]uint64, error)
	QueryUnreceivedAcknowledgements(ctx context.Context, at clienttypes.Height, portID, channelID string, seqs []uint64) ([]uint64, error)
	// QuerySendPackets rebuilds the packets sent on port/channel with the
	// given sequences. Unknown sequences are skipped.
	QuerySendPackets(ctx context.Context, portID, channelID string, seqs []uint64) ([]channeltypes.Packet, error)
	// QueryRecvPackets returns the packets received on port/channel with the
	// given sequences together with their acknowledgement.
	QueryRecvPackets(ctx context.Context, portID, channelID string, seqs []uint64) ([]PacketAck, error)

	// QueryProof returns the proof of key at height.
	QueryProof(ctx context.Context, at clienttypes.Height, key []byte) ([]byte, error)

	// InitializeClientState returns the client and consensus state creating
	// a client of this chain on a counterparty.
	InitializeClientState(ctx context.Context) (exported.ClientState, exported.ConsensusState, error)
	// UpdateHeader returns a header of the latest height, trusted from
	// trustedHeight, that updates a client of this chain.
	UpdateHeader(ctx context.Context, trustedHeight clienttypes.Height) (exported.Header, error)

	// FinalityNotifications streams finality events until ctx is done.
	FinalityNotifications(ctx context.Context) (<-chan FinalityEvent, error)
	// Submit delivers msgs in one atomic transaction.
	Submit(ctx context.Context, msgs []exported.Msg) (*TxResponse, error)
}
