package simapp

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
)

const (
	sendPacketPrefix = "send"
	writeAckPrefix   = "ack"
)

// PacketRecord is a packet sent or acknowledged on this chain together with
// the height of the block that emitted it. Ack is only set for written
// acknowledgements.
type PacketRecord struct {
	Packet channeltypes.Packet `json:"packet" yaml:"packet"`
	Ack    []byte              `json:"ack,omitempty" yaml:"ack"`
	Height int64               `json:"height" yaml:"height"`
}

// eventIndex keeps the send_packet and write_acknowledgement events of every
// committed block so packets can be rebuilt after their commitment is the only
// thing left in state.
type eventIndex struct {
	cdc *codec.LegacyAmino
	db  dbm.DB
}

func newEventIndex(cdc *codec.LegacyAmino, db dbm.DB) eventIndex {
	return eventIndex{cdc: cdc, db: db}
}

// record indexes the packets found in the events of the block at height.
func (idx eventIndex) record(height int64, events []abci.Event) error {
	batch := idx.db.NewBatch()
	defer batch.Close()

	for _, ev := range events {
		switch ev.Type {
		case channeltypes.EventTypeSendPacket:
			packets, err := channeltypes.ParsePacketsFromEvents(ev.Type, []abci.Event{ev})
			if err != nil {
				return err
			}
			rec := PacketRecord{Packet: packets[0], Height: height}
			key := indexKey(sendPacketPrefix, rec.Packet.SourcePort, rec.Packet.SourceChannel, rec.Packet.Sequence)
			if err := batch.Set(key, idx.cdc.MustMarshal(&rec)); err != nil {
				return err
			}

		case channeltypes.EventTypeWriteAck:
			packets, err := channeltypes.ParsePacketsFromEvents(ev.Type, []abci.Event{ev})
			if err != nil {
				return err
			}
			ack, err := channeltypes.ParseAckFromEvents([]abci.Event{ev})
			if err != nil {
				return err
			}
			rec := PacketRecord{Packet: packets[0], Ack: ack, Height: height}
			key := indexKey(writeAckPrefix, rec.Packet.DestinationPort, rec.Packet.DestinationChannel, rec.Packet.Sequence)
			if err := batch.Set(key, idx.cdc.MustMarshal(&rec)); err != nil {
				return err
			}
		}
	}

	return batch.Write()
}

// sentPackets returns the indexed packets sent from port/channel with the given
// sequences. Unknown sequences are skipped.
func (idx eventIndex) sentPackets(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	return idx.lookup(sendPacketPrefix, portID, channelID, seqs)
}

// writtenAcks returns the indexed acknowledgements written for packets received
// on port/channel with the given sequences. Unknown sequences are skipped.
func (idx eventIndex) writtenAcks(portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	return idx.lookup(writeAckPrefix, portID, channelID, seqs)
}

func (idx eventIndex) lookup(kind, portID, channelID string, seqs []uint64) ([]PacketRecord, error) {
	records := make([]PacketRecord, 0, len(seqs))
	for _, seq := range seqs {
		bz, err := idx.db.Get(indexKey(kind, portID, channelID, seq))
		if err != nil {
			return nil, err
		}
		if bz == nil {
			continue
		}

		var rec PacketRecord
		if err := idx.cdc.Unmarshal(bz, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func indexKey(kind, portID, channelID string, sequence uint64) []byte {
	return append([]byte(fmt.Sprintf("%s/%s/%s/", kind, portID, channelID)), sdk.Uint64ToBigEndian(sequence)...)
}
