package types

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
)

// HistoricalInfo is the summary of a host block header kept so that the host
// can check what a counterparty light client claims to know about it.
type HistoricalInfo struct {
	Height             int64            `json:"height" yaml:"height"`
	Time               time.Time        `json:"time" yaml:"time"`
	AppHash            tmbytes.HexBytes `json:"app_hash" yaml:"app_hash"`
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash" yaml:"next_validators_hash"`
}

// NewHistoricalInfo summarises the given block header.
func NewHistoricalInfo(header tmproto.Header) HistoricalInfo {
	return HistoricalInfo{
		Height:             header.Height,
		Time:               header.Time.UTC(),
		AppHash:            header.AppHash,
		NextValidatorsHash: header.NextValidatorsHash,
	}
}

// ValidateBasic ensures the summary carries a root and a validator set hash.
func (hi HistoricalInfo) ValidateBasic() error {
	if hi.Height <= 0 {
		return sdkerrors.Wrapf(ErrInvalidHeight, "historical info height must be positive, got %d", hi.Height)
	}
	if len(hi.NextValidatorsHash) == 0 {
		return sdkerrors.Wrap(ErrInvalidConsensus, "next validators hash cannot be empty")
	}
	return nil
}
