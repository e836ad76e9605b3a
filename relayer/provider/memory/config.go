package memory

import (
	"fmt"
	"path/filepath"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	host "github.com/hyperspace-relayer/ibc-core/modules/core/24-host"
	ibcerrors "github.com/hyperspace-relayer/ibc-core/modules/core/errors"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
	"github.com/hyperspace-relayer/ibc-core/simapp"
)

const (
	// BackendType is the config type tag of the memory backend.
	BackendType = "memory"

	DefaultValidators    = 4
	DefaultMaxClockDrift = 10 * time.Second
)

// DefaultTrustingPeriod is two thirds of the unbonding period of the chain.
var DefaultTrustingPeriod = simapp.DefaultUnbondingTime * 2 / 3

// Config configures an in-process chain and the provider over it.
type Config struct {
	Name             string                 `mapstructure:"name" yaml:"name"`
	ChainID          string                 `mapstructure:"chain_id" yaml:"chain_id"`
	ClientID         string                 `mapstructure:"client_id" yaml:"client_id,omitempty"`
	ConnectionID     string                 `mapstructure:"connection_id" yaml:"connection_id,omitempty"`
	ChannelWhitelist []provider.ChannelPort `mapstructure:"channel_whitelist" yaml:"channel_whitelist,omitempty"`

	// BlockTime is the interval blocks are produced at. When zero, each
	// submission seals its own block.
	BlockTime time.Duration `mapstructure:"block_time" yaml:"block_time"`
	// DBBackend is memdb or goleveldb. goleveldb stores the chain under Home.
	DBBackend  string `mapstructure:"db_backend" yaml:"db_backend"`
	Home       string `mapstructure:"home" yaml:"home,omitempty"`
	Validators int    `mapstructure:"validators" yaml:"validators"`
	// Revision, when set, is appended to the chain id as `<chain_id>-<revision>`.
	Revision uint64 `mapstructure:"revision" yaml:"revision,omitempty"`

	TrustingPeriod time.Duration `mapstructure:"trusting_period" yaml:"trusting_period"`
	MaxClockDrift  time.Duration `mapstructure:"max_clock_drift" yaml:"max_clock_drift"`
	// MaxExpectedTimePerBlock is the connection parameter converting delay
	// periods into a number of blocks.
	MaxExpectedTimePerBlock time.Duration `mapstructure:"max_expected_time_per_block" yaml:"max_expected_time_per_block"`
}

// DefaultConfig returns the config of a memdb chain producing a block per
// second.
func DefaultConfig(name, chainID string) Config {
	return Config{
		Name:           name,
		ChainID:        chainID,
		BlockTime:      time.Second,
		DBBackend:      string(dbm.MemDBBackend),
		Validators:     DefaultValidators,
		TrustingPeriod: DefaultTrustingPeriod,
		MaxClockDrift:  DefaultMaxClockDrift,

		MaxExpectedTimePerBlock: connectiontypes.DefaultTimePerBlock,
	}
}

// FullChainID returns the chain id with the configured revision applied.
func (cfg Config) FullChainID() (string, error) {
	if cfg.Revision == 0 {
		return cfg.ChainID, nil
	}
	if clienttypes.IsRevisionFormat(cfg.ChainID) {
		return clienttypes.SetRevisionNumber(cfg.ChainID, cfg.Revision)
	}
	return fmt.Sprintf("%s-%d", cfg.ChainID, cfg.Revision), nil
}

// Validate checks the config for an obviously broken chain.
func (cfg Config) Validate() error {
	if cfg.ChainID == "" {
		return sdkerrors.Wrap(ibcerrors.ErrInvalidChainID, "chain id cannot be empty")
	}
	if cfg.ClientID != "" {
		if err := host.ClientIdentifierValidator(cfg.ClientID); err != nil {
			return err
		}
	}
	if cfg.ConnectionID != "" {
		if err := host.ConnectionIdentifierValidator(cfg.ConnectionID); err != nil {
			return err
		}
	}
	for _, entry := range cfg.ChannelWhitelist {
		if err := host.ChannelIdentifierValidator(entry.ChannelID); err != nil {
			return err
		}
		if err := host.PortIdentifierValidator(entry.PortID); err != nil {
			return err
		}
	}
	if cfg.BlockTime < 0 {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidRequest, "block time cannot be negative: %s", cfg.BlockTime)
	}
	if cfg.Validators < 0 {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidRequest, "validator count cannot be negative: %d", cfg.Validators)
	}
	if cfg.MaxExpectedTimePerBlock <= 0 {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidRequest, "max expected time per block must be positive: %s", cfg.MaxExpectedTimePerBlock)
	}
	if cfg.TrustingPeriod >= simapp.DefaultUnbondingTime {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidRequest, "trusting period %s must be below the unbonding period %s", cfg.TrustingPeriod, simapp.DefaultUnbondingTime)
	}

	switch dbm.BackendType(cfg.DBBackend) {
	case "", dbm.MemDBBackend:
	case dbm.GoLevelDBBackend:
		if cfg.Home == "" {
			return sdkerrors.Wrap(ibcerrors.ErrInvalidRequest, "goleveldb backend needs a home directory")
		}
	default:
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidRequest, "unsupported db backend %q", cfg.DBBackend)
	}
	return nil
}

// openDB opens the database the chain state lives in.
func (cfg Config) openDB(chainID string) (dbm.DB, error) {
	if dbm.BackendType(cfg.DBBackend) != dbm.GoLevelDBBackend {
		return dbm.NewMemDB(), nil
	}
	return dbm.NewDB(chainID, dbm.GoLevelDBBackend, filepath.Join(cfg.Home, "data"))
}
