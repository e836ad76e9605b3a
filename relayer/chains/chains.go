// Package chains holds the backends a relayed chain can run on and the
// relayer configuration selecting them. Every dispatch is a switch over the
// known backend types.
package chains

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider/memory"
)

// ErrUnsupportedBackend is returned for a chain config whose type names no
// known backend.
type ErrUnsupportedBackend struct {
	Type string
}

func (e ErrUnsupportedBackend) Error() string {
	return fmt.Sprintf("unsupported chain backend %q", e.Type)
}

// AnyConfig is the config of one chain, tagged by its backend type. Only the
// field of that backend is set.
type AnyConfig struct {
	Type   string
	Memory *memory.Config
}

// NewMemoryConfig wraps a memory backend config.
func NewMemoryConfig(cfg memory.Config) AnyConfig {
	return AnyConfig{Type: memory.BackendType, Memory: &cfg}
}

func (c AnyConfig) Validate() error {
	switch c.Type {
	case memory.BackendType:
		if c.Memory == nil {
			return fmt.Errorf("%s chain config is missing", c.Type)
		}
		return c.Memory.Validate()
	default:
		return ErrUnsupportedBackend{Type: c.Type}
	}
}

// ChainID returns the configured chain id.
func (c AnyConfig) ChainID() string {
	switch c.Type {
	case memory.BackendType:
		if c.Memory == nil {
			return ""
		}
		chainID, err := c.Memory.FullChainID()
		if err != nil {
			return c.Memory.ChainID
		}
		return chainID
	default:
		return ""
	}
}

// NewProvider opens the chain c describes.
func NewProvider(c AnyConfig, logger log.Logger) (provider.ChainProvider, error) {
	switch c.Type {
	case memory.BackendType:
		if c.Memory == nil {
			return nil, fmt.Errorf("%s chain config is missing", c.Type)
		}
		return memory.NewProvider(*c.Memory, logger)
	default:
		return nil, ErrUnsupportedBackend{Type: c.Type}
	}
}

// MarshalYAML writes the backend config inline next to its type tag.
func (c AnyConfig) MarshalYAML() (interface{}, error) {
	switch c.Type {
	case memory.BackendType:
		if c.Memory == nil {
			return nil, fmt.Errorf("%s chain config is missing", c.Type)
		}
		return struct {
			Type          string `yaml:"type"`
			memory.Config `yaml:",inline"`
		}{c.Type, *c.Memory}, nil
	default:
		return nil, ErrUnsupportedBackend{Type: c.Type}
	}
}

// DecodeAnyConfig decodes the untyped settings of one chain as loaded by
// viper.
func DecodeAnyConfig(raw interface{}) (AnyConfig, error) {
	settings, err := cast.ToStringMapE(raw)
	if err != nil {
		return AnyConfig{}, err
	}

	typ := cast.ToString(settings["type"])
	switch typ {
	case memory.BackendType:
		cfg, err := decodeMemory(settings)
		if err != nil {
			return AnyConfig{}, err
		}
		return NewMemoryConfig(cfg), nil
	default:
		return AnyConfig{}, ErrUnsupportedBackend{Type: typ}
	}
}

// decodeMemory overrides the memory defaults with the keys present in
// settings.
func decodeMemory(settings map[string]interface{}) (memory.Config, error) {
	cfg := memory.DefaultConfig(cast.ToString(settings["name"]), cast.ToString(settings["chain_id"]))

	var err error
	for key, value := range settings {
		switch key {
		case "client_id":
			cfg.ClientID, err = cast.ToStringE(value)
		case "connection_id":
			cfg.ConnectionID, err = cast.ToStringE(value)
		case "channel_whitelist":
			cfg.ChannelWhitelist, err = decodeWhitelist(value)
		case "block_time":
			cfg.BlockTime, err = cast.ToDurationE(value)
		case "db_backend":
			cfg.DBBackend, err = cast.ToStringE(value)
		case "home":
			cfg.Home, err = cast.ToStringE(value)
		case "validators":
			cfg.Validators, err = cast.ToIntE(value)
		case "revision":
			cfg.Revision, err = cast.ToUint64E(value)
		case "trusting_period":
			cfg.TrustingPeriod, err = cast.ToDurationE(value)
		case "max_clock_drift":
			cfg.MaxClockDrift, err = cast.ToDurationE(value)
		case "max_expected_time_per_block":
			cfg.MaxExpectedTimePerBlock, err = cast.ToDurationE(value)
		}
		if err != nil {
			return memory.Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return cfg, nil
}

func decodeWhitelist(value interface{}) ([]provider.ChannelPort, error) {
	entries, err := cast.ToSliceE(value)
	if err != nil {
		return nil, err
	}

	whitelist := make([]provider.ChannelPort, 0, len(entries))
	for _, entry := range entries {
		fields, err := cast.ToStringMapStringE(entry)
		if err != nil {
			return nil, err
		}
		whitelist = append(whitelist, provider.ChannelPort{
			ChannelID: fields["channel_id"],
			PortID:    fields["port_id"],
		})
	}
	return whitelist, nil
}
