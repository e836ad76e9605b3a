package chains

import (
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/hyperspace-relayer/ibc-core/relayer/provider/memory"
)

// Config is the relayer configuration: the two chains relayed between and
// the settings of the relayer itself.
type Config struct {
	ChainA AnyConfig  `yaml:"chain_a"`
	ChainB AnyConfig  `yaml:"chain_b"`
	Core   CoreConfig `yaml:"core"`
}

type CoreConfig struct {
	// PrometheusEndpoint is the address metrics are served on, empty when
	// metrics are disabled.
	PrometheusEndpoint string `mapstructure:"prometheus_endpoint" yaml:"prometheus_endpoint"`
}

// DefaultConfig relays between two in-process chains.
func DefaultConfig() Config {
	chainA := memory.DefaultConfig("chain-a", "testchain-a")
	chainB := memory.DefaultConfig("chain-b", "testchain-b")
	chainB.BlockTime = 2 * time.Second

	return Config{
		ChainA: NewMemoryConfig(chainA),
		ChainB: NewMemoryConfig(chainB),
	}
}

func (cfg Config) Validate() error {
	if err := cfg.ChainA.Validate(); err != nil {
		return fmt.Errorf("chain_a: %w", err)
	}
	if err := cfg.ChainB.Validate(); err != nil {
		return fmt.Errorf("chain_b: %w", err)
	}
	if cfg.ChainA.ChainID() == cfg.ChainB.ChainID() {
		return fmt.Errorf("chain_a and chain_b share the chain id %s", cfg.ChainA.ChainID())
	}
	return nil
}

// Decode builds the config from the settings loaded by viper.
func Decode(settings map[string]interface{}) (Config, error) {
	var (
		cfg Config
		err error
	)

	if cfg.ChainA, err = DecodeAnyConfig(settings["chain_a"]); err != nil {
		return Config{}, fmt.Errorf("chain_a: %w", err)
	}
	if cfg.ChainB, err = DecodeAnyConfig(settings["chain_b"]); err != nil {
		return Config{}, fmt.Errorf("chain_b: %w", err)
	}

	core := cast.ToStringMap(settings["core"])
	cfg.Core.PrometheusEndpoint = cast.ToString(core["prometheus_endpoint"])
	return cfg, nil
}
