// Package cmd implements the relayer command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cosmos/cosmos-sdk/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperspace-relayer/ibc-core/relayer/chains"
)

const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	logFormatPlain = "plain"
	logFormatJSON  = "json"

	envPrefix = "HYPERSPACE"
)

// DefaultConfigPath is where the config is read from without --config.
var DefaultConfigPath = filepath.Join(os.ExpandEnv("$HOME"), ".hyperspace", "config.yaml")

// NewRootCmd returns the relayer root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "relayer",
		Short:         "Relay IBC connections, channels and packets between two chains",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String(flagConfig, DefaultConfigPath, "path of the relayer config file")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, logFormatPlain, "log format (plain|json)")

	rootCmd.AddCommand(
		ConfigCmd(),
		StartCmd(),
		VersionCmd(),
	)
	return rootCmd
}

// newViper binds the persistent flags and the environment to a viper
// instance reading the config file.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetConfigFile(v.GetString(flagConfig))
	v.SetConfigType("yaml")
	return v, nil
}

// loadConfig reads and validates the relayer config.
func loadConfig(cmd *cobra.Command) (chains.Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return chains.Config{}, err
	}
	if err := v.ReadInConfig(); err != nil {
		return chains.Config{}, fmt.Errorf("failed to read config %s: %w", v.ConfigFileUsed(), err)
	}

	cfg, err := chains.Decode(v.AllSettings())
	if err != nil {
		return chains.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return chains.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the logger selected by the log flags.
func newLogger(cmd *cobra.Command, out io.Writer) (log.Logger, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(v.GetString(flagLogLevel))
	if err != nil {
		return nil, err
	}

	switch format := v.GetString(flagLogFormat); format {
	case logFormatPlain:
		out = zerolog.ConsoleWriter{Out: out}
	case logFormatJSON:
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	return server.ZeroLogWrapper{Logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}, nil
}
