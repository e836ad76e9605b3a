package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cosmos/cosmos-sdk/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	"github.com/hyperspace-relayer/ibc-core/relayer"
	"github.com/hyperspace-relayer/ibc-core/relayer/chains"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

const (
	flagOpenConnection = "open-connection"
	flagDelayPeriod    = "delay-period"
	flagOpenChannel    = "open-channel"
	flagCounterparty   = "counterparty-port"
	flagVersion        = "channel-version"
	flagOrder          = "order"

	metricsRetention = 60 * time.Second
)

// StartCmd runs the relay between the configured chains until interrupted.
func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Relay between chain_a and chain_b",
		Long: `Relay between chain_a and chain_b until SIGINT or SIGTERM.

Clients are created when a chain has no client_id configured. With
--open-connection a connection handshake is started on chain_a when it has no
connection_id, and with --open-channel a channel handshake is started on that
connection. The relayer completes both handshakes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Core.PrometheusEndpoint != "" {
				if err := serveMetrics(ctx, cfg.Core.PrometheusEndpoint, logger); err != nil {
					return err
				}
			}

			chainA, err := openChain(cfg.ChainA, logger)
			if err != nil {
				return err
			}
			defer closeChain(chainA, logger)

			chainB, err := openChain(cfg.ChainB, logger)
			if err != nil {
				return err
			}
			defer closeChain(chainB, logger)

			if err := setup(ctx, cmd, chainA, chainB, logger); err != nil {
				return err
			}

			return relayer.New(chainA, chainB, logger).Run(ctx)
		},
	}

	cmd.Flags().Bool(flagOpenConnection, false, "start a connection handshake when chain_a has no connection")
	cmd.Flags().Uint64(flagDelayPeriod, 0, "delay period of an opened connection, in nanoseconds")
	cmd.Flags().String(flagOpenChannel, "", "port to start a channel handshake on, empty for none")
	cmd.Flags().String(flagCounterparty, "", "counterparty port of an opened channel, the same port when empty")
	cmd.Flags().String(flagVersion, "", "version of an opened channel")
	cmd.Flags().String(flagOrder, "unordered", "ordering of an opened channel (ordered|unordered)")
	return cmd
}

func openChain(cfg chains.AnyConfig, logger log.Logger) (provider.ChainProvider, error) {
	chain, err := chains.NewProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open chain %s: %w", cfg.ChainID(), err)
	}
	return chain, nil
}

func closeChain(chain provider.ChainProvider, logger log.Logger) {
	closer, ok := chain.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Error("failed to close chain", "chain_id", chain.ChainID(), "err", err)
	}
}

// setup creates the missing clients and starts the handshakes asked for.
func setup(ctx context.Context, cmd *cobra.Command, chainA, chainB provider.ChainProvider, logger log.Logger) error {
	if chainA.ClientID() == "" || chainB.ClientID() == "" {
		clientA, clientB, err := relayer.CreateClients(ctx, chainA, chainB)
		if err != nil {
			return err
		}
		logger.Info("created clients", "client_a", clientA, "client_b", clientB)
	}

	openConnection, err := cmd.Flags().GetBool(flagOpenConnection)
	if err != nil {
		return err
	}
	if openConnection && chainA.ConnectionID() == "" {
		delay, err := cmd.Flags().GetUint64(flagDelayPeriod)
		if err != nil {
			return err
		}
		connectionID, err := relayer.CreateConnection(ctx, chainA, chainB, delay)
		if err != nil {
			return err
		}
		logger.Info("started connection handshake", "chain_id", chainA.ChainID(), "connection_id", connectionID)
	}

	portID, err := cmd.Flags().GetString(flagOpenChannel)
	if err != nil || portID == "" {
		return err
	}
	counterpartyPortID, err := cmd.Flags().GetString(flagCounterparty)
	if err != nil {
		return err
	}
	if counterpartyPortID == "" {
		counterpartyPortID = portID
	}
	version, err := cmd.Flags().GetString(flagVersion)
	if err != nil {
		return err
	}
	orderName, err := cmd.Flags().GetString(flagOrder)
	if err != nil {
		return err
	}
	order, err := parseOrder(orderName)
	if err != nil {
		return err
	}

	channelID, err := relayer.CreateChannel(ctx, chainA, portID, counterpartyPortID, version, order)
	if err != nil {
		return err
	}
	logger.Info("started channel handshake", "chain_id", chainA.ChainID(), "port_id", portID, "channel_id", channelID)
	return nil
}

func parseOrder(name string) (channeltypes.Order, error) {
	switch strings.ToLower(name) {
	case "ordered", strings.ToLower(channeltypes.ORDERED.String()):
		return channeltypes.ORDERED, nil
	case "unordered", strings.ToLower(channeltypes.UNORDERED.String()):
		return channeltypes.UNORDERED, nil
	default:
		return channeltypes.NONE, fmt.Errorf("invalid channel order %q", name)
	}
}

// serveMetrics enables telemetry with a prometheus sink and serves it on addr
// until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger log.Logger) error {
	_, err := telemetry.New(telemetry.Config{
		ServiceName:             "relayer",
		Enabled:                 true,
		PrometheusRetentionTime: int64(metricsRetention.Seconds()),
	})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr)
	return nil
}
