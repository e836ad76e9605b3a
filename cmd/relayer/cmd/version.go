package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	tmversion "github.com/tendermint/tendermint/version"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relayer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "relayer %s (tendermint %s)\n", Version, tmversion.TMCoreSemVer)
		},
	}
}
