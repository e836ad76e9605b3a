package main

import (
	"os"

	"github.com/hyperspace-relayer/ibc-core/cmd/relayer/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
