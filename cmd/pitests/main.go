package main

import (
	"fmt"
	"os"

	"github.com/celestiaorg/pitests/cmd/pitests/commands"
	"github.com/celestiaorg/pitests/internal/logger"
)

func main() {
	logger.InitializeAndConfigure()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
