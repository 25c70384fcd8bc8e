package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/platinummonkey/protocheck/pkg/cli"
)

func main() {
	// Create root command
	rootCmd := cli.NewRootCommand()

	// Execute command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// diagnostics were already printed
		if errors.Is(err, cli.ErrCheckFailed) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
