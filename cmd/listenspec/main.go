// listenspec parses, resolves, and applies the comma-separated
// listen-interface specification strings used in daemon configuration.
package main

import (
	"fmt"
	"os"

	"github.com/listenspec/listenspec/internal/cli"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[listenspec] Error: %v\n", err)
		os.Exit(1)
	}
}
