// Command reqscan extracts requirements from PDF and DOCX specifications
// with a language model and writes them to reports.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/reqscan/internal/adapters/driving/cli"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(context.Background())
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
