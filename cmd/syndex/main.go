// Command syndex keeps a vector index in step with a document
// directory.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/syndexlabs/syndex-cli/internal/adapters/driving/cli"
)

func main() {
	// Best effort; API keys may come from the environment instead.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
