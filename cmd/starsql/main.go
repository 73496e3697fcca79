// Command starsql is a CLI for running Starlark scripts with SQLite access.
package main

import (
	"os"

	"github.com/starbase-labs/starsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
