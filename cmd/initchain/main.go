// Command initchain drives the demo init chain from the command line, serves
// the admin API, and issues admin tokens.
package main

import (
	"os"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
