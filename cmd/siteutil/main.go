// Command siteutil runs one-off site maintenance tasks against the same
// database and configuration as the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&cliOptions{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
