// Command tracedemo runs the traced order service, either as a one-shot
// walkthrough of every traced call shape or as an HTTP API.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
