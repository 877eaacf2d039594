// Package main is the cypherast command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/cypherast/cmd/cypherast/commands"
	"github.com/Sumatoshi-tech/cypherast/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
