// Package main provides the grove CLI.
package main

import (
	"os"

	"github.com/grovekit/grove/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
