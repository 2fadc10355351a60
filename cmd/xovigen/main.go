// Package main provides the xovigen command, which generates XOVI extension
// link tables from project files.
package main

import (
	"os"

	"github.com/leapstack-labs/xovigen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
