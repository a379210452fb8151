// Package main is the sqlgrain command.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/sqlgrain/internal/cli"
	"github.com/leapstack-labs/sqlgrain/internal/cli/commands"
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, commands.ErrLintFailed) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
